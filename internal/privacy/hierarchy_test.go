package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeoCodeHierarchyLevels(t *testing.T) {
	h := NewGeoCodeHierarchy()

	assert.Equal(t, 4, h.Levels())
	assert.Equal(t, "unknown", h.Terminal())

	tests := []struct {
		name     string
		raw      string
		level    int
		expected string
	}{
		{"identity level", "13101", 0, "13101"},
		{"province prefix", "13101", 1, "131**"},
		{"region prefix", "13101", 2, "13***"},
		{"terminal", "13101", 3, "unknown"},
		{"beyond terminal clamps", "13101", 7, "unknown"},
		{"negative level is identity", "13101", -1, "13101"},
		{"short value falls to terminal", "13", 1, "unknown"},
		{"short value stays terminal at region level", "13", 2, "unknown"},
		{"empty value falls to terminal", "", 1, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.Apply(tt.raw, tt.level))
		})
	}
}

// Records that share a value at one level must share a value at every
// coarser level, otherwise generalization could split groups it already
// merged.
func TestGeoCodeHierarchyMonotone(t *testing.T) {
	h := NewGeoCodeHierarchy()
	codes := []string{"13101", "13102", "13110", "13201", "05101", "05109", "1310", "13", "99", "1", ""}

	for level := 0; level < h.Levels()-1; level++ {
		for _, a := range codes {
			for _, b := range codes {
				if h.Apply(a, level) == h.Apply(b, level) {
					assert.Equal(t, h.Apply(a, level+1), h.Apply(b, level+1),
						"codes %q and %q merge at level %d but split at level %d",
						a, b, level, level+1)
				}
			}
		}
	}
}

// Codes too short for the province prefix suppress at the province
// level; a coarser level must never reveal the region prefix again,
// otherwise two such codes would merge and then split.
func TestGeoCodeHierarchyShortCodesStaySuppressed(t *testing.T) {
	h := NewGeoCodeHierarchy()

	for _, code := range []string{"13", "99", "1", ""} {
		for level := 1; level < h.Levels(); level++ {
			assert.Equal(t, "unknown", h.Apply(code, level),
				"code %q must stay suppressed at level %d", code, level)
		}
	}

	assert.Equal(t, h.Apply("13", 2), h.Apply("99", 2),
		"codes merged at the province level must stay merged at the region level")
}

func TestMaskedHierarchy(t *testing.T) {
	h := NewMaskedHierarchy("")

	assert.Equal(t, 2, h.Levels())
	assert.Equal(t, "undetermined", h.Terminal())
	assert.Equal(t, "M", h.Apply("M", 0))
	assert.Equal(t, "undetermined", h.Apply("M", 1))
	assert.Equal(t, "undetermined", h.Apply("M", 5))

	custom := NewMaskedHierarchy("s/i")
	assert.Equal(t, "s/i", custom.Terminal())
	assert.Equal(t, "s/i", custom.Apply("F", 1))
}

func TestHierarchySetDefaults(t *testing.T) {
	hs := HierarchySet{"comuna": NewGeoCodeHierarchy()}

	assert.Equal(t, 4, hs.ForField("comuna").Levels())
	assert.Equal(t, 2, hs.ForField("sexo").Levels())
	assert.Equal(t, "undetermined", hs.ForField("sexo").Terminal())

	assert.Equal(t, 4, hs.MaxDepth([]string{"comuna", "sexo"}))
	assert.Equal(t, 2, hs.MaxDepth([]string{"sexo", "tramo_edad"}))
	assert.Equal(t, 0, hs.MaxDepth(nil))
}
