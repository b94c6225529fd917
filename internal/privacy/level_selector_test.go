package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmolate/anonimizarpy/pkg/models"
)

func TestLevelSelectorPicksFinestCompliantLevel(t *testing.T) {
	ds := buildDataset(t, []string{"comuna", "sexo", "diagnostico"}, []models.Record{
		{"comuna": "13101", "sexo": "M", "diagnostico": "J45"},
		{"comuna": "13101", "sexo": "F", "diagnostico": "E11"},
		{"comuna": "13102", "sexo": "M", "diagnostico": "I10"},
		{"comuna": "13201", "sexo": "M", "diagnostico": "C34"},
		{"comuna": "13201", "sexo": "F", "diagnostico": "F32"},
	})
	original := ds.Clone()

	selector := NewLevelSelector(nil, testLogger())
	selection, err := selector.Select(ds, "comuna", NewGeoCodeHierarchy(),
		[]string{"sexo"}, "diagnostico", models.Threshold{MinK: 2, MinL: 2})
	require.NoError(t, err)

	// The two male records of province 131 merge at level 1; everyone
	// else needs the region prefix of level 2.
	assert.Equal(t, []int{1, 2, 1, 2, 2}, selection.Levels)
	assert.Equal(t, []string{"131**", "13***", "131**", "13***", "13***"}, selection.Values)

	// Selection never mutates the dataset.
	assert.Equal(t, original.Records, ds.Records)

	selection.ApplyTo(ds, "comuna")
	assert.Equal(t, "131**", ds.Records[0]["comuna"])
	assert.Equal(t, "13***", ds.Records[1]["comuna"])
}

func TestLevelSelectorAlreadyCompliantKeepsIdentity(t *testing.T) {
	ds := buildDataset(t, []string{"comuna", "diagnostico"}, []models.Record{
		{"comuna": "13101", "diagnostico": "J45"},
		{"comuna": "13101", "diagnostico": "E11"},
	})

	selector := NewLevelSelector(nil, testLogger())
	selection, err := selector.Select(ds, "comuna", NewGeoCodeHierarchy(),
		nil, "diagnostico", models.Threshold{MinK: 2, MinL: 2})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0}, selection.Levels)
	assert.Equal(t, []string{"13101", "13101"}, selection.Values)
}

func TestLevelSelectorUndeterminedWhenNoLevelSuffices(t *testing.T) {
	// A single record can never reach k=2, not even fully suppressed.
	ds := buildDataset(t, []string{"comuna", "diagnostico"}, []models.Record{
		{"comuna": "13101", "diagnostico": "J45"},
	})

	selector := NewLevelSelector(nil, testLogger())
	selection, err := selector.Select(ds, "comuna", NewGeoCodeHierarchy(),
		nil, "diagnostico", models.Threshold{MinK: 2, MinL: 1})
	require.NoError(t, err)

	assert.Equal(t, []int{LevelUndetermined}, selection.Levels)
	assert.Equal(t, []string{"undetermined"}, selection.Values)
}
