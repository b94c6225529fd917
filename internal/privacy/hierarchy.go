package privacy

import (
	"strings"

	"github.com/gmolate/anonimizarpy/pkg/constants"
)

// Hierarchy is one quasi-identifier's ordered sequence of generalization
// levels, finest (0) to the terminal suppression level (Levels()-1).
// Apply must be deterministic and monotone: records that share a value
// at level n also share a value at every level above n.
type Hierarchy interface {
	// Levels returns the total number of levels, terminal included.
	Levels() int
	// Apply returns the generalized representation of a raw value at
	// the given level. Out-of-range levels clamp to the terminal value.
	Apply(raw string, level int) string
	// Terminal returns the suppression value of the last level.
	Terminal() string
}

// GeoCodeHierarchy generalizes a geographic code (e.g. a 5-digit comuna
// code) by progressively shortening its prefix:
//
//	level 0: 13101
//	level 1: 131**
//	level 2: 13***
//	level 3: unknown
type GeoCodeHierarchy struct{}

// NewGeoCodeHierarchy creates the reference geographic hierarchy.
func NewGeoCodeHierarchy() GeoCodeHierarchy {
	return GeoCodeHierarchy{}
}

func (GeoCodeHierarchy) Levels() int { return 4 }

func (GeoCodeHierarchy) Terminal() string { return constants.ValueUnknown }

func (h GeoCodeHierarchy) Apply(raw string, level int) string {
	if level <= 0 {
		return raw
	}
	// A value too short for the finest prefix suppresses at every
	// generalization level. Revealing a shorter prefix at a coarser
	// level would split groups the finer level had already merged.
	if len(raw) < 3 {
		return constants.ValueUnknown
	}
	switch level {
	case 1:
		return prefixMask(raw, 3, 2)
	case 2:
		return prefixMask(raw, 2, 3)
	default:
		return constants.ValueUnknown
	}
}

// prefixMask keeps the first n characters and appends a fixed mask
// suffix.
func prefixMask(raw string, n, mask int) string {
	return raw[:n] + strings.Repeat(constants.MaskChar, mask)
}

// MaskedHierarchy is the degenerate two-level hierarchy used for
// categorical quasi-identifiers such as sex or age band: the original
// value, then a fixed masked placeholder.
type MaskedHierarchy struct {
	Placeholder string
}

// NewMaskedHierarchy creates a two-level hierarchy with the given
// placeholder, defaulting to "undetermined".
func NewMaskedHierarchy(placeholder string) MaskedHierarchy {
	if placeholder == "" {
		placeholder = constants.ValueUndetermined
	}
	return MaskedHierarchy{Placeholder: placeholder}
}

func (MaskedHierarchy) Levels() int { return 2 }

func (h MaskedHierarchy) Terminal() string { return h.Placeholder }

func (h MaskedHierarchy) Apply(raw string, level int) string {
	if level <= 0 {
		return raw
	}
	return h.Placeholder
}

// HierarchySet maps quasi-identifier field names to their hierarchies.
// Immutable configuration: built once before anonymization starts.
// Fields without an explicit entry get the degenerate masked hierarchy,
// so new quasi-identifiers are configuration, not new code paths.
type HierarchySet map[string]Hierarchy

// ForField returns the hierarchy for a field, falling back to the
// default two-level masked hierarchy.
func (hs HierarchySet) ForField(name string) Hierarchy {
	if h, ok := hs[name]; ok {
		return h
	}
	return NewMaskedHierarchy("")
}

// MaxDepth returns the deepest level count across the given fields.
func (hs HierarchySet) MaxDepth(fields []string) int {
	max := 0
	for _, f := range fields {
		if n := hs.ForField(f).Levels(); n > max {
			max = n
		}
	}
	return max
}
