package privacy

import (
	"github.com/sirupsen/logrus"

	"github.com/gmolate/anonimizarpy/pkg/constants"
	"github.com/gmolate/anonimizarpy/pkg/models"
)

// LevelUndetermined marks a record no hierarchy level could place in a
// compliant group. The record keeps the sentinel value and is handed to
// the hierarchical engine, which tries the other fields instead.
const LevelUndetermined = -1

// LevelSelection is the per-record outcome of a selection run.
type LevelSelection struct {
	// Levels holds the chosen hierarchy level per record, or
	// LevelUndetermined.
	Levels []int
	// Values holds the generalized field value per record.
	Values []string
}

// LevelSelector picks, per record, the finest hierarchy level of one
// field whose group meets the threshold, evaluating group statistics at
// every level with the remaining quasi-identifiers held at their
// current values.
type LevelSelector struct {
	stats  *GroupStatsCalculator
	logger *logrus.Logger
}

// NewLevelSelector creates a selector.
func NewLevelSelector(stats *GroupStatsCalculator, logger *logrus.Logger) *LevelSelector {
	if logger == nil {
		logger = logrus.New()
	}
	if stats == nil {
		stats = NewGroupStatsCalculator(logger)
	}
	return &LevelSelector{stats: stats, logger: logger}
}

// Select evaluates every level of the field's hierarchy, finest first,
// grouping by the other quasi-identifiers plus the field generalized to
// the candidate level. The first level whose group satisfies the
// threshold wins; no level is skipped even when a coarser one would
// also satisfy. Records left over after the terminal level get the
// "undetermined" sentinel. The dataset is not mutated.
func (s *LevelSelector) Select(ds *models.Dataset, field string, hierarchy Hierarchy, otherQIs []string, sensitive string, threshold models.Threshold) (*LevelSelection, error) {
	n := ds.Len()
	selection := &LevelSelection{
		Levels: make([]int, n),
		Values: make([]string, n),
	}
	for i := range selection.Levels {
		selection.Levels[i] = LevelUndetermined
	}

	groupBy := append(append([]string(nil), otherQIs...), field)
	candidate := make([]string, n)
	remaining := n

	for level := 0; level < hierarchy.Levels() && remaining > 0; level++ {
		for i, record := range ds.Records {
			candidate[i] = hierarchy.Apply(record[field], level)
		}

		table, err := s.stats.ComputeOverride(ds, groupBy, sensitive,
			map[string][]string{field: candidate})
		if err != nil {
			return nil, err
		}

		for i := 0; i < n; i++ {
			if selection.Levels[i] != LevelUndetermined {
				continue
			}
			if table.ForRecord(i).Satisfies(threshold) {
				selection.Levels[i] = level
				selection.Values[i] = candidate[i]
				remaining--
			}
		}
	}

	for i := 0; i < n; i++ {
		if selection.Levels[i] == LevelUndetermined {
			selection.Values[i] = constants.ValueUndetermined
		}
	}

	s.logger.WithFields(logrus.Fields{
		"field":        field,
		"records":      n,
		"undetermined": remaining,
	}).Info("Selected generalization levels")

	return selection, nil
}

// ApplyTo writes the selected values into the dataset's field column.
func (sel *LevelSelection) ApplyTo(ds *models.Dataset, field string) {
	for i, record := range ds.Records {
		record[field] = sel.Values[i]
	}
}
