package privacy

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gmolate/anonimizarpy/pkg/errors"
	"github.com/gmolate/anonimizarpy/pkg/models"
)

// groupKeySeparator joins quasi-identifier values into a group key.
// The unit separator cannot appear in CSV field values, so distinct
// tuples never collide.
const groupKeySeparator = "\x1f"

// missingValueMarker distinguishes a column absent from a record from
// an empty string, which is itself a legitimate category.
const missingValueMarker = "\x00missing"

// GroupStatsCalculator computes per-group (k, l) statistics: k records
// sharing identical values across the grouping columns, spanning l
// distinct sensitive values. It never mutates the dataset.
type GroupStatsCalculator struct {
	logger *logrus.Logger
}

// NewGroupStatsCalculator creates a calculator.
func NewGroupStatsCalculator(logger *logrus.Logger) *GroupStatsCalculator {
	if logger == nil {
		logger = logrus.New()
	}
	return &GroupStatsCalculator{logger: logger}
}

// GroupStatsTable is the transient side table of one evaluation pass:
// group statistics keyed by group key, joined to records by index. It
// is discarded at the end of the pass and never becomes output.
type GroupStatsTable struct {
	keys  []string
	stats map[string]models.GroupStats
}

// ForRecord returns the statistics of the group the record belongs to.
func (t *GroupStatsTable) ForRecord(i int) models.GroupStats {
	return t.stats[t.keys[i]]
}

// Groups returns the number of distinct groups.
func (t *GroupStatsTable) Groups() int {
	return len(t.stats)
}

// Failing returns the indices of records whose group misses the
// threshold, in record order.
func (t *GroupStatsTable) Failing(threshold models.Threshold) []int {
	var failing []int
	for i := range t.keys {
		if !t.ForRecord(i).Satisfies(threshold) {
			failing = append(failing, i)
		}
	}
	return failing
}

type groupAccum struct {
	count     int
	sensitive map[string]struct{}
}

// Compute builds the statistics table for the dataset grouped by the
// given columns, measuring diversity over the sensitive column.
func (c *GroupStatsCalculator) Compute(ds *models.Dataset, groupBy []string, sensitive string) (*GroupStatsTable, error) {
	return c.ComputeOverride(ds, groupBy, sensitive, nil)
}

// ComputeOverride is Compute with per-record column overrides: for each
// column in overrides, overrides[col][i] replaces record i's stored
// value. The level selector uses this to evaluate a candidate
// generalization level without touching the dataset.
func (c *GroupStatsCalculator) ComputeOverride(ds *models.Dataset, groupBy []string, sensitive string, overrides map[string][]string) (*GroupStatsTable, error) {
	for _, col := range groupBy {
		if _, ok := overrides[col]; ok {
			continue
		}
		if !ds.HasColumn(col) {
			return nil, errors.NewConfigurationError(errors.CodeMissingColumn,
				"grouping column "+col+" not in schema")
		}
	}
	if !ds.HasColumn(sensitive) {
		return nil, errors.NewConfigurationError(errors.CodeMissingColumn,
			"sensitive column "+sensitive+" not in schema")
	}

	accums := make(map[string]*groupAccum)
	keys := make([]string, ds.Len())
	sensitiveSeen := false

	parts := make([]string, len(groupBy))
	for i, record := range ds.Records {
		for j, col := range groupBy {
			if vals, ok := overrides[col]; ok {
				parts[j] = vals[i]
				continue
			}
			if v, ok := record[col]; ok {
				parts[j] = v
			} else {
				parts[j] = missingValueMarker
			}
		}
		key := strings.Join(parts, groupKeySeparator)
		keys[i] = key

		acc, ok := accums[key]
		if !ok {
			acc = &groupAccum{sensitive: make(map[string]struct{})}
			accums[key] = acc
		}
		acc.count++

		if sv := record[sensitive]; sv != "" {
			acc.sensitive[sv] = struct{}{}
			sensitiveSeen = true
		}
	}

	if ds.Len() > 0 && !sensitiveSeen {
		return nil, errors.WrapError(errors.ErrSensitiveAllMissing,
			errors.ErrorTypeConfiguration, errors.CodeEmptySensitive,
			"sensitive attribute "+sensitive+" is empty for every record")
	}

	stats := make(map[string]models.GroupStats, len(accums))
	for key, acc := range accums {
		stats[key] = models.GroupStats{K: acc.count, L: len(acc.sensitive)}
	}

	c.logger.WithFields(logrus.Fields{
		"records": ds.Len(),
		"groups":  len(stats),
		"columns": groupBy,
	}).Debug("Computed group statistics")

	return &GroupStatsTable{keys: keys, stats: stats}, nil
}
