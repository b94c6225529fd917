package privacy

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gmolate/anonimizarpy/pkg/constants"
	"github.com/gmolate/anonimizarpy/pkg/models"
)

// HierarchicalConfig configures the iterative generalization engine.
type HierarchicalConfig struct {
	Threshold models.Threshold `json:"threshold"`
	// MaxPasses caps the evaluate/generalize loop. Zero derives the cap
	// from (quasi-identifier count x max hierarchy depth) times a safety
	// multiplier.
	MaxPasses int `json:"max_passes"`
}

func getDefaultHierarchicalConfig() *HierarchicalConfig {
	return &HierarchicalConfig{
		Threshold: models.DefaultThreshold(),
	}
}

// HierarchicalAnonymizer drives the record set to a fixed point:
// recompute global (k, l) over the current quasi-identifier values,
// generalize the offending records' next field one level, re-evaluate.
// It terminates when every group meets the threshold or every field of
// the remaining offenders is fully suppressed.
type HierarchicalAnonymizer struct {
	config      *HierarchicalConfig
	hierarchies HierarchySet
	stats       *GroupStatsCalculator
	logger      *logrus.Logger
}

// NewHierarchicalAnonymizer creates the engine.
func NewHierarchicalAnonymizer(config *HierarchicalConfig, hierarchies HierarchySet, logger *logrus.Logger) *HierarchicalAnonymizer {
	if config == nil {
		config = getDefaultHierarchicalConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &HierarchicalAnonymizer{
		config:      config,
		hierarchies: hierarchies,
		stats:       NewGroupStatsCalculator(logger),
		logger:      logger,
	}
}

// recordState tracks one record's progress through its hierarchies.
type recordState struct {
	// levels holds the current hierarchy level per quasi-identifier,
	// indexed like the engine's field order.
	levels []int
	// excluded records were force-suppressed on exhaustion and no
	// longer participate in evaluation.
	excluded bool
}

// Anonymize mutates the dataset's quasi-identifier values in place until
// the threshold holds for every non-suppressed record. The optional
// initial map carries per-field level selections (e.g. from the
// LevelSelector for a multi-level geographic field); the engine applies
// them and resumes from those levels instead of level 0.
func (h *HierarchicalAnonymizer) Anonymize(ctx context.Context, ds *models.Dataset, roles *models.FieldRoles, initial map[string]*LevelSelection) (*models.AnonymizationReport, error) {
	report := &models.AnonymizationReport{Records: ds.Len()}

	if err := roles.Validate(ds); err != nil {
		return nil, err
	}
	if err := h.config.Threshold.Validate(); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		report.Converged = true
		return report, nil
	}

	fields := h.fieldOrder(roles.QuasiIdentifiers)
	raws := h.captureRaws(ds, fields)
	for f, sel := range initial {
		sel.ApplyTo(ds, f)
	}
	states := h.initialStates(ds.Len(), fields, initial)
	maxPasses := h.passCap(fields)

	h.logger.WithFields(logrus.Fields{
		"records":  ds.Len(),
		"fields":   fields,
		"k_min":    h.config.Threshold.MinK,
		"l_min":    h.config.Threshold.MinL,
		"max_pass": maxPasses,
	}).Info("Starting hierarchical anonymization")

	cursor := 0
	for pass := 1; pass <= maxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Passes = pass

		table, err := h.stats.Compute(ds, roles.QuasiIdentifiers, roles.SensitiveAttribute)
		if err != nil {
			return nil, err
		}

		failing := h.failingRecords(table, states)
		if len(failing) == 0 {
			report.Converged = true
			break
		}

		// Exhausted records cannot be generalized further; force the
		// terminal value on every field and drop them from evaluation.
		failing = h.suppressExhausted(ds, fields, failing, states, report)
		if len(failing) == 0 {
			continue
		}

		if pass == maxPasses {
			h.logger.WithField("failing", len(failing)).Warn(
				"Pass cap reached, suppressing remaining offenders")
			h.forceSuppress(ds, fields, failing, states, report)
			report.Exhausted = true
			break
		}

		cursor = h.generalizeStep(ds, fields, raws, failing, states, cursor, report)

		h.logger.WithFields(logrus.Fields{
			"pass":    pass,
			"groups":  table.Groups(),
			"failing": len(failing),
		}).Debug("Generalization pass")
	}

	report.Exhausted = report.Exhausted || report.SuppressedRecords > 0
	if !report.Converged && !report.Exhausted {
		// Loop fell through the cap without a terminal state.
		report.Exhausted = true
	}

	h.logger.WithFields(logrus.Fields{
		"passes":      report.Passes,
		"generalized": report.GeneralizedFields,
		"suppressed":  report.SuppressedRecords,
		"converged":   report.Converged,
	}).Info("Hierarchical anonymization finished")

	return report, nil
}

// fieldOrder fixes the deterministic generalization order: multi-level
// hierarchies first so cheap prefix coarsening is tried before whole
// categories are masked, then the declared order.
func (h *HierarchicalAnonymizer) fieldOrder(quasiIdentifiers []string) []string {
	order := make([]string, 0, len(quasiIdentifiers))
	for _, f := range quasiIdentifiers {
		if h.hierarchies.ForField(f).Levels() > 2 {
			order = append(order, f)
		}
	}
	for _, f := range quasiIdentifiers {
		if h.hierarchies.ForField(f).Levels() <= 2 {
			order = append(order, f)
		}
	}
	return order
}

// captureRaws snapshots the pre-generalization value of every field so
// coarser levels are always derived from the original value, not from
// an already generalized one.
func (h *HierarchicalAnonymizer) captureRaws(ds *models.Dataset, fields []string) map[string][]string {
	raws := make(map[string][]string, len(fields))
	for _, f := range fields {
		col := make([]string, ds.Len())
		for i, record := range ds.Records {
			col[i] = record[f]
		}
		raws[f] = col
	}
	return raws
}

func (h *HierarchicalAnonymizer) initialStates(records int, fields []string, initial map[string]*LevelSelection) []recordState {
	states := make([]recordState, records)
	for i := range states {
		states[i].levels = make([]int, len(fields))
	}
	for fi, f := range fields {
		sel, ok := initial[f]
		if !ok {
			continue
		}
		terminal := h.hierarchies.ForField(f).Levels() - 1
		for i := range states {
			if sel.Levels[i] == LevelUndetermined {
				// The selector gave up on this field alone; the value
				// stays "undetermined" and only the other fields can
				// still rescue the record.
				states[i].levels[fi] = terminal
			} else {
				states[i].levels[fi] = sel.Levels[i]
			}
		}
	}
	return states
}

func (h *HierarchicalAnonymizer) passCap(fields []string) int {
	if h.config.MaxPasses > 0 {
		return h.config.MaxPasses
	}
	return len(fields) * h.hierarchies.MaxDepth(fields) * constants.PassCapMultiplier
}

func (h *HierarchicalAnonymizer) failingRecords(table *GroupStatsTable, states []recordState) []int {
	var failing []int
	for i := range states {
		if states[i].excluded {
			continue
		}
		if !table.ForRecord(i).Satisfies(h.config.Threshold) {
			failing = append(failing, i)
		}
	}
	return failing
}

// suppressExhausted filters records whose every field is terminal out
// of the failing set, forcing their suppression.
func (h *HierarchicalAnonymizer) suppressExhausted(ds *models.Dataset, fields []string, failing []int, states []recordState, report *models.AnonymizationReport) []int {
	remaining := failing[:0]
	for _, i := range failing {
		if h.hasEligibleField(fields, states[i]) {
			remaining = append(remaining, i)
			continue
		}
		h.forceSuppress(ds, fields, []int{i}, states, report)
	}
	return remaining
}

func (h *HierarchicalAnonymizer) hasEligibleField(fields []string, st recordState) bool {
	for fi, f := range fields {
		if st.levels[fi] < h.hierarchies.ForField(f).Levels()-1 {
			return true
		}
	}
	return false
}

// forceSuppress drives every quasi-identifier of the given records to
// its terminal value and excludes them from further evaluation.
func (h *HierarchicalAnonymizer) forceSuppress(ds *models.Dataset, fields []string, records []int, states []recordState, report *models.AnonymizationReport) {
	for _, i := range records {
		for fi, f := range fields {
			hierarchy := h.hierarchies.ForField(f)
			states[i].levels[fi] = hierarchy.Levels() - 1
			ds.Records[i][f] = hierarchy.Terminal()
		}
		states[i].excluded = true
		report.SuppressedRecords++
	}
}

// generalizeStep advances one field one level for every failing record
// that still has room, then moves the cursor. Fields already terminal
// for every failing record are skipped.
func (h *HierarchicalAnonymizer) generalizeStep(ds *models.Dataset, fields []string, raws map[string][]string, failing []int, states []recordState, cursor int, report *models.AnonymizationReport) int {
	for tries := 0; tries < len(fields); tries++ {
		fi := (cursor + tries) % len(fields)
		f := fields[fi]
		hierarchy := h.hierarchies.ForField(f)
		terminal := hierarchy.Levels() - 1

		advanced := false
		for _, i := range failing {
			if states[i].levels[fi] >= terminal {
				continue
			}
			states[i].levels[fi]++
			ds.Records[i][f] = hierarchy.Apply(raws[f][i], states[i].levels[fi])
			report.GeneralizedFields++
			advanced = true
		}
		if advanced {
			return (fi + 1) % len(fields)
		}
	}
	return cursor
}
