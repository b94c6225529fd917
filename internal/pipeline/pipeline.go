package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gmolate/anonimizarpy/internal/dataset"
	"github.com/gmolate/anonimizarpy/internal/observability/metrics"
	"github.com/gmolate/anonimizarpy/internal/privacy"
	"github.com/gmolate/anonimizarpy/pkg/models"
)

// Config describes one anonymization job: the role partition of the
// schema, the threshold, and which quasi-identifiers carry the
// multi-level geographic hierarchy (the rest get the degenerate
// two-level masked hierarchy).
type Config struct {
	Roles     models.FieldRoles `json:"roles"`
	Threshold models.Threshold  `json:"threshold"`
	GeoFields []string          `json:"geo_fields"`
	MaxPasses int               `json:"max_passes"`
}

// getDefaultConfig returns a config with the reference threshold; roles
// always come from the caller.
func getDefaultConfig() *Config {
	return &Config{Threshold: models.DefaultThreshold()}
}

// Pipeline runs the full anonymization flow: role validation, direct
// identifier removal, initial level selection for geographic fields,
// and the hierarchical engine, leaving the dataset generalized in
// place with no bookkeeping columns.
type Pipeline struct {
	config    *Config
	logger    *logrus.Logger
	collector *metrics.Collector

	hierarchies privacy.HierarchySet
	stats       *privacy.GroupStatsCalculator
	selector    *privacy.LevelSelector
	anonymizer  *privacy.HierarchicalAnonymizer
}

// New creates a pipeline. The metrics collector is optional.
func New(config *Config, logger *logrus.Logger, collector *metrics.Collector) *Pipeline {
	if config == nil {
		config = getDefaultConfig()
	}
	if config.Threshold.MinK == 0 && config.Threshold.MinL == 0 {
		config.Threshold = models.DefaultThreshold()
	}
	if logger == nil {
		logger = logrus.New()
	}

	hierarchies := make(privacy.HierarchySet)
	for _, f := range config.GeoFields {
		hierarchies[f] = privacy.NewGeoCodeHierarchy()
	}

	stats := privacy.NewGroupStatsCalculator(logger)
	return &Pipeline{
		config:      config,
		logger:      logger,
		collector:   collector,
		hierarchies: hierarchies,
		stats:       stats,
		selector:    privacy.NewLevelSelector(stats, logger),
		anonymizer: privacy.NewHierarchicalAnonymizer(&privacy.HierarchicalConfig{
			Threshold: config.Threshold,
			MaxPasses: config.MaxPasses,
		}, hierarchies, logger),
	}
}

// Run anonymizes the dataset in place and returns the run report.
func (p *Pipeline) Run(ctx context.Context, ds *models.Dataset) (*models.AnonymizationReport, error) {
	start := time.Now()

	// Role errors must surface before anything is touched.
	if err := p.config.Roles.Validate(ds); err != nil {
		return nil, err
	}
	if err := p.config.Threshold.Validate(); err != nil {
		return nil, err
	}

	dataset.RemoveDirectIdentifiers(ds, p.config.Roles.DirectIdentifiers, p.logger)

	initial := make(map[string]*privacy.LevelSelection)
	for _, field := range p.config.GeoFields {
		selection, err := p.selector.Select(ds, field, p.hierarchies.ForField(field),
			p.otherQuasiIdentifiers(field), p.config.Roles.SensitiveAttribute, p.config.Threshold)
		if err != nil {
			return nil, err
		}
		initial[field] = selection
	}

	report, err := p.anonymizer.Anonymize(ctx, ds, &p.config.Roles, initial)
	if err != nil {
		return nil, err
	}

	if p.collector != nil {
		p.collector.RecordRun(report.Records, report.Passes,
			report.GeneralizedFields, report.SuppressedRecords, time.Since(start))
	}

	p.logger.WithFields(logrus.Fields{
		"records":    report.Records,
		"passes":     report.Passes,
		"suppressed": report.SuppressedRecords,
		"converged":  report.Converged,
		"duration":   time.Since(start),
	}).Info("Anonymization pipeline finished")

	return report, nil
}

func (p *Pipeline) otherQuasiIdentifiers(field string) []string {
	others := make([]string, 0, len(p.config.Roles.QuasiIdentifiers))
	for _, qi := range p.config.Roles.QuasiIdentifiers {
		if qi != field {
			others = append(others, qi)
		}
	}
	return others
}

// InspectionResult summarizes the current k/l state of a dataset
// without mutating it.
type InspectionResult struct {
	Records        int `json:"records"`
	Groups         int `json:"groups"`
	MinK           int `json:"min_k"`
	MinL           int `json:"min_l"`
	FailingRecords int `json:"failing_records"`
}

// Inspect reports group statistics for the dataset under the
// configured roles and threshold.
func (p *Pipeline) Inspect(ctx context.Context, ds *models.Dataset) (*InspectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.config.Roles.Validate(ds); err != nil {
		return nil, err
	}

	table, err := p.stats.Compute(ds, p.config.Roles.QuasiIdentifiers, p.config.Roles.SensitiveAttribute)
	if err != nil {
		return nil, err
	}

	result := &InspectionResult{
		Records: ds.Len(),
		Groups:  table.Groups(),
	}
	for i := 0; i < ds.Len(); i++ {
		gs := table.ForRecord(i)
		if result.MinK == 0 || gs.K < result.MinK {
			result.MinK = gs.K
		}
		if result.MinL == 0 || gs.L < result.MinL {
			result.MinL = gs.L
		}
		if !gs.Satisfies(p.config.Threshold) {
			result.FailingRecords++
		}
	}
	return result, nil
}
