package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gmolate/anonimizarpy/internal/observability/metrics"
	"github.com/gmolate/anonimizarpy/internal/pipeline"
	"github.com/gmolate/anonimizarpy/pkg/errors"
	"github.com/gmolate/anonimizarpy/pkg/models"
)

// Handlers holds the HTTP handlers of the anonymization service.
type Handlers struct {
	config    *Config
	logger    *logrus.Logger
	collector *metrics.Collector
}

// NewHandlers creates the handler set.
func NewHandlers(config *Config, logger *logrus.Logger, collector *metrics.Collector) *Handlers {
	if config == nil {
		config = NewDefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Handlers{config: config, logger: logger, collector: collector}
}

// AnonymizeRequest is the JSON body of POST /api/v1/anonymize.
type AnonymizeRequest struct {
	Columns   []string          `json:"columns"`
	Records   []models.Record   `json:"records"`
	Roles     models.FieldRoles `json:"roles"`
	Threshold *models.Threshold `json:"threshold,omitempty"`
	GeoFields []string          `json:"geo_fields,omitempty"`
}

// AnonymizeResponse carries the generalized records and the run report.
type AnonymizeResponse struct {
	Columns []string                    `json:"columns"`
	Records []models.Record             `json:"records"`
	Report  *models.AnonymizationReport `json:"report"`
}

// Anonymize runs the full pipeline on an inline record set.
func (h *Handlers) Anonymize(w http.ResponseWriter, r *http.Request) {
	var req AnonymizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.NewValidationError(errors.CodeInvalidInput,
			"invalid JSON body").WithDetails(err.Error()))
		return
	}
	if len(req.Records) > h.config.API.MaxRecords {
		h.writeError(w, errors.NewValidationError(errors.CodeOutOfRange,
			"record count exceeds service limit"))
		return
	}

	ds := models.NewDataset(req.Columns)
	for _, record := range req.Records {
		if err := ds.Append(record); err != nil {
			h.writeError(w, err)
			return
		}
	}

	threshold := models.DefaultThreshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	p := pipeline.New(&pipeline.Config{
		Roles:     req.Roles,
		Threshold: threshold,
		GeoFields: req.GeoFields,
	}, h.logger, h.collector)

	report, err := p.Run(r.Context(), ds)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, &AnonymizeResponse{
		Columns: ds.Columns,
		Records: ds.Records,
		Report:  report,
	})
}

// InspectRequest is the JSON body of POST /api/v1/inspect.
type InspectRequest struct {
	Columns   []string          `json:"columns"`
	Records   []models.Record   `json:"records"`
	Roles     models.FieldRoles `json:"roles"`
	Threshold *models.Threshold `json:"threshold,omitempty"`
}

// Inspect reports the k/l state of an inline record set.
func (h *Handlers) Inspect(w http.ResponseWriter, r *http.Request) {
	var req InspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.NewValidationError(errors.CodeInvalidInput,
			"invalid JSON body").WithDetails(err.Error()))
		return
	}

	ds := models.NewDataset(req.Columns)
	for _, record := range req.Records {
		if err := ds.Append(record); err != nil {
			h.writeError(w, err)
			return
		}
	}

	threshold := models.DefaultThreshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	p := pipeline.New(&pipeline.Config{
		Roles:     req.Roles,
		Threshold: threshold,
	}, h.logger, h.collector)

	result, err := p.Inspect(r.Context(), ds)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"version":     h.config.Version,
		"environment": h.config.Environment,
		"uptime":      time.Since(h.config.StartTime).String(),
		"timestamp":   time.Now().UTC(),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.NewInternalError(err.Error())
	}

	h.logger.WithFields(logrus.Fields{
		"type": appErr.Type,
		"code": appErr.Code,
	}).Warn(appErr.Message)

	h.writeJSON(w, appErr.HTTPStatus, map[string]interface{}{
		"error":     appErr,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
