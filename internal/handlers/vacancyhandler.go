package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/vacancy-parser/internal/apperr"
	"github.com/justsurfingit/vacancy-parser/internal/dtos"
	"github.com/justsurfingit/vacancy-parser/internal/logger"
	"github.com/justsurfingit/vacancy-parser/internal/metrics"
	"github.com/justsurfingit/vacancy-parser/internal/models"
)

// VacancyProcessor runs the ingestion pipeline for one submission.
type VacancyProcessor interface {
	Process(ctx context.Context, req *dtos.VacancySubmission) (*models.Vacancy, error)
}

type VacancyHandler struct {
	service VacancyProcessor
	metrics *metrics.Metrics
	// legacyValidationStatus answers validation failures with 500.
	legacyValidationStatus bool
}

type HandlerOption func(*VacancyHandler)

func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *VacancyHandler) { h.metrics = m }
}

func WithLegacyValidationStatus(on bool) HandlerOption {
	return func(h *VacancyHandler) { h.legacyValidationStatus = on }
}

func NewVacancyHandler(svc VacancyProcessor, opts ...HandlerOption) *VacancyHandler {
	h := &VacancyHandler{service: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Ingest is the POST / endpoint.
func (h *VacancyHandler) Ingest(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())

	var req dtos.VacancySubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", logger.Error(err))
		h.record(metrics.OutcomeValidation)
		c.JSON(h.validationStatus(), dtos.ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	v, err := h.service.Process(c.Request.Context(), &req)
	if err != nil {
		status, outcome, msg := h.describe(err)
		if status >= http.StatusInternalServerError {
			log.Error("Vacancy processing failed",
				logger.String("kind", apperr.KindOf(err).String()),
				logger.Error(err),
			)
		}
		h.record(outcome)
		c.JSON(status, dtos.IngestResponse{OK: false, Error: msg})
		return
	}

	h.record(metrics.OutcomeStored)
	c.JSON(http.StatusOK, dtos.IngestResponse{OK: true, ID: v.ID})
}

// describe maps a pipeline error to its status code, metric outcome and the
// message shown to the caller.
func (h *VacancyHandler) describe(err error) (int, string, string) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	switch kind {
	case apperr.KindValidation:
		var e *apperr.Error
		msg := "Invalid submission"
		if errors.As(err, &e) && e.Err != nil {
			msg = e.Err.Error()
		}
		return h.validationStatus(), metrics.OutcomeValidation, msg
	case apperr.KindUpstream:
		return status, metrics.OutcomeUpstream, "Classification failed"
	case apperr.KindPersistence:
		return status, metrics.OutcomePersist, "Failed to save vacancy"
	default:
		return http.StatusInternalServerError, metrics.OutcomeInternal, "Internal server error"
	}
}

func (h *VacancyHandler) validationStatus() int {
	if h.legacyValidationStatus {
		return http.StatusInternalServerError
	}
	return apperr.KindValidation.HTTPStatus()
}

func (h *VacancyHandler) record(outcome string) {
	if h.metrics != nil {
		h.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}

// MethodNotAllowed answers every method other than POST and OPTIONS.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, dtos.ErrorResponse{Error: "Method not allowed"})
}
