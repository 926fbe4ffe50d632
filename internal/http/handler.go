package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/twokvolts/internal/service"
)

type Handler struct {
	consumers *service.ConsumerService
	contracts *service.ContractService
	readings  *service.ReadingService
	invoices  *service.InvoiceService
	payments  *service.PaymentService
	dashboard *service.DashboardService
	tariffs   *service.TariffService
	log       zerolog.Logger
}

func NewHandler(
	consumers *service.ConsumerService,
	contracts *service.ContractService,
	readings *service.ReadingService,
	invoices *service.InvoiceService,
	payments *service.PaymentService,
	dashboard *service.DashboardService,
	tariffs *service.TariffService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		consumers: consumers,
		contracts: contracts,
		readings:  readings,
		invoices:  invoices,
		payments:  payments,
		dashboard: dashboard,
		tariffs:   tariffs,
		log:       log,
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConsistency):
		h.log.Error().Err(err).Msg("consistency error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			// month bucketing works on UTC calendar days, so an offset
			// timestamp must resolve to the day of its UTC instant
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func parseID(raw string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(raw))
}
