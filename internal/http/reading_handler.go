package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/twokvolts/internal/http/middleware"
	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/service"
)

type readingResponse struct {
	ID          string          `json:"id"`
	ContractID  string          `json:"contract_id"`
	ReadingDate string          `json:"reading_date"`
	Value       decimal.Decimal `json:"value"`
	IsConfirmed bool            `json:"is_confirmed"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

func toReadingResponse(reading model.MeterReading) readingResponse {
	return readingResponse{
		ID:          reading.ID.String(),
		ContractID:  reading.ContractID.String(),
		ReadingDate: reading.ReadingDate.Format("2006-01-02"),
		Value:       reading.Value,
		IsConfirmed: reading.IsConfirmed,
		SubmittedAt: reading.SubmittedAt,
	}
}

type submitReadingRequest struct {
	ContractID  string          `json:"contract_id" binding:"required"`
	ReadingDate string          `json:"reading_date" binding:"required"`
	Value       decimal.Decimal `json:"value" binding:"required"`
}

func (h *Handler) submitReading(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req submitReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contractID, err := parseID(req.ContractID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_id"})
		return
	}
	readingDate, err := parseDate(req.ReadingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading_date"})
		return
	}

	reading, err := h.readings.Submit(c.Request.Context(), principal, service.SubmitReadingInput{
		ContractID:  contractID,
		ReadingDate: readingDate,
		Value:       req.Value,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReadingResponse(*reading))
}

type bulkReadingRow struct {
	ContractID  string          `json:"contract_id" binding:"required"`
	ReadingDate string          `json:"reading_date" binding:"required"`
	Value       decimal.Decimal `json:"value" binding:"required"`
}

type bulkReadingRequest struct {
	Readings []bulkReadingRow `json:"readings" binding:"required"`
}

func (h *Handler) submitBulkReadings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req bulkReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows := make([]service.BulkReadingRow, 0, len(req.Readings))
	for i, raw := range req.Readings {
		contractID, err := parseID(raw.ContractID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_id in row " + strconv.Itoa(i+1)})
			return
		}
		readingDate, err := parseDate(raw.ReadingDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading_date in row " + strconv.Itoa(i+1)})
			return
		}
		rows = append(rows, service.BulkReadingRow{
			ContractID:  contractID,
			ReadingDate: readingDate,
			Value:       raw.Value,
		})
	}

	created, err := h.readings.SubmitBulk(c.Request.Context(), principal, rows)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": created})
}

func (h *Handler) listReadings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	input := service.ListReadingsInput{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 10),
	}

	if raw := c.Query("contract_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_id"})
			return
		}
		input.ContractID = &id
	}
	if raw := c.Query("date_from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from"})
			return
		}
		input.DateFrom = &from
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_to"})
			return
		}
		input.DateTo = &to
	}

	readings, total, err := h.readings.List(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]readingResponse, 0, len(readings))
	for _, reading := range readings {
		items = append(items, toReadingResponse(reading))
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  input.Page,
	})
}

func (h *Handler) getReading(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	detail, err := h.readings.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := gin.H{"reading": toReadingResponse(*detail.Reading)}
	if detail.Previous != nil {
		response["previous"] = toReadingResponse(*detail.Previous)
		response["consumption"] = detail.Consumption
	}
	c.JSON(http.StatusOK, response)
}

type updateReadingRequest struct {
	ReadingDate string          `json:"reading_date" binding:"required"`
	Value       decimal.Decimal `json:"value" binding:"required"`
}

func (h *Handler) updateReading(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	readingDate, err := parseDate(req.ReadingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading_date"})
		return
	}

	reading, err := h.readings.Update(c.Request.Context(), principal, id, readingDate, req.Value)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReadingResponse(*reading))
}

func (h *Handler) deleteReading(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.readings.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) readingHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	points, err := h.readings.History(c.Request.Context(), principal, contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
