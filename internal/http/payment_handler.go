package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nurpe/twokvolts/internal/http/middleware"
	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/service"
)

type paymentResponse struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Method      string          `json:"method"`
	ExternalID  string          `json:"external_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toPaymentResponse(payment model.Payment) paymentResponse {
	return paymentResponse{
		ID:          payment.ID.String(),
		InvoiceID:   payment.InvoiceID.String(),
		Amount:      payment.Amount,
		PaymentDate: payment.PaymentDate.Format("2006-01-02"),
		Method:      string(payment.Method),
		ExternalID:  payment.ExternalID,
		CreatedAt:   payment.CreatedAt,
	}
}

type recordPaymentRequest struct {
	InvoiceID   string          `json:"invoice_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate string          `json:"payment_date"`
	Method      string          `json:"method" binding:"required"`
	ExternalID  string          `json:"external_id"`
}

func (h *Handler) recordPayment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoiceID, err := parseID(req.InvoiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice_id"})
		return
	}

	var paymentDate time.Time
	if req.PaymentDate != "" {
		paymentDate, err = parseDate(req.PaymentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment_date"})
			return
		}
	}

	payment, err := h.payments.Record(c.Request.Context(), principal, service.RecordPaymentInput{
		InvoiceID:   invoiceID,
		Amount:      req.Amount,
		PaymentDate: paymentDate,
		Method:      req.Method,
		ExternalID:  req.ExternalID,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPaymentResponse(*payment))
}

func (h *Handler) listPayments(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	limit := parseIntQuery(c, "limit", 10)
	payments, err := h.payments.ListRecent(c.Request.Context(), principal, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]paymentResponse, 0, len(payments))
	for _, payment := range payments {
		items = append(items, toPaymentResponse(payment))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
