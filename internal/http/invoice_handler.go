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

type invoiceResponse struct {
	ID          string          `json:"id"`
	ContractID  string          `json:"contract_id"`
	Period      string          `json:"period"`
	Consumption decimal.Decimal `json:"consumption"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	IssueDate   string          `json:"issue_date"`
	DueDate     string          `json:"due_date"`
}

func toInvoiceResponse(invoice model.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:          invoice.ID.String(),
		ContractID:  invoice.ContractID.String(),
		Period:      invoice.Period.Format("2006-01"),
		Consumption: invoice.Consumption,
		Amount:      invoice.Amount,
		Status:      string(invoice.Status),
		IssueDate:   invoice.IssueDate.Format("2006-01-02"),
		DueDate:     invoice.DueDate.Format("2006-01-02"),
	}
}

func (h *Handler) listInvoices(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	input := service.ListInvoicesInput{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 10),
	}
	if raw := c.Query("status"); raw != "" {
		status := model.InvoiceStatus(raw)
		switch status {
		case model.InvoiceStatusIssued, model.InvoiceStatusPaid, model.InvoiceStatusOverdue:
			input.Status = &status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}

	invoices, total, err := h.invoices.List(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]invoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		items = append(items, toInvoiceResponse(invoice))
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  input.Page,
	})
}

func (h *Handler) getInvoice(c *gin.Context) {
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

	invoice, err := h.invoices.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(*invoice))
}

func (h *Handler) invoicePDF(c *gin.Context) {
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

	export, err := h.invoices.ExportPDF(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+export.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", export.Content)
}

func (h *Handler) reconcileInvoice(c *gin.Context) {
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

	invoice, err := h.invoices.Reconcile(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(*invoice))
}

func (h *Handler) deleteInvoice(c *gin.Context) {
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

	if err := h.invoices.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type markOverdueRequest struct {
	AsOf string `json:"as_of"`
}

func (h *Handler) markOverdueInvoices(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req markOverdueRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asOf := time.Time{}
	if req.AsOf != "" {
		parsed, err := parseDate(req.AsOf)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid as_of"})
			return
		}
		asOf = parsed
	}

	count, err := h.invoices.MarkOverdue(c.Request.Context(), principal, asOf)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": count})
}
