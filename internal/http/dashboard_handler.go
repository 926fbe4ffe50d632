package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/twokvolts/internal/http/middleware"
	"github.com/nurpe/twokvolts/internal/model"
)

type contractResponse struct {
	ID             string `json:"id"`
	ContractNumber string `json:"contract_number"`
	TariffName     string `json:"tariff_name"`
	MeterNumber    string `json:"meter_number"`
	StartDate      string `json:"start_date"`
	IsActive       bool   `json:"is_active"`
}

func toContractResponse(contract model.Contract) contractResponse {
	return contractResponse{
		ID:             contract.ID.String(),
		ContractNumber: contract.ContractNumber,
		TariffName:     contract.Tariff.Name,
		MeterNumber:    contract.MeterNumber,
		StartDate:      contract.StartDate.Format("2006-01-02"),
		IsActive:       contract.IsActive,
	}
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	activeOnly := c.Query("active") != "false"
	contracts, err := h.contracts.List(c.Request.Context(), principal, activeOnly)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]contractResponse, 0, len(contracts))
	for _, contract := range contracts {
		items = append(items, toContractResponse(contract))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) listTariffs(c *gin.Context) {
	tariffs, err := h.tariffs.ListActive(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	type tariffResponse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Rate        string `json:"rate"`
	}
	items := make([]tariffResponse, 0, len(tariffs))
	for _, tariff := range tariffs {
		items = append(items, tariffResponse{
			ID:          tariff.ID.String(),
			Name:        tariff.Name,
			Description: tariff.Description,
			Rate:        tariff.Rate.StringFixed(4),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) dashboardHome(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	summary, err := h.dashboard.Home(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	contracts := make([]contractResponse, 0, len(summary.ActiveContracts))
	for _, contract := range summary.ActiveContracts {
		contracts = append(contracts, toContractResponse(contract))
	}
	readings := make([]readingResponse, 0, len(summary.LatestReadings))
	for _, reading := range summary.LatestReadings {
		readings = append(readings, toReadingResponse(reading))
	}
	invoices := make([]invoiceResponse, 0, len(summary.CurrentInvoices))
	for _, invoice := range summary.CurrentInvoices {
		invoices = append(invoices, toInvoiceResponse(invoice))
	}
	payments := make([]paymentResponse, 0, len(summary.RecentPayments))
	for _, payment := range summary.RecentPayments {
		payments = append(payments, toPaymentResponse(payment))
	}

	c.JSON(http.StatusOK, gin.H{
		"active_contracts": contracts,
		"latest_readings":  readings,
		"current_invoices": invoices,
		"recent_payments":  payments,
		"total_debt":       summary.TotalDebt,
		"overdue_invoices": summary.OverdueCount,
		"last_activity":    summary.LastActivity,
		"is_user_active":   summary.IsUserActive,
	})
}

func (h *Handler) dashboardOverview(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	series, err := h.dashboard.Overview(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *Handler) dashboardStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	year := parseIntQuery(c, "year", 0)
	report, err := h.dashboard.Stats(c.Request.Context(), principal, year)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) exportDashboardStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	year := parseIntQuery(c, "year", 0)
	export, err := h.dashboard.ExportStats(c.Request.Context(), principal, year)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+export.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.Content)
}

func (h *Handler) dashboardNotifications(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	notifications, err := h.dashboard.Notifications(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": notifications})
}
