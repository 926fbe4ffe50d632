package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
)

// DashboardRepository serves the read-only aggregates behind the personal
// account pages. Nothing here mutates state.
type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) LatestReadings(ctx context.Context, contractIDs []uuid.UUID, limit int) ([]model.MeterReading, error) {
	var readings []model.MeterReading
	err := r.db.WithContext(ctx).
		Where("contract_id IN ?", contractIDs).
		Order("reading_date DESC").
		Limit(limit).
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *DashboardRepository) CurrentInvoices(ctx context.Context, contractIDs []uuid.UUID, limit int) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id IN ? AND status = ?", contractIDs, model.InvoiceStatusIssued).
		Order("due_date ASC").
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// TotalDebt is the sum over all unsettled invoices of the given contracts.
func (r *DashboardRepository) TotalDebt(ctx context.Context, contractIDs []uuid.UUID) (decimal.Decimal, error) {
	if len(contractIDs) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount), 0) AS total
		FROM invoices
		WHERE contract_id IN ? AND status IN ?
	`, contractIDs, []model.InvoiceStatus{model.InvoiceStatusIssued, model.InvoiceStatusOverdue}).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// CountOverdue counts invoices already marked overdue plus issued invoices
// whose due date has passed but the sweep has not reached yet.
func (r *DashboardRepository) CountOverdue(ctx context.Context, contractIDs []uuid.UUID, asOf time.Time) (int64, error) {
	if len(contractIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(1)
		FROM invoices
		WHERE contract_id IN ?
		  AND (status = ? OR (status = ? AND due_date < ?))
	`, contractIDs, model.InvoiceStatusOverdue, model.InvoiceStatusIssued, asOf).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// InvoicesSince returns invoices of the contracts with a period on or after
// since, oldest first. Feeds the overview chart and yearly stats.
func (r *DashboardRepository) InvoicesSince(ctx context.Context, contractIDs []uuid.UUID, since time.Time) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id IN ? AND period >= ?", contractIDs, since).
		Order("period ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *DashboardRepository) InvoicesForYear(ctx context.Context, contractIDs []uuid.UUID, year int) ([]model.Invoice, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id IN ? AND period >= ? AND period < ?", contractIDs, yearStart, yearEnd).
		Order("period ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *DashboardRepository) OverdueInvoices(ctx context.Context, contractIDs []uuid.UUID, asOf time.Time) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id IN ? AND (status = ? OR (status = ? AND due_date < ?))",
			contractIDs, model.InvoiceStatusOverdue, model.InvoiceStatusIssued, asOf).
		Order("due_date ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *DashboardRepository) InvoicesDueBetween(ctx context.Context, contractIDs []uuid.UUID, from, to time.Time) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id IN ? AND status = ? AND due_date >= ? AND due_date <= ?",
			contractIDs, model.InvoiceStatusIssued, from, to).
		Order("due_date ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *DashboardRepository) InvoicesIssuedSince(ctx context.Context, contractIDs []uuid.UUID, since time.Time) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id IN ? AND issue_date >= ?", contractIDs, since).
		Order("issue_date DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
