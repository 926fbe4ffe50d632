package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("Contract.Tariff").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

type InvoiceFilter struct {
	ContractIDs []uuid.UUID
	Status      *model.InvoiceStatus
	Page        int
	PageSize    int
}

func (r *InvoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("contract_id IN ?", filter.ContractIDs)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	var invoices []model.Invoice
	err := query.
		Order("period DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// Reconcile recomputes the invoice status from its current payment set in one
// transaction. Idempotent on an unchanged set.
func (r *InvoiceRepository) Reconcile(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return settleInvoice(tx, invoiceID)
	})
}

// MarkOverdue flips issued invoices past their due date to overdue and
// returns how many rows changed.
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE invoices
		SET status = ?
		WHERE status = ? AND due_date < ?
	`, model.InvoiceStatusOverdue, model.InvoiceStatusIssued, asOf)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *InvoiceRepository) CountPayments(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(1) FROM payments WHERE invoice_id = ?
	`, invoiceID).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes an invoice. Callers must check CountPayments first; the
// foreign key restriction is the authoritative guard.
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM invoices WHERE id = ?
	`, id).Error
}
