package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts the payment and settles its invoice in one transaction: the
// payment row and the invoice status update commit together or not at all.
func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return settleInvoice(tx, payment.InvoiceID)
	})
}

func (r *PaymentRepository) SumPayments(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	return sumPayments(r.db.WithContext(ctx), invoiceID)
}

// ListRecentForContracts returns the newest payments across the given
// contracts, capped at limit.
func (r *PaymentRepository) ListRecentForContracts(ctx context.Context, contractIDs []uuid.UUID, limit int) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN invoices ON invoices.id = payments.invoice_id").
		Where("invoices.contract_id IN ?", contractIDs).
		Order("payments.payment_date DESC").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func sumPayments(tx *gorm.DB, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := tx.Raw(`
		SELECT COALESCE(SUM(amount), 0) AS total FROM payments WHERE invoice_id = ?
	`, invoiceID).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// settleInvoice applies the settlement rule inside the caller's transaction.
func settleInvoice(tx *gorm.DB, invoiceID uuid.UUID) error {
	var invoice model.Invoice
	if err := tx.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		return err
	}

	total, err := sumPayments(tx, invoiceID)
	if err != nil {
		return err
	}

	if !invoice.Settle(total) {
		return nil
	}
	return tx.Exec(`
		UPDATE invoices SET status = ? WHERE id = ?
	`, invoice.Status, invoice.ID).Error
}
