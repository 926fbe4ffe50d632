package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/repository"
)

type PDFGenerator interface {
	Generate(doc model.InvoiceDocument) ([]byte, error)
}

type InvoiceService struct {
	invoices  *repository.InvoiceRepository
	payments  *repository.PaymentRepository
	contracts *repository.ContractRepository
	consumers *repository.ConsumerRepository
	pdf       PDFGenerator
	log       zerolog.Logger
}

func NewInvoiceService(
	invoices *repository.InvoiceRepository,
	payments *repository.PaymentRepository,
	contracts *repository.ContractRepository,
	consumers *repository.ConsumerRepository,
	pdf PDFGenerator,
	log zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		payments:  payments,
		contracts: contracts,
		consumers: consumers,
		pdf:       pdf,
		log:       log,
	}
}

type ListInvoicesInput struct {
	Status   *model.InvoiceStatus
	Page     int
	PageSize int
}

func (s *InvoiceService) List(ctx context.Context, principal model.Principal, input ListInvoicesInput) ([]model.Invoice, int64, error) {
	contractIDs, err := s.contracts.ContractIDsForConsumer(ctx, principal.ConsumerID, false)
	if err != nil {
		return nil, 0, err
	}
	if len(contractIDs) == 0 {
		return []model.Invoice{}, 0, nil
	}
	return s.invoices.List(ctx, repository.InvoiceFilter{
		ContractIDs: contractIDs,
		Status:      input.Status,
		Page:        input.Page,
		PageSize:    input.PageSize,
	})
}

func (s *InvoiceService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Invoice, error) {
	return s.ownedInvoice(ctx, principal, id)
}

// Reconcile is the standalone settlement entry point: it recomputes the
// invoice status from the full payment set. Safe to re-run; an unchanged
// payment set yields no status change.
func (s *InvoiceService) Reconcile(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Invoice, error) {
	if _, err := s.ownedInvoice(ctx, principal, id); err != nil {
		return nil, err
	}
	if err := s.invoices.Reconcile(ctx, id); err != nil {
		s.log.Error().Err(err).Str("invoice_id", id.String()).Msg("reconciliation failed")
		return nil, fmt.Errorf("%w: reconcile invoice: %v", ErrConsistency, err)
	}
	return s.invoices.GetByID(ctx, id)
}

// MarkOverdue is the time-based sweep over issued invoices past their due
// date. Operator only; scheduling lives outside the service.
func (s *InvoiceService) MarkOverdue(ctx context.Context, principal model.Principal, asOf time.Time) (int64, error) {
	if !principal.IsOperator() {
		return 0, ErrPermissionDenied
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	count, err := s.invoices.MarkOverdue(ctx, dateOnly(asOf))
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info().Int64("count", count).Msg("invoices marked overdue")
	}
	return count, nil
}

// Delete removes an invoice unless payments reference it.
func (s *InvoiceService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsOperator() {
		return ErrPermissionDenied
	}
	if _, err := s.invoices.GetByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	count, err := s.invoices.CountPayments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: invoice has payments and cannot be deleted", ErrValidation)
	}
	return s.invoices.Delete(ctx, id)
}

type InvoiceExport struct {
	FileName string
	Content  []byte
}

func (s *InvoiceService) ExportPDF(ctx context.Context, principal model.Principal, id uuid.UUID) (*InvoiceExport, error) {
	invoice, err := s.ownedInvoice(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	consumer, err := s.consumers.GetByID(ctx, invoice.Contract.ConsumerID)
	if err != nil {
		return nil, err
	}
	totalPaid, err := s.payments.SumPayments(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(model.InvoiceDocument{
		Invoice:   *invoice,
		Contract:  invoice.Contract,
		Consumer:  *consumer,
		TotalPaid: totalPaid,
	})
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("invoice-%s-%s.pdf", invoice.Contract.ContractNumber, invoice.Period.Format("2006-01"))
	return &InvoiceExport{FileName: fileName, Content: content}, nil
}

func (s *InvoiceService) ownedInvoice(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if invoice.Contract.ConsumerID != principal.ConsumerID && !principal.IsOperator() {
		return nil, ErrPermissionDenied
	}
	return invoice, nil
}
