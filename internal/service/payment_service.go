package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/repository"
)

type PaymentService struct {
	payments  *repository.PaymentRepository
	invoices  *repository.InvoiceRepository
	contracts *repository.ContractRepository
	log       zerolog.Logger
}

func NewPaymentService(
	payments *repository.PaymentRepository,
	invoices *repository.InvoiceRepository,
	contracts *repository.ContractRepository,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{payments: payments, invoices: invoices, contracts: contracts, log: log}
}

type RecordPaymentInput struct {
	InvoiceID   uuid.UUID
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	ExternalID  string
}

// Record persists the payment and settles its invoice atomically. The payment
// itself is immutable once recorded.
func (s *PaymentService) Record(ctx context.Context, principal model.Principal, input RecordPaymentInput) (*model.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !input.Amount.Equal(input.Amount.Round(2)) {
		return nil, fmt.Errorf("%w: amount precision is limited to 2 decimal places", ErrInvalidInput)
	}
	method, err := parsePaymentMethod(input.Method)
	if err != nil {
		return nil, err
	}

	invoice, err := s.ownedInvoice(ctx, principal, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	paymentDate := dateOnly(input.PaymentDate)
	if paymentDate.IsZero() {
		paymentDate = dateOnly(time.Now())
	}

	payment := &model.Payment{
		InvoiceID:   invoice.ID,
		Amount:      input.Amount,
		PaymentDate: paymentDate,
		ExternalID:  strings.TrimSpace(input.ExternalID),
		Method:      method,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("%w: record payment: %v", ErrConsistency, err)
	}

	s.log.Info().
		Str("invoice_id", invoice.ID.String()).
		Str("amount", input.Amount.String()).
		Msg("payment recorded")
	return payment, nil
}

func (s *PaymentService) ListRecent(ctx context.Context, principal model.Principal, limit int) ([]model.Payment, error) {
	if limit < 1 {
		limit = 10
	}
	contractIDs, err := s.contracts.ContractIDsForConsumer(ctx, principal.ConsumerID, false)
	if err != nil {
		return nil, err
	}
	if len(contractIDs) == 0 {
		return []model.Payment{}, nil
	}
	return s.payments.ListRecentForContracts(ctx, contractIDs, limit)
}

func (s *PaymentService) ownedInvoice(ctx context.Context, principal model.Principal, invoiceID uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, invoiceID)
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

func parsePaymentMethod(raw string) (model.PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cash":
		return model.PaymentMethodCash, nil
	case "online":
		return model.PaymentMethodOnline, nil
	case "bank transfer", "bank_transfer":
		return model.PaymentMethodBankTransfer, nil
	default:
		return "", fmt.Errorf("%w: invalid payment method", ErrInvalidInput)
	}
}
