package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/repository"
)

type ReadingService struct {
	readings  *repository.ReadingRepository
	contracts *repository.ContractRepository
	log       zerolog.Logger
}

func NewReadingService(readings *repository.ReadingRepository, contracts *repository.ContractRepository, log zerolog.Logger) *ReadingService {
	return &ReadingService{readings: readings, contracts: contracts, log: log}
}

type SubmitReadingInput struct {
	ContractID  uuid.UUID
	ReadingDate time.Time
	Value       decimal.Decimal
}

// ValidateReading runs the submission checks without persisting anything:
// the value must exceed the most recent reading dated strictly before the
// proposed date, and the contract must not already have a reading in the
// proposed calendar month. Only the immediately preceding reading is
// consulted, so a back-dated reading below a later one passes here.
func (s *ReadingService) ValidateReading(ctx context.Context, contractID uuid.UUID, readingDate time.Time, value decimal.Decimal) error {
	previous, err := s.readings.MostRecentReadingBefore(ctx, contractID, readingDate)
	if err != nil {
		return err
	}
	if previous != nil && value.LessThanOrEqual(previous.Value) {
		return fmt.Errorf("%w: value must exceed previous reading", ErrValidation)
	}

	exists, err := s.readings.ReadingExistsInMonth(ctx, contractID, readingDate.Year(), readingDate.Month())
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: duplicate reading for this month", ErrValidation)
	}
	return nil
}

func (s *ReadingService) Submit(ctx context.Context, principal model.Principal, input SubmitReadingInput) (*model.MeterReading, error) {
	if _, err := s.ownedActiveContract(ctx, principal, input.ContractID); err != nil {
		return nil, err
	}

	if err := checkValue(input.Value); err != nil {
		return nil, err
	}
	readingDate := dateOnly(input.ReadingDate)
	if readingDate.IsZero() {
		return nil, fmt.Errorf("%w: reading_date is required", ErrInvalidInput)
	}

	if err := s.ValidateReading(ctx, input.ContractID, readingDate, input.Value); err != nil {
		return nil, err
	}

	reading := &model.MeterReading{
		ContractID:  input.ContractID,
		ReadingDate: readingDate,
		Value:       input.Value,
	}
	if err := s.readings.Create(ctx, reading); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race with a concurrent submission; the unique index
			// on (contract_id, reading_date) is the authoritative guard
			return nil, fmt.Errorf("%w: duplicate reading for this month", ErrValidation)
		}
		return nil, err
	}

	s.log.Info().
		Str("contract_id", input.ContractID.String()).
		Str("value", input.Value.String()).
		Msg("meter reading submitted")
	return reading, nil
}

type BulkReadingRow struct {
	ContractID  uuid.UUID
	ReadingDate time.Time
	Value       decimal.Decimal
}

// SubmitBulk validates every row before any insert and writes them in one
// transaction: either all rows land or none do. Row numbers in errors are
// 1-based.
func (s *ReadingService) SubmitBulk(ctx context.Context, principal model.Principal, rows []BulkReadingRow) (int, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: no rows to process", ErrValidation)
	}

	type monthKey struct {
		contract uuid.UUID
		year     int
		month    time.Month
	}
	seen := make(map[monthKey]struct{}, len(rows))
	batch := make(map[uuid.UUID][]*model.MeterReading, len(rows))

	readings := make([]*model.MeterReading, 0, len(rows))
	for i, row := range rows {
		rowNum := i + 1
		if row.ContractID == uuid.Nil || row.ReadingDate.IsZero() {
			return 0, fmt.Errorf("%w: incomplete data in row %d", ErrValidation, rowNum)
		}
		if err := checkValue(row.Value); err != nil {
			return 0, fmt.Errorf("%w: row %d: value must be a non-negative amount with at most 4 decimal places", ErrValidation, rowNum)
		}
		if _, err := s.ownedActiveContract(ctx, principal, row.ContractID); err != nil {
			return 0, fmt.Errorf("%w: no access to contract in row %d", ErrValidation, rowNum)
		}

		readingDate := dateOnly(row.ReadingDate)
		key := monthKey{row.ContractID, readingDate.Year(), readingDate.Month()}
		if _, dup := seen[key]; dup {
			return 0, fmt.Errorf("%w: row %d: duplicate reading for this month", ErrValidation, rowNum)
		}
		seen[key] = struct{}{}

		if err := s.ValidateReading(ctx, row.ContractID, readingDate, row.Value); err != nil {
			if errors.Is(err, ErrValidation) {
				return 0, fmt.Errorf("row %d: %w", rowNum, err)
			}
			return 0, err
		}

		// rows within the batch are not in the database yet, so the check
		// against earlier-dated siblings runs in memory
		for _, prior := range batch[row.ContractID] {
			if prior.ReadingDate.Before(readingDate) && row.Value.LessThanOrEqual(prior.Value) {
				return 0, fmt.Errorf("%w: row %d: value must exceed previous reading", ErrValidation, rowNum)
			}
		}

		reading := &model.MeterReading{
			ContractID:  row.ContractID,
			ReadingDate: readingDate,
			Value:       row.Value,
		}
		batch[row.ContractID] = append(batch[row.ContractID], reading)
		readings = append(readings, reading)
	}

	if err := s.readings.CreateBulk(ctx, readings); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("%w: duplicate reading for this month", ErrValidation)
		}
		return 0, err
	}

	s.log.Info().Int("count", len(readings)).Msg("bulk readings submitted")
	return len(readings), nil
}

type ListReadingsInput struct {
	ContractID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

func (s *ReadingService) List(ctx context.Context, principal model.Principal, input ListReadingsInput) ([]model.MeterReading, int64, error) {
	contractIDs, err := s.contracts.ContractIDsForConsumer(ctx, principal.ConsumerID, true)
	if err != nil {
		return nil, 0, err
	}
	if len(contractIDs) == 0 {
		return []model.MeterReading{}, 0, nil
	}

	if input.ContractID != nil && !containsID(contractIDs, *input.ContractID) {
		return nil, 0, ErrPermissionDenied
	}

	return s.readings.List(ctx, repository.ReadingFilter{
		ContractIDs: contractIDs,
		ContractID:  input.ContractID,
		DateFrom:    input.DateFrom,
		DateTo:      input.DateTo,
		Page:        input.Page,
		PageSize:    input.PageSize,
	})
}

type ReadingDetail struct {
	Reading     *model.MeterReading
	Previous    *model.MeterReading
	Consumption *decimal.Decimal
}

func (s *ReadingService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*ReadingDetail, error) {
	reading, err := s.ownedReading(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	detail := &ReadingDetail{Reading: reading}
	previous, err := s.readings.MostRecentReadingBefore(ctx, reading.ContractID, reading.ReadingDate)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		consumption := reading.Value.Sub(previous.Value)
		detail.Previous = previous
		detail.Consumption = &consumption
	}
	return detail, nil
}

func (s *ReadingService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, readingDate time.Time, value decimal.Decimal) (*model.MeterReading, error) {
	if err := checkValue(value); err != nil {
		return nil, err
	}
	reading, err := s.ownedReading(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	newDate := dateOnly(readingDate)
	previous, err := s.readings.MostRecentReadingBefore(ctx, reading.ContractID, newDate)
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.ID != reading.ID && value.LessThanOrEqual(previous.Value) {
		return nil, fmt.Errorf("%w: value must exceed previous reading", ErrValidation)
	}

	// the month check would always trip over the reading being edited, so it
	// only runs when the edit moves the reading into a different month
	if newDate.Year() != reading.ReadingDate.Year() || newDate.Month() != reading.ReadingDate.Month() {
		exists, err := s.readings.ReadingExistsInMonth(ctx, reading.ContractID, newDate.Year(), newDate.Month())
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: duplicate reading for this month", ErrValidation)
		}
	}

	reading.ReadingDate = newDate
	reading.Value = value
	if err := s.readings.Update(ctx, reading); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: duplicate reading for this month", ErrValidation)
		}
		return nil, err
	}
	return reading, nil
}

func (s *ReadingService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if _, err := s.ownedReading(ctx, principal, id); err != nil {
		return err
	}
	return s.readings.Delete(ctx, id)
}

type HistoryPoint struct {
	Date  string          `json:"date"` // YYYY-MM
	Value decimal.Decimal `json:"value"`
}

func (s *ReadingService) History(ctx context.Context, principal model.Principal, contractID uuid.UUID) ([]HistoryPoint, error) {
	if _, err := s.ownedActiveContract(ctx, principal, contractID); err != nil {
		return nil, err
	}

	readings, err := s.readings.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	points := make([]HistoryPoint, 0, len(readings))
	for _, reading := range readings {
		points = append(points, HistoryPoint{
			Date:  reading.ReadingDate.Format("2006-01"),
			Value: reading.Value,
		})
	}
	return points, nil
}

func (s *ReadingService) ownedActiveContract(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if contract.ConsumerID != principal.ConsumerID {
		return nil, ErrPermissionDenied
	}
	if !contract.IsActive {
		return nil, fmt.Errorf("%w: contract is not active", ErrValidation)
	}
	return contract, nil
}

func (s *ReadingService) ownedReading(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.MeterReading, error) {
	reading, err := s.readings.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if reading.Contract.ConsumerID != principal.ConsumerID {
		return nil, ErrPermissionDenied
	}
	return reading, nil
}

func checkValue(value decimal.Decimal) error {
	if value.IsNegative() {
		return fmt.Errorf("%w: value must be non-negative", ErrInvalidInput)
	}
	if !value.Equal(value.Round(4)) {
		return fmt.Errorf("%w: value precision is limited to 4 decimal places", ErrInvalidInput)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
