package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
)

type ReadingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// MostRecentReadingBefore returns the latest reading strictly earlier than
// date, or nil when the contract has no prior readings. Ties on date are not
// prior.
func (r *ReadingRepository) MostRecentReadingBefore(ctx context.Context, contractID uuid.UUID, date time.Time) (*model.MeterReading, error) {
	var reading model.MeterReading
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND reading_date < ?", contractID, date).
		Order("reading_date DESC").
		First(&reading).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

// ReadingExistsInMonth reports whether the contract already has a reading in
// the given calendar month.
func (r *ReadingRepository) ReadingExistsInMonth(ctx context.Context, contractID uuid.UUID, year int, month time.Month) (bool, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(1)
		FROM meter_readings
		WHERE contract_id = ?
			AND reading_date >= ?
			AND reading_date < ?
	`, contractID, monthStart, nextMonth).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ReadingRepository) Create(ctx context.Context, reading *model.MeterReading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

// CreateBulk inserts all readings or none of them.
func (r *ReadingRepository) CreateBulk(ctx context.Context, readings []*model.MeterReading) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, reading := range readings {
			if err := tx.Create(reading).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ReadingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MeterReading, error) {
	var reading model.MeterReading
	err := r.db.WithContext(ctx).Preload("Contract").First(&reading, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

type ReadingFilter struct {
	ContractIDs []uuid.UUID
	ContractID  *uuid.UUID
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
}

// List returns readings scoped to the filter's contracts, newest first, with
// the total row count for pagination.
func (r *ReadingRepository) List(ctx context.Context, filter ReadingFilter) ([]model.MeterReading, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.MeterReading{}).
		Where("contract_id IN ?", filter.ContractIDs)
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.DateFrom != nil {
		query = query.Where("reading_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("reading_date <= ?", *filter.DateTo)
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

	var readings []model.MeterReading
	err := query.
		Order("reading_date DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&readings).Error
	if err != nil {
		return nil, 0, err
	}
	return readings, total, nil
}

// ListByContract returns all readings of one contract in date order, oldest
// first. Used by the history chart.
func (r *ReadingRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.MeterReading, error) {
	var readings []model.MeterReading
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("reading_date ASC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *ReadingRepository) Update(ctx context.Context, reading *model.MeterReading) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE meter_readings
		SET reading_date = ?, value = ?
		WHERE id = ?
	`, reading.ReadingDate, reading.Value, reading.ID).Error
}

func (r *ReadingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM meter_readings WHERE id = ?
	`, id).Error
}
