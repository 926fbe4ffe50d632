package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
)

type TariffRepository struct {
	db *gorm.DB
}

func NewTariffRepository(db *gorm.DB) *TariffRepository {
	return &TariffRepository{db: db}
}

func (r *TariffRepository) Create(ctx context.Context, tariff *model.Tariff) error {
	return r.db.WithContext(ctx).Create(tariff).Error
}

func (r *TariffRepository) ListActive(ctx context.Context) ([]model.Tariff, error) {
	var tariffs []model.Tariff
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&tariffs).Error
	if err != nil {
		return nil, err
	}
	return tariffs, nil
}
