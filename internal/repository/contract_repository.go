package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Preload("Tariff").First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// ListForConsumer returns the consumer's contracts, active ones only when
// activeOnly is set, newest first.
func (r *ContractRepository) ListForConsumer(ctx context.Context, consumerID uuid.UUID, activeOnly bool) ([]model.Contract, error) {
	query := r.db.WithContext(ctx).Preload("Tariff").Where("consumer_id = ?", consumerID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var contracts []model.Contract
	if err := query.Order("start_date DESC").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// ContractIDsForConsumer is the ownership scope used by reading, invoice and
// payment listings.
func (r *ContractRepository) ContractIDsForConsumer(ctx context.Context, consumerID uuid.UUID, activeOnly bool) ([]uuid.UUID, error) {
	query := `SELECT id FROM contracts WHERE consumer_id = ?`
	args := []interface{}{consumerID}
	if activeOnly {
		query += ` AND is_active = ?`
		args = append(args, true)
	}
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ContractRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE contracts SET is_active = ? WHERE id = ?
	`, active, id).Error
}
