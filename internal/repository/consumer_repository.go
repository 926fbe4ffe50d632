package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/twokvolts/internal/model"
)

type ConsumerRepository struct {
	db *gorm.DB
}

func NewConsumerRepository(db *gorm.DB) *ConsumerRepository {
	return &ConsumerRepository{db: db}
}

func (r *ConsumerRepository) Create(ctx context.Context, consumer *model.Consumer) error {
	return r.db.WithContext(ctx).Create(consumer).Error
}

func (r *ConsumerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Consumer, error) {
	var consumer model.Consumer
	err := r.db.WithContext(ctx).First(&consumer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &consumer, nil
}

func (r *ConsumerRepository) GetByEmail(ctx context.Context, email string) (*model.Consumer, error) {
	var consumer model.Consumer
	err := r.db.WithContext(ctx).First(&consumer, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &consumer, nil
}

func (r *ConsumerRepository) ExistsByPersonalAccount(ctx context.Context, account string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(1) FROM consumers WHERE personal_account = ?
	`, account).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
