package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MeterReading is a point-in-time counter value in kWh for one contract.
// The (contract_id, reading_date) unique index is the authoritative guard
// against concurrent duplicate submissions; service-level checks are a
// best-effort pre-check.
type MeterReading struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ContractID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_reading_contract_date"`
	ReadingDate time.Time       `gorm:"not null;uniqueIndex:uq_reading_contract_date"`
	Value       decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	IsConfirmed bool            `gorm:"not null;default:false"`
	SubmittedAt time.Time       `gorm:"autoCreateTime"`
	Contract    Contract        `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
}

func (r *MeterReading) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
