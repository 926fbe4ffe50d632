package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Tariff struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"type:varchar(256);not null"`
	Description string          `gorm:"type:text"`
	Rate        decimal.Decimal `gorm:"type:numeric(10,4);not null"` // price per kWh
	IsActive    bool            `gorm:"not null;default:true"`
}

func (t *Tariff) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Contract struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConsumerID            uuid.UUID `gorm:"type:uuid;not null;index"`
	TariffID              uuid.UUID `gorm:"type:uuid;not null"`
	ContractNumber        string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	StartDate             time.Time `gorm:"not null"`
	EndDate               *time.Time
	IsActive              bool      `gorm:"not null;default:true"`
	MeterNumber           string    `gorm:"type:varchar(50);not null"`
	MeterInstallationDate time.Time `gorm:"not null"`
	Tariff                Tariff    `gorm:"foreignKey:TariffID;constraint:OnDelete:RESTRICT"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
