package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodOnline       PaymentMethod = "Online"
	PaymentMethodBankTransfer PaymentMethod = "Bank transfer"
)

// Payment is immutable once created. Recording a payment settles its invoice
// in the same transaction (see repository.PaymentRepository.Create).
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentDate time.Time       `gorm:"not null"`
	ExternalID  string          `gorm:"type:varchar(100)"`
	Method      PaymentMethod   `gorm:"type:varchar(50);not null"`
	CreatedAt   time.Time
	Invoice     Invoice         `gorm:"foreignKey:InvoiceID;constraint:OnDelete:RESTRICT"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
