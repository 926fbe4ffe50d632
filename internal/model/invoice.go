package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceStatusIssued  InvoiceStatus = "issued"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

type Invoice struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ContractID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Period         time.Time       `gorm:"not null"` // first day of the billed month
	MeterReadingID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	Consumption    decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status         InvoiceStatus   `gorm:"type:varchar(20);not null;default:'issued'"`
	IssueDate      time.Time       `gorm:"not null"`
	DueDate        time.Time       `gorm:"not null"`
	Contract       Contract        `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Settle moves an issued invoice to paid once the payment total covers the
// amount due. It returns true when the status actually changed. There is no
// partially-paid state and a paid invoice is never demoted.
func (i *Invoice) Settle(totalPaid decimal.Decimal) bool {
	if i.Status != InvoiceStatusIssued {
		return false
	}
	if totalPaid.LessThan(i.Amount) {
		return false
	}
	i.Status = InvoiceStatusPaid
	return true
}
