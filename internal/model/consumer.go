package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsumerType string

const (
	ConsumerTypeIndividual ConsumerType = "individual"
	ConsumerTypeLegal      ConsumerType = "legal"
)

type Consumer struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Type            ConsumerType `gorm:"type:varchar(20);not null"`
	FullName        string       `gorm:"type:varchar(255);not null"`
	Address         string       `gorm:"type:text"`
	Phone           string       `gorm:"type:varchar(20)"`
	PersonalAccount string       `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email           string       `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash    string       `gorm:"type:varchar(255);not null"`
	CreatedAt       time.Time
}

func (c *Consumer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
