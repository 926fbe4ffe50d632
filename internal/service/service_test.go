package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Consumer{},
		&model.Tariff{},
		&model.Contract{},
		&model.MeterReading{},
		&model.Invoice{},
		&model.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixtures struct {
	consumer model.Consumer
	tariff   model.Tariff
	contract model.Contract
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()

	consumer := model.Consumer{
		Type:            model.ConsumerTypeIndividual,
		FullName:        "Ivan Petrov",
		PersonalAccount: "PA-0001-" + t.Name(),
		Email:           t.Name() + "@test.local",
		PasswordHash:    "x",
	}
	if err := db.Create(&consumer).Error; err != nil {
		t.Fatalf("consumer: %v", err)
	}

	tariff := model.Tariff{
		Name:     "Residential",
		Rate:     decimal.RequireFromString("5.4300"),
		IsActive: true,
	}
	if err := db.Create(&tariff).Error; err != nil {
		t.Fatalf("tariff: %v", err)
	}

	contract := model.Contract{
		ConsumerID:            consumer.ID,
		TariffID:              tariff.ID,
		ContractNumber:        "C-" + t.Name(),
		StartDate:             date(2023, 1, 1),
		IsActive:              true,
		MeterNumber:           "M-100",
		MeterInstallationDate: date(2023, 1, 1),
	}
	if err := db.Create(&contract).Error; err != nil {
		t.Fatalf("contract: %v", err)
	}

	return fixtures{consumer: consumer, tariff: tariff, contract: contract}
}

func newReadingService(db *gorm.DB) *ReadingService {
	return NewReadingService(
		repository.NewReadingRepository(db),
		repository.NewContractRepository(db),
		zerolog.Nop(),
	)
}

func newPaymentService(db *gorm.DB) *PaymentService {
	return NewPaymentService(
		repository.NewPaymentRepository(db),
		repository.NewInvoiceRepository(db),
		repository.NewContractRepository(db),
		zerolog.Nop(),
	)
}

func newInvoiceService(db *gorm.DB, pdf PDFGenerator) *InvoiceService {
	return NewInvoiceService(
		repository.NewInvoiceRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewContractRepository(db),
		repository.NewConsumerRepository(db),
		pdf,
		zerolog.Nop(),
	)
}

func principalFor(f fixtures) model.Principal {
	return model.Principal{ConsumerID: f.consumer.ID, Role: model.RoleConsumer}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dec(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func seedInvoice(t *testing.T, db *gorm.DB, contract model.Contract, amount string, period, dueDate time.Time) model.Invoice {
	t.Helper()
	invoice := model.Invoice{
		ContractID:  contract.ID,
		Period:      period,
		Consumption: dec("250.0000"),
		Amount:      dec(amount),
		Status:      model.InvoiceStatusIssued,
		IssueDate:   period,
		DueDate:     dueDate,
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	return invoice
}

var testCtx = context.Background()
