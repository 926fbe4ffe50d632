package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/twokvolts/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo-%s?mode=memory&cache=shared", t.Name())
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

func seedContract(t *testing.T, db *gorm.DB) model.Contract {
	t.Helper()

	consumer := model.Consumer{
		Type:            model.ConsumerTypeIndividual,
		FullName:        "Test Consumer",
		PersonalAccount: "PA-" + t.Name(),
		Email:           t.Name() + "@test.local",
		PasswordHash:    "x",
	}
	if err := db.Create(&consumer).Error; err != nil {
		t.Fatalf("consumer: %v", err)
	}

	tariff := model.Tariff{Name: "Residential", Rate: decimal.RequireFromString("5.43"), IsActive: true}
	if err := db.Create(&tariff).Error; err != nil {
		t.Fatalf("tariff: %v", err)
	}

	contract := model.Contract{
		ConsumerID:            consumer.ID,
		TariffID:              tariff.ID,
		ContractNumber:        "C-" + t.Name(),
		StartDate:             day(2023, 1, 1),
		IsActive:              true,
		MeterNumber:           "M-1",
		MeterInstallationDate: day(2023, 1, 1),
	}
	if err := db.Create(&contract).Error; err != nil {
		t.Fatalf("contract: %v", err)
	}
	return contract
}

func seedReading(t *testing.T, db *gorm.DB, contract model.Contract, on time.Time, value string) model.MeterReading {
	t.Helper()
	reading := model.MeterReading{
		ContractID:  contract.ID,
		ReadingDate: on,
		Value:       decimal.RequireFromString(value),
	}
	if err := db.Create(&reading).Error; err != nil {
		t.Fatalf("reading: %v", err)
	}
	return reading
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var testCtx = context.Background()

func TestMostRecentReadingBefore(t *testing.T) {
	db := setupTestDB(t)
	contract := seedContract(t, db)
	repo := NewReadingRepository(db)

	seedReading(t, db, contract, day(2024, 1, 15), "100")
	seedReading(t, db, contract, day(2024, 2, 10), "150")

	got, err := repo.MostRecentReadingBefore(testCtx, contract.ID, day(2024, 3, 5))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got == nil || !got.Value.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("expected the february reading, got %+v", got)
	}

	got, err = repo.MostRecentReadingBefore(testCtx, contract.ID, day(2024, 2, 1))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got == nil || !got.Value.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected the january reading, got %+v", got)
	}
}

// A reading dated exactly on the probe date is not prior to it.
func TestMostRecentReadingBeforeExcludesSameDate(t *testing.T) {
	db := setupTestDB(t)
	contract := seedContract(t, db)
	repo := NewReadingRepository(db)

	seedReading(t, db, contract, day(2024, 1, 15), "100")

	got, err := repo.MostRecentReadingBefore(testCtx, contract.ID, day(2024, 1, 15))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestMostRecentReadingBeforeEmpty(t *testing.T) {
	db := setupTestDB(t)
	contract := seedContract(t, db)
	repo := NewReadingRepository(db)

	got, err := repo.MostRecentReadingBefore(testCtx, contract.ID, day(2024, 1, 1))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for empty contract, got %+v", got)
	}
}

func TestReadingExistsInMonthBoundaries(t *testing.T) {
	db := setupTestDB(t)
	contract := seedContract(t, db)
	repo := NewReadingRepository(db)

	seedReading(t, db, contract, day(2024, 1, 31), "100")

	exists, err := repo.ReadingExistsInMonth(testCtx, contract.ID, 2024, time.January)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !exists {
		t.Fatalf("expected reading in january")
	}

	exists, err = repo.ReadingExistsInMonth(testCtx, contract.ID, 2024, time.February)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if exists {
		t.Fatalf("last day of january must not leak into february")
	}

	exists, err = repo.ReadingExistsInMonth(testCtx, contract.ID, 2023, time.January)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if exists {
		t.Fatalf("same month of another year must not match")
	}
}

func TestCreateDuplicateDateTranslated(t *testing.T) {
	db := setupTestDB(t)
	contract := seedContract(t, db)
	repo := NewReadingRepository(db)

	first := model.MeterReading{ContractID: contract.ID, ReadingDate: day(2024, 1, 15), Value: decimal.RequireFromString("100")}
	if err := repo.Create(testCtx, &first); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := model.MeterReading{ContractID: contract.ID, ReadingDate: day(2024, 1, 15), Value: decimal.RequireFromString("120")}
	err := repo.Create(testCtx, &dup)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestReadingListPagination(t *testing.T) {
	db := setupTestDB(t)
	contract := seedContract(t, db)
	repo := NewReadingRepository(db)

	for month := 1; month <= 12; month++ {
		seedReading(t, db, contract, day(2024, time.Month(month), 15), fmt.Sprintf("%d", month*100))
	}

	readings, total, err := repo.List(testCtx, ReadingFilter{
		ContractIDs: []uuid.UUID{contract.ID},
		Page:        2,
		PageSize:    5,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 12 {
		t.Fatalf("expected total 12, got %d", total)
	}
	if len(readings) != 5 {
		t.Fatalf("expected 5 rows on page 2, got %d", len(readings))
	}
	// newest first, so page 2 starts at july
	if readings[0].ReadingDate.Month() != time.July {
		t.Fatalf("expected july first on page 2, got %s", readings[0].ReadingDate)
	}
}

// The payment insert and the invoice status update share one transaction:
// when the status write fails, the payment row must not survive.
func TestPaymentCreateRollsBackWhenSettleFails(t *testing.T) {
	db := setupTestDB(t)
	contract := seedContract(t, db)
	repo := NewPaymentRepository(db)

	invoice := model.Invoice{
		ContractID:  contract.ID,
		Period:      day(2024, 2, 1),
		Consumption: decimal.RequireFromString("100"),
		Amount:      decimal.RequireFromString("500.00"),
		Status:      model.InvoiceStatusIssued,
		IssueDate:   day(2024, 2, 1),
		DueDate:     day(2024, 2, 20),
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}

	err := db.Callback().Raw().Before("gorm:raw").Register("fail_invoice_update", func(tx *gorm.DB) {
		if strings.Contains(tx.Statement.SQL.String(), "UPDATE invoices") {
			tx.AddError(errors.New("status write refused"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	defer func() {
		if err := db.Callback().Raw().Remove("fail_invoice_update"); err != nil {
			t.Fatalf("remove callback: %v", err)
		}
	}()

	payment := model.Payment{
		InvoiceID:   invoice.ID,
		Amount:      decimal.RequireFromString("500.00"),
		PaymentDate: day(2024, 2, 5),
		Method:      model.PaymentMethodCash,
	}
	if err := repo.Create(testCtx, &payment); err == nil {
		t.Fatalf("expected error from failed status write")
	}

	var count int64
	if err := db.Model(&model.Payment{}).Where("invoice_id = ?", invoice.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("payment must roll back with the status write, got %d rows", count)
	}

	var got model.Invoice
	if err := db.First(&got, "id = ?", invoice.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != model.InvoiceStatusIssued {
		t.Fatalf("expected issued, got %s", got.Status)
	}
}

func TestMarkOverdueSweepsOnlyIssued(t *testing.T) {
	db := setupTestDB(t)
	contract := seedContract(t, db)
	repo := NewInvoiceRepository(db)

	overdueDue := model.Invoice{
		ContractID:  contract.ID,
		Period:      day(2024, 1, 1),
		Consumption: decimal.RequireFromString("100"),
		Amount:      decimal.RequireFromString("543.00"),
		Status:      model.InvoiceStatusIssued,
		IssueDate:   day(2024, 1, 1),
		DueDate:     day(2024, 1, 20),
	}
	paid := model.Invoice{
		ContractID:  contract.ID,
		Period:      day(2023, 12, 1),
		Consumption: decimal.RequireFromString("100"),
		Amount:      decimal.RequireFromString("543.00"),
		Status:      model.InvoiceStatusPaid,
		IssueDate:   day(2023, 12, 1),
		DueDate:     day(2023, 12, 20),
	}
	for _, invoice := range []*model.Invoice{&overdueDue, &paid} {
		if err := db.Create(invoice).Error; err != nil {
			t.Fatalf("invoice: %v", err)
		}
	}

	count, err := repo.MarkOverdue(testCtx, day(2024, 2, 1))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 swept, got %d", count)
	}

	var got model.Invoice
	if err := db.First(&got, "id = ?", paid.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != model.InvoiceStatusPaid {
		t.Fatalf("paid invoice must stay paid, got %s", got.Status)
	}
}
