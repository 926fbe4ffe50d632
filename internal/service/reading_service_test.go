package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nurpe/twokvolts/internal/model"
)

func submit(t *testing.T, svc *ReadingService, f fixtures, day time.Time, value string) (*model.MeterReading, error) {
	t.Helper()
	return svc.Submit(testCtx, principalFor(f), SubmitReadingInput{
		ContractID:  f.contract.ID,
		ReadingDate: day,
		Value:       dec(value),
	})
}

func TestSubmitReadingSequence(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	if _, err := submit(t, svc, f, date(2024, 1, 15), "100.0"); err != nil {
		t.Fatalf("first reading: %v", err)
	}
	if _, err := submit(t, svc, f, date(2024, 2, 10), "150.0"); err != nil {
		t.Fatalf("second reading: %v", err)
	}

	_, err := submit(t, svc, f, date(2024, 3, 5), "140.0")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "value must exceed previous reading") {
		t.Fatalf("unexpected reason: %v", err)
	}

	_, err = submit(t, svc, f, date(2024, 2, 20), "160.0")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "duplicate reading for this month") {
		t.Fatalf("unexpected reason: %v", err)
	}
}

func TestSubmitReadingEqualValueRejected(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	if _, err := submit(t, svc, f, date(2024, 1, 15), "100.0"); err != nil {
		t.Fatalf("first reading: %v", err)
	}
	_, err := submit(t, svc, f, date(2024, 2, 15), "100.0")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for equal value, got %v", err)
	}
}

// A back-dated reading is only compared against readings strictly before its
// own date, so a value below an already-accepted later reading still passes.
func TestSubmitBackdatedReadingPassesMonotonicityCheck(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	if _, err := submit(t, svc, f, date(2024, 3, 15), "300.0"); err != nil {
		t.Fatalf("later reading: %v", err)
	}
	if _, err := submit(t, svc, f, date(2024, 1, 10), "50.0"); err != nil {
		t.Fatalf("backdated reading should pass: %v", err)
	}
}

func TestSubmitReadingValidatesValue(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	if _, err := submit(t, svc, f, date(2024, 1, 15), "-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative value: expected invalid input, got %v", err)
	}
	if _, err := submit(t, svc, f, date(2024, 1, 15), "1.12345"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("too many decimals: expected invalid input, got %v", err)
	}
}

func TestSubmitReadingOwnership(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	other := model.Consumer{
		Type:            model.ConsumerTypeIndividual,
		FullName:        "Other",
		PersonalAccount: "PA-0002-" + t.Name(),
		Email:           "other-" + t.Name() + "@test.local",
		PasswordHash:    "x",
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("other consumer: %v", err)
	}

	_, err := svc.Submit(testCtx, model.Principal{ConsumerID: other.ID, Role: model.RoleConsumer}, SubmitReadingInput{
		ContractID:  f.contract.ID,
		ReadingDate: date(2024, 1, 15),
		Value:       dec("100"),
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestSubmitReadingInactiveContract(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	if err := db.Model(&model.Contract{}).Where("id = ?", f.contract.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := submit(t, svc, f, date(2024, 1, 15), "100.0")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for inactive contract, got %v", err)
	}
}

func TestSubmitBulkAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	rows := []BulkReadingRow{
		{ContractID: f.contract.ID, ReadingDate: date(2024, 1, 15), Value: dec("100")},
		{ContractID: f.contract.ID, ReadingDate: date(2024, 2, 15), Value: dec("90")}, // not monotonic
	}
	_, err := svc.SubmitBulk(testCtx, principalFor(f), rows)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected row number in error, got %v", err)
	}

	var count int64
	if err := db.Model(&model.MeterReading{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no readings persisted, got %d", count)
	}
}

func TestSubmitBulkCreatesAll(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	rows := []BulkReadingRow{
		{ContractID: f.contract.ID, ReadingDate: date(2024, 1, 15), Value: dec("100")},
		{ContractID: f.contract.ID, ReadingDate: date(2024, 2, 15), Value: dec("180")},
	}
	created, err := svc.SubmitBulk(testCtx, principalFor(f), rows)
	if err != nil {
		t.Fatalf("bulk submit: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 created, got %d", created)
	}
}

func TestSubmitBulkRejectsSameMonthRows(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	rows := []BulkReadingRow{
		{ContractID: f.contract.ID, ReadingDate: date(2024, 1, 5), Value: dec("100")},
		{ContractID: f.contract.ID, ReadingDate: date(2024, 1, 25), Value: dec("120")},
	}
	_, err := svc.SubmitBulk(testCtx, principalFor(f), rows)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReadingDetailConsumption(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	if _, err := submit(t, svc, f, date(2024, 1, 15), "100.5"); err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := submit(t, svc, f, date(2024, 2, 15), "180.25")
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	detail, err := svc.Get(testCtx, principalFor(f), second.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Previous == nil || detail.Consumption == nil {
		t.Fatalf("expected previous reading and consumption")
	}
	if !detail.Consumption.Equal(dec("79.75")) {
		t.Fatalf("expected consumption 79.75, got %s", detail.Consumption)
	}
}

func TestUpdateReadingSameMonthAllowed(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	reading, err := submit(t, svc, f, date(2024, 1, 15), "100.0")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := svc.Update(testCtx, principalFor(f), reading.ID, date(2024, 1, 20), dec("105.0"))
	if err != nil {
		t.Fatalf("update within same month: %v", err)
	}
	if !updated.Value.Equal(dec("105.0")) {
		t.Fatalf("expected updated value, got %s", updated.Value)
	}
}

func TestUpdateReadingIntoOccupiedMonthRejected(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	if _, err := submit(t, svc, f, date(2024, 1, 15), "100.0"); err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := submit(t, svc, f, date(2024, 2, 15), "150.0")
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	_, err = svc.Update(testCtx, principalFor(f), second.ID, date(2024, 1, 20), dec("160.0"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteReading(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	reading, err := submit(t, svc, f, date(2024, 1, 15), "100.0")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.Delete(testCtx, principalFor(f), reading.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(testCtx, principalFor(f), reading.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestReadingHistory(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReadingService(db)

	if _, err := submit(t, svc, f, date(2024, 2, 15), "180.0"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := submit(t, svc, f, date(2024, 1, 15), "100.0"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	points, err := svc.History(testCtx, principalFor(f), f.contract.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Date != "2024-01" || points[1].Date != "2024-02" {
		t.Fatalf("expected chronological order, got %v", points)
	}
}
