package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/twokvolts/internal/model"
)

func TestGenerate(t *testing.T) {
	doc := model.InvoiceDocument{
		Invoice: model.Invoice{
			ID:          uuid.New(),
			Period:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Consumption: decimal.RequireFromString("250.5000"),
			Amount:      decimal.RequireFromString("1360.22"),
			Status:      model.InvoiceStatusIssued,
			IssueDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		},
		Contract: model.Contract{
			ContractNumber: "C-2024-001",
			MeterNumber:    "M-42",
		},
		Consumer: model.Consumer{
			FullName:        "Ivan Petrov",
			PersonalAccount: "PA-100200",
			Address:         "12 Abay Ave",
		},
		TotalPaid: decimal.RequireFromString("800.00"),
	}

	content, err := NewGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		t.Fatalf("output is not a pdf")
	}
}

func TestGenerateEmptyConsumerFields(t *testing.T) {
	doc := model.InvoiceDocument{
		Invoice: model.Invoice{
			Period:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Consumption: decimal.Zero,
			Amount:      decimal.Zero,
			Status:      model.InvoiceStatusIssued,
		},
		Consumer: model.Consumer{FullName: "Ivan Petrov"},
	}

	content, err := NewGenerator().Generate(doc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(content) == 0 {
		t.Fatalf("expected content")
	}
}
