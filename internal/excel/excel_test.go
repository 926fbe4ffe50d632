package excel

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/twokvolts/internal/model"
)

func TestGenerate(t *testing.T) {
	report := model.StatsReport{
		Year: 2024,
		Months: []model.MonthlyStat{
			{Month: 1, Consumption: decimal.RequireFromString("120.5"), Amount: decimal.RequireFromString("654.32"), InvoiceCount: 1},
			{Month: 2, Consumption: decimal.RequireFromString("98.0"), Amount: decimal.RequireFromString("532.14"), InvoiceCount: 1},
		},
	}

	content, err := NewGenerator().Generate(report)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	if file.GetSheetName(0) != "Consumption" {
		t.Fatalf("expected Consumption sheet, got %s", file.GetSheetName(0))
	}

	month, err := file.GetCellValue("Consumption", "A7")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if month != "January" {
		t.Fatalf("expected January in first table row, got %q", month)
	}
}

func TestGenerateEmptyReport(t *testing.T) {
	content, err := NewGenerator().Generate(model.StatsReport{Year: 2024})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(content) == 0 {
		t.Fatalf("expected workbook content")
	}
}
