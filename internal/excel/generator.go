package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/twokvolts/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.StatsReport) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Consumption"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	totalConsumption := decimal.Zero
	totalAmount := decimal.Zero
	totalInvoices := 0
	for _, stat := range report.Months {
		totalConsumption = totalConsumption.Add(stat.Consumption)
		totalAmount = totalAmount.Add(stat.Amount)
		totalInvoices += stat.InvoiceCount
	}

	set("A1", "Year")
	set("B1", report.Year)
	set("A2", "Total consumption, kWh")
	set("B2", totalConsumption.StringFixed(4))
	set("A3", "Total billed")
	set("B3", totalAmount.StringFixed(2))
	set("A4", "Invoices")
	set("B4", totalInvoices)

	tableRow := 6
	headers := []string{"Month", "Consumption, kWh", "Billed amount", "Invoices"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, stat := range report.Months {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), monthName(stat.Month))
		set(fmt.Sprintf("B%d", row), stat.Consumption.StringFixed(4))
		set(fmt.Sprintf("C%d", row), stat.Amount.StringFixed(2))
		set(fmt.Sprintf("D%d", row), stat.InvoiceCount)
	}

	_ = file.SetColWidth(sheet, "A", "A", 24)
	_ = file.SetColWidth(sheet, "B", "C", 20)
	_ = file.SetColWidth(sheet, "D", "D", 12)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d", month)
	}
	return time.Month(month).String()
}
