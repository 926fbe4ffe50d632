package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/twokvolts/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(doc model.InvoiceDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "ELECTRICITY INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Billing period: %s", doc.Invoice.Period.Format("January 2006")), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Issued %s, due by %s", formatDate(doc.Invoice.IssueDate), formatDate(doc.Invoice.DueDate)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Consumer", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	for _, line := range []string{
		doc.Consumer.FullName,
		fmt.Sprintf("Personal account: %s", safeValue(doc.Consumer.PersonalAccount)),
		fmt.Sprintf("Address: %s", safeValue(doc.Consumer.Address)),
		fmt.Sprintf("Phone: %s", safeValue(doc.Consumer.Phone)),
	} {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Contract", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Contract No %s, meter No %s", doc.Contract.ContractNumber, doc.Contract.MeterNumber), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Description", "Unit", "Quantity", "Amount due"}
	colWidths := []float64{85, 25, 35, 35}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	row := []string{
		"Electricity consumption",
		"kWh",
		doc.Invoice.Consumption.StringFixed(4),
		doc.Invoice.Amount.StringFixed(2),
	}
	drawTableRow(pdf, g.fontName, row, colWidths, false)

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Amount due: %s", doc.Invoice.Amount.StringFixed(2)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Paid to date: %s", doc.TotalPaid.StringFixed(2)), "", 1, "R", false, 0, "")

	outstanding := doc.Invoice.Amount.Sub(doc.TotalPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Outstanding: %s", outstanding.StringFixed(2)), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", strings.ToUpper(string(doc.Invoice.Status))), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
