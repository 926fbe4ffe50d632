package model

import "github.com/shopspring/decimal"

// InvoiceDocument carries everything the PDF export needs for one invoice.
type InvoiceDocument struct {
	Invoice   Invoice
	Contract  Contract
	Consumer  Consumer
	TotalPaid decimal.Decimal
}
