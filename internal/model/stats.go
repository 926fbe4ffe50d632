package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type MonthlyStat struct {
	Month        int             `json:"month"`
	Consumption  decimal.Decimal `json:"consumption"`
	Amount       decimal.Decimal `json:"amount"`
	InvoiceCount int             `json:"invoice_count"`
}

// StatsReport is one year of per-month consumption totals. Months without
// invoices are omitted.
type StatsReport struct {
	Year   int           `json:"year"`
	Months []MonthlyStat `json:"months"`
}

func (r StatsReport) FileName() string {
	return fmt.Sprintf("consumption-stats-%d.xlsx", r.Year)
}
