package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func amount(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func TestSettle(t *testing.T) {
	cases := []struct {
		name       string
		status     InvoiceStatus
		totalPaid  string
		changed    bool
		wantStatus InvoiceStatus
	}{
		{"below amount stays issued", InvoiceStatusIssued, "1499.99", false, InvoiceStatusIssued},
		{"exact amount settles", InvoiceStatusIssued, "1500.00", true, InvoiceStatusPaid},
		{"overpayment settles", InvoiceStatusIssued, "2000.00", true, InvoiceStatusPaid},
		{"zero stays issued", InvoiceStatusIssued, "0", false, InvoiceStatusIssued},
		{"paid is never demoted", InvoiceStatusPaid, "0", false, InvoiceStatusPaid},
		{"overdue is not promoted", InvoiceStatusOverdue, "1500.00", false, InvoiceStatusOverdue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			invoice := Invoice{Amount: amount("1500.00"), Status: tc.status}
			changed := invoice.Settle(amount(tc.totalPaid))
			if changed != tc.changed {
				t.Fatalf("expected changed=%v, got %v", tc.changed, changed)
			}
			if invoice.Status != tc.wantStatus {
				t.Fatalf("expected status %s, got %s", tc.wantStatus, invoice.Status)
			}
		})
	}
}
