package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/twokvolts/internal/activity"
	"github.com/nurpe/twokvolts/internal/model"
	"github.com/nurpe/twokvolts/internal/repository"
)

type ExcelGenerator interface {
	Generate(report model.StatsReport) ([]byte, error)
}

type DashboardService struct {
	dashboard *repository.DashboardRepository
	contracts *repository.ContractRepository
	payments  *repository.PaymentRepository
	activity  activity.Store
	excel     ExcelGenerator
	log       zerolog.Logger
}

func NewDashboardService(
	dashboard *repository.DashboardRepository,
	contracts *repository.ContractRepository,
	payments *repository.PaymentRepository,
	activityStore activity.Store,
	excel ExcelGenerator,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		dashboard: dashboard,
		contracts: contracts,
		payments:  payments,
		activity:  activityStore,
		excel:     excel,
		log:       log,
	}
}

type HomeSummary struct {
	ActiveContracts []model.Contract
	LatestReadings  []model.MeterReading
	CurrentInvoices []model.Invoice
	RecentPayments  []model.Payment
	TotalDebt       decimal.Decimal
	OverdueCount    int64
	LastActivity    *time.Time
	IsUserActive    bool
}

func (s *DashboardService) Home(ctx context.Context, principal model.Principal) (*HomeSummary, error) {
	contracts, err := s.contracts.ListForConsumer(ctx, principal.ConsumerID, true)
	if err != nil {
		return nil, err
	}

	summary := &HomeSummary{
		ActiveContracts: contracts,
		LatestReadings:  []model.MeterReading{},
		CurrentInvoices: []model.Invoice{},
		RecentPayments:  []model.Payment{},
		TotalDebt:       decimal.Zero,
	}

	last, ok, err := s.activity.Last(ctx, principal.ConsumerID)
	switch {
	case err != nil:
		// degraded summary, not a failed request
		s.log.Warn().Err(err).Msg("activity lookup failed")
	case ok:
		summary.LastActivity = &last
		summary.IsUserActive = true
	}

	if len(contracts) == 0 {
		return summary, nil
	}

	contractIDs := contractIDs(contracts)
	now := time.Now()

	if summary.LatestReadings, err = s.dashboard.LatestReadings(ctx, contractIDs, 5); err != nil {
		return nil, err
	}
	if summary.CurrentInvoices, err = s.dashboard.CurrentInvoices(ctx, contractIDs, 3); err != nil {
		return nil, err
	}
	if summary.RecentPayments, err = s.payments.ListRecentForContracts(ctx, contractIDs, 5); err != nil {
		return nil, err
	}
	if summary.TotalDebt, err = s.dashboard.TotalDebt(ctx, contractIDs); err != nil {
		return nil, err
	}
	if summary.OverdueCount, err = s.dashboard.CountOverdue(ctx, contractIDs, now); err != nil {
		return nil, err
	}
	return summary, nil
}

type OverviewSeries struct {
	Labels      []string          `json:"labels"`
	Consumption []decimal.Decimal `json:"consumption"`
	Amounts     []decimal.Decimal `json:"amounts"`
}

// Overview returns consumption and billed-amount series for the last six
// months' invoices, oldest first.
func (s *DashboardService) Overview(ctx context.Context, principal model.Principal) (*OverviewSeries, error) {
	contractIDs, err := s.contracts.ContractIDsForConsumer(ctx, principal.ConsumerID, false)
	if err != nil {
		return nil, err
	}

	series := &OverviewSeries{
		Labels:      []string{},
		Consumption: []decimal.Decimal{},
		Amounts:     []decimal.Decimal{},
	}
	if len(contractIDs) == 0 {
		return series, nil
	}

	since := dateOnly(time.Now()).AddDate(0, 0, -180)
	invoices, err := s.dashboard.InvoicesSince(ctx, contractIDs, since)
	if err != nil {
		return nil, err
	}

	for _, invoice := range invoices {
		series.Labels = append(series.Labels, invoice.Period.Format("Jan 2006"))
		series.Consumption = append(series.Consumption, invoice.Consumption)
		series.Amounts = append(series.Amounts, invoice.Amount)
	}
	return series, nil
}

func (s *DashboardService) Stats(ctx context.Context, principal model.Principal, year int) (*model.StatsReport, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	contractIDs, err := s.contracts.ContractIDsForConsumer(ctx, principal.ConsumerID, false)
	if err != nil {
		return nil, err
	}

	report := &model.StatsReport{Year: year, Months: []model.MonthlyStat{}}
	if len(contractIDs) == 0 {
		return report, nil
	}

	invoices, err := s.dashboard.InvoicesForYear(ctx, contractIDs, year)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[time.Month]*model.MonthlyStat)
	for _, invoice := range invoices {
		month := invoice.Period.Month()
		stat, ok := byMonth[month]
		if !ok {
			stat = &model.MonthlyStat{Month: int(month)}
			byMonth[month] = stat
		}
		stat.Consumption = stat.Consumption.Add(invoice.Consumption)
		stat.Amount = stat.Amount.Add(invoice.Amount)
		stat.InvoiceCount++
	}

	for month := time.January; month <= time.December; month++ {
		if stat, ok := byMonth[month]; ok {
			report.Months = append(report.Months, *stat)
		}
	}
	return report, nil
}

type StatsExport struct {
	FileName string
	Content  []byte
}

func (s *DashboardService) ExportStats(ctx context.Context, principal model.Principal, year int) (*StatsExport, error) {
	report, err := s.Stats(ctx, principal, year)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*report)
	if err != nil {
		return nil, err
	}
	return &StatsExport{
		FileName: report.FileName(),
		Content:  content,
	}, nil
}

type NotificationKind string

const (
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
)

type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Date      time.Time        `json:"date"`
	InvoiceID string           `json:"invoice_id"`
}

// Notifications aggregates overdue invoices, invoices due within three days,
// and invoices issued within the last seven days, newest first.
func (s *DashboardService) Notifications(ctx context.Context, principal model.Principal) ([]Notification, error) {
	contractIDs, err := s.contracts.ContractIDsForConsumer(ctx, principal.ConsumerID, false)
	if err != nil {
		return nil, err
	}
	if len(contractIDs) == 0 {
		return []Notification{}, nil
	}

	today := dateOnly(time.Now())
	notifications := []Notification{}

	overdue, err := s.dashboard.OverdueInvoices(ctx, contractIDs, today)
	if err != nil {
		return nil, err
	}
	for _, invoice := range overdue {
		notifications = append(notifications, Notification{
			Kind:      NotificationWarning,
			Title:     "Overdue invoice",
			Message:   "Invoice for " + invoice.Period.Format("January 2006") + " is overdue",
			Date:      invoice.DueDate,
			InvoiceID: invoice.ID.String(),
		})
	}

	upcoming, err := s.dashboard.InvoicesDueBetween(ctx, contractIDs, today, today.AddDate(0, 0, 3))
	if err != nil {
		return nil, err
	}
	for _, invoice := range upcoming {
		notifications = append(notifications, Notification{
			Kind:      NotificationInfo,
			Title:     "Payment due soon",
			Message:   "Invoice must be paid by " + invoice.DueDate.Format("2006-01-02"),
			Date:      invoice.DueDate,
			InvoiceID: invoice.ID.String(),
		})
	}

	fresh, err := s.dashboard.InvoicesIssuedSince(ctx, contractIDs, today.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	for _, invoice := range fresh {
		notifications = append(notifications, Notification{
			Kind:      NotificationSuccess,
			Title:     "New invoice",
			Message:   "Invoice issued for " + invoice.Period.Format("January 2006"),
			Date:      invoice.IssueDate,
			InvoiceID: invoice.ID.String(),
		})
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].Date.After(notifications[j].Date)
	})
	return notifications, nil
}

func contractIDs(contracts []model.Contract) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(contracts))
	for _, contract := range contracts {
		ids = append(ids, contract.ID)
	}
	return ids
}
