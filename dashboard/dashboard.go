// Package dashboard derives the payment status overview from the tenant's
// invoices.
package dashboard

import (
	"sort"
	"time"

	"invoicing-backend/models"
	"invoicing-backend/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	// RecentLimit is the number of invoices shown as recent activity.
	RecentLimit = 7
	// ChartWindow bounds the creation date of invoices on the paid chart.
	ChartWindow = 30 * 24 * time.Hour

	chartLabel = "Jan 2"
)

type Amount struct {
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
	Formatted string          `json:"formatted"`
}

type Stats struct {
	Revenue []Amount `json:"revenue"`
	Issued  int      `json:"issued"`
	Paid    int      `json:"paid"`
	Pending int      `json:"pending"`
}

// ChartPoint is the amount paid on one day in one currency.
type ChartPoint struct {
	Date     string          `json:"date"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type RecentInvoice struct {
	Id          string `json:"id"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	Total       string `json:"total"`
}

type Dashboard struct {
	Stats  Stats           `json:"stats"`
	Chart  []ChartPoint    `json:"chart"`
	Recent []RecentInvoice `json:"recent"`
}

// Build computes the dashboard at now. Revenue is kept per currency.
func Build(invoices []*models.Invoice, now time.Time) (*Dashboard, error) {
	stats, err := buildStats(invoices)
	if err != nil {
		return nil, err
	}
	recent, err := buildRecent(invoices)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Stats:  stats,
		Chart:  buildChart(invoices, now),
		Recent: recent,
	}, nil
}

func buildStats(invoices []*models.Invoice) (Stats, error) {
	byCurrency := lo.GroupBy(invoices, func(inv *models.Invoice) string { return inv.Currency })
	currencies := lo.Keys(byCurrency)
	sort.Strings(currencies)

	revenue := make([]Amount, 0, len(currencies))
	for _, code := range currencies {
		total := lo.Reduce(byCurrency[code], func(acc decimal.Decimal, inv *models.Invoice, _ int) decimal.Decimal {
			return acc.Add(inv.Total)
		}, decimal.Zero)
		formatted, err := utils.FormatCurrency(total, code)
		if err != nil {
			return Stats{}, err
		}
		revenue = append(revenue, Amount{Currency: code, Total: total, Formatted: formatted})
	}

	paid := lo.CountBy(invoices, func(inv *models.Invoice) bool { return inv.Status == models.StatusPaid })
	return Stats{
		Revenue: revenue,
		Issued:  len(invoices),
		Paid:    paid,
		Pending: lo.CountBy(invoices, func(inv *models.Invoice) bool { return inv.Status == models.StatusPending }),
	}, nil
}

// buildChart sums paid invoices created within ChartWindow by pay date,
// oldest day first.
func buildChart(invoices []*models.Invoice, now time.Time) []ChartPoint {
	since := now.Add(-ChartWindow)

	type key struct {
		day      time.Time
		currency string
	}
	sums := make(map[key]decimal.Decimal)
	for _, inv := range invoices {
		if inv.Status != models.StatusPaid || inv.PaidDate == nil {
			continue
		}
		if inv.CreatedAt.Before(since) || inv.CreatedAt.After(now) {
			continue
		}
		y, m, d := inv.PaidDate.Date()
		k := key{day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), currency: inv.Currency}
		sums[k] = sums[k].Add(inv.Total)
	}

	keys := lo.Keys(sums)
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].day.Equal(keys[j].day) {
			return keys[i].day.Before(keys[j].day)
		}
		return keys[i].currency < keys[j].currency
	})
	return lo.Map(keys, func(k key, _ int) ChartPoint {
		return ChartPoint{Date: k.day.Format(chartLabel), Currency: k.currency, Amount: sums[k]}
	})
}

func buildRecent(invoices []*models.Invoice) ([]RecentInvoice, error) {
	sorted := append([]*models.Invoice(nil), invoices...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	recent := make([]RecentInvoice, 0, RecentLimit)
	for _, inv := range lo.Slice(sorted, 0, RecentLimit) {
		total, err := utils.FormatCurrency(inv.Total, inv.Currency)
		if err != nil {
			return nil, err
		}
		recent = append(recent, RecentInvoice{
			Id:          inv.Id,
			ClientName:  inv.ClientName,
			ClientEmail: inv.ClientEmail,
			Total:       total,
		})
	}
	return recent, nil
}
