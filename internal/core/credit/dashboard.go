package credit

import (
	"sort"

	"credit-service/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BuildDashboard computes the aging and exposure metrics of a run.
func BuildDashboard(rec *domain.Reconciliation) domain.Dashboard {
	d := domain.Dashboard{
		OpenBalance:    decimal.Zero,
		OverdueBalance: decimal.Zero,
		OverduePercent: decimal.Zero,
		TotalLimit:     decimal.Zero,
	}

	aging := make(map[int]decimal.Decimal)
	for _, r := range rec.Receivables {
		d.OpenBalance = d.OpenBalance.Add(r.Balance)
		if r.DaysOverdue > 0 {
			d.OverdueBalance = d.OverdueBalance.Add(r.Balance)
			aging[r.DaysOverdue] = aging[r.DaysOverdue].Add(r.Balance)
		}
	}
	if d.OpenBalance.IsPositive() {
		d.OverduePercent = d.OverdueBalance.Div(d.OpenBalance).Mul(hundred).Round(1)
	}

	for _, a := range rec.Accounts {
		d.TotalLimit = d.TotalLimit.Add(a.LimitAmount)
		if a.Blocked() {
			d.BlockedAccounts++
		}
	}

	d.Aging = make([]domain.AgingPoint, 0, len(aging))
	for days, balance := range aging {
		d.Aging = append(d.Aging, domain.AgingPoint{DaysOverdue: days, Balance: balance})
	}
	sort.Slice(d.Aging, func(i, j int) bool { return d.Aging[i].DaysOverdue < d.Aging[j].DaysOverdue })
	return d
}

// AccountDetails attaches to each account the receivables it was built from.
func AccountDetails(rec *domain.Reconciliation) []domain.AccountDetail {
	history := make(map[string][]domain.ReceivableRecord)
	for _, r := range rec.Receivables {
		history[r.Customer] = append(history[r.Customer], r)
	}
	details := make([]domain.AccountDetail, 0, len(rec.Accounts))
	for _, a := range rec.Accounts {
		details = append(details, domain.AccountDetail{ReconciledAccount: a, History: history[a.Customer]})
	}
	return details
}
