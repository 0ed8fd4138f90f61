package credit

import (
	"testing"

	"credit-service/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestBuildDashboard(t *testing.T) {
	rec := &domain.Reconciliation{
		Receivables: []domain.ReceivableRecord{
			{Customer: "ACME", Balance: dec("100"), DaysOverdue: 5},
			{Customer: "ACME", Balance: dec("50"), DaysOverdue: 12},
			{Customer: "BETA", Balance: dec("30"), DaysOverdue: 5},
			{Customer: "GAMA", Balance: dec("120"), DaysOverdue: 0},
		},
		Accounts: []domain.ReconciledAccount{
			{Customer: "ACME", LimitAmount: dec("100"), AvailableCredit: dec("-50")},
			{Customer: "BETA", LimitAmount: dec("500"), AvailableCredit: dec("470")},
			{Customer: "GAMA", LimitAmount: decimal.Zero, AvailableCredit: dec("-120")},
		},
	}

	want := domain.Dashboard{
		OpenBalance:     dec("300"),
		OverdueBalance:  dec("180"),
		OverduePercent:  dec("60"),
		BlockedAccounts: 2,
		TotalLimit:      dec("600"),
		Aging: []domain.AgingPoint{
			{DaysOverdue: 5, Balance: dec("130")},
			{DaysOverdue: 12, Balance: dec("50")},
		},
	}
	if diff := cmp.Diff(want, BuildDashboard(rec)); diff != "" {
		t.Errorf("dashboard mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDashboard_PercentRounding(t *testing.T) {
	rec := &domain.Reconciliation{
		Receivables: []domain.ReceivableRecord{
			{Customer: "A", Balance: dec("1"), DaysOverdue: 3},
			{Customer: "B", Balance: dec("2")},
		},
	}
	if got := BuildDashboard(rec).OverduePercent; !got.Equal(dec("33.3")) {
		t.Errorf("OverduePercent = %s, want 33.3", got)
	}
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := BuildDashboard(&domain.Reconciliation{})
	if !d.OpenBalance.IsZero() || !d.OverduePercent.IsZero() || d.BlockedAccounts != 0 {
		t.Errorf("unexpected dashboard %+v", d)
	}
	if d.Aging == nil || len(d.Aging) != 0 {
		t.Errorf("aging should be an empty, non-nil slice, got %#v", d.Aging)
	}
}

func TestAccountDetails(t *testing.T) {
	rec := &domain.Reconciliation{
		Receivables: []domain.ReceivableRecord{
			{Customer: "ACME", Invoice: "1"},
			{Customer: "BETA", Invoice: "2"},
			{Customer: "ACME", Invoice: "3"},
		},
		Accounts: []domain.ReconciledAccount{
			{Customer: "ACME"},
			{Customer: "BETA"},
		},
	}

	details := AccountDetails(rec)
	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}
	var invoices []string
	for _, r := range details[0].History {
		invoices = append(invoices, r.Invoice)
	}
	if diff := cmp.Diff([]string{"1", "3"}, invoices); diff != "" {
		t.Errorf("ACME history mismatch (-want +got):\n%s", diff)
	}
	if details[1].Customer != "BETA" || len(details[1].History) != 1 {
		t.Errorf("unexpected BETA detail %+v", details[1])
	}
}
