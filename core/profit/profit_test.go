package profit

import (
	"testing"

	"github.com/shopspring/decimal"

	"catering-finance/core/rules"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGrossProfitMayBeNegative(t *testing.T) {
	got := GrossProfit(dec("1000"), dec("700"), dec("450"))
	if !got.Equal(dec("-150")) {
		t.Errorf("GrossProfit = %s, want -150", got)
	}
}

func TestDistribute(t *testing.T) {
	d := rules.DistributionRules{
		BusinessRetainedPercent:  dec("30"),
		OwnerDistributionPercent: dec("70"),
		Owners: []rules.Owner{
			{ID: "a", EquityPercent: dec("60")},
			{ID: "b", EquityPercent: dec("40")},
		},
	}

	got := Distribute(dec("1000"), d)

	if !got.Retained.Equal(dec("300")) {
		t.Errorf("Retained = %s, want 300", got.Retained)
	}
	if !got.Distributable.Equal(dec("700")) {
		t.Errorf("Distributable = %s, want 700", got.Distributable)
	}
	if !got.OwnerShares["a"].Equal(dec("420")) || !got.OwnerShares["b"].Equal(dec("280")) {
		t.Errorf("OwnerShares = %v, want a=420 b=280", got.OwnerShares)
	}
}

func TestDistributeDoesNotNormalize(t *testing.T) {
	d := rules.DistributionRules{
		BusinessRetainedPercent:  dec("50"),
		OwnerDistributionPercent: dec("80"),
		Owners: []rules.Owner{
			{ID: "a", EquityPercent: dec("50")},
			{ID: "b", EquityPercent: dec("30")},
		},
	}

	got := Distribute(dec("100"), d)

	// 50 + 80 = 130% of profit leaves the split as configured
	if !got.Retained.Add(got.Distributable).Equal(dec("130")) {
		t.Errorf("retained + distributable = %s, want 130", got.Retained.Add(got.Distributable))
	}
	if !got.OwnerShares["a"].Add(got.OwnerShares["b"]).Equal(dec("64")) {
		t.Errorf("owner shares should total 80%% of 80, got %v", got.OwnerShares)
	}
}

func TestDistributeLossPaysNothing(t *testing.T) {
	got := Distribute(dec("-250"), rules.Default().ProfitDistribution)

	if !got.GrossProfit.Equal(dec("-250")) {
		t.Errorf("GrossProfit = %s, want -250", got.GrossProfit)
	}
	if !got.Retained.IsZero() || !got.Distributable.IsZero() {
		t.Errorf("loss should not be distributed: retained=%s distributable=%s", got.Retained, got.Distributable)
	}
	for id, share := range got.OwnerShares {
		if !share.IsZero() {
			t.Errorf("owner %s share = %s, want 0", id, share)
		}
	}
}
