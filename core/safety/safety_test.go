package safety

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"catering-finance/core/rules"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeGuardsZeroDenominators(t *testing.T) {
	r := Compute(dec("100"), decimal.Zero, dec("50"), decimal.Zero)
	if !r.LaborPercent.IsZero() || !r.FoodCostPercent.IsZero() {
		t.Errorf("zero denominators should give zero ratios, got %+v", r)
	}
}

func TestComputeRatios(t *testing.T) {
	r := Compute(dec("300"), dec("1200"), dec("250"), dec("1000"))
	if !r.LaborPercent.Equal(dec("25")) {
		t.Errorf("LaborPercent = %s, want 25", r.LaborPercent)
	}
	if !r.FoodCostPercent.Equal(dec("25")) {
		t.Errorf("FoodCostPercent = %s, want 25", r.FoodCostPercent)
	}
}

func TestCheck(t *testing.T) {
	limits := rules.SafetyLimits{MaxLaborPercent: dec("35"), MaxFoodCostPercent: dec("30"), EnableWarnings: true}

	tests := []struct {
		name  string
		r     Ratios
		count int
	}{
		{"within limits", Ratios{LaborPercent: dec("35"), FoodCostPercent: dec("30")}, 0},
		{"labor over", Ratios{LaborPercent: dec("35.01"), FoodCostPercent: dec("10")}, 1},
		{"both over", Ratios{LaborPercent: dec("50"), FoodCostPercent: dec("31")}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(tt.r, limits); len(got) != tt.count {
				t.Errorf("got %d warnings %v, want %d", len(got), got, tt.count)
			}
		})
	}

	limits.EnableWarnings = false
	if got := Check(Ratios{LaborPercent: dec("99")}, limits); got != nil {
		t.Errorf("disabled warnings should yield nil, got %v", got)
	}
}

func TestCheckMessage(t *testing.T) {
	limits := rules.SafetyLimits{MaxLaborPercent: dec("35"), EnableWarnings: true}
	got := Check(Ratios{LaborPercent: dec("42.5")}, limits)
	if len(got) != 1 || got[0] != "labor is 42.50% of revenue, above the 35% limit" {
		t.Errorf("unexpected warning: %v", got)
	}
}

func TestPremiumAddOn(t *testing.T) {
	cfg := rules.Default()
	if got := PremiumAddOn(dec("10"), cfg.Pricing, cfg.SafetyLimits); got != nil {
		t.Errorf("in-range add-on should not warn: %v", got)
	}
	if got := PremiumAddOn(decimal.Zero, cfg.Pricing, cfg.SafetyLimits); got != nil {
		t.Errorf("no add-on should not warn: %v", got)
	}
	if got := PremiumAddOn(dec("40"), cfg.Pricing, cfg.SafetyLimits); len(got) != 1 {
		t.Errorf("add-on above max should warn once, got %v", got)
	}
}

func TestConfigurationWarnings(t *testing.T) {
	cfg := rules.Default()
	cfg.ProfitDistribution.Owners[0].EquityPercent = dec("10")

	got := Configuration(cfg)
	if len(got) != 1 || !strings.Contains(got[0], "owner equity sums to 50%") {
		t.Errorf("unexpected warnings: %v", got)
	}

	cfg.SafetyLimits.EnableWarnings = false
	if got := Configuration(cfg); got != nil {
		t.Errorf("disabled warnings should yield nil, got %v", got)
	}
}
