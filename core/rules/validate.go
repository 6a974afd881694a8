package rules

import (
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"catering-finance/core/types"
)

// Section names a rule sub-config
type Section string

const (
	SectionPricing      Section = "pricing"
	SectionStaffing     Section = "staffing"
	SectionLabor        Section = "labor"
	SectionCosts        Section = "costs"
	SectionDistance     Section = "distance"
	SectionDistribution Section = "profit_distribution"
	SectionSafety       Section = "safety_limits"
)

// Issue is an advisory inconsistency in a rule document. Issues are
// reported, never corrected: the engine computes exactly what the
// document says.
type Issue struct {
	Section Section `json:"section"`
	Message string  `json:"message"`
}

// String renders the issue as a warning line
func (i Issue) String() string {
	return fmt.Sprintf("rules.%s: %s", i.Section, i.Message)
}

// Validate inspects the document and returns every inconsistency found
func (c *Configuration) Validate() []Issue {
	var issues []Issue
	add := func(s Section, format string, args ...interface{}) {
		issues = append(issues, Issue{Section: s, Message: fmt.Sprintf(format, args...)})
	}

	categories := c.categories()
	for _, cat := range categories {
		if _, ok := c.Pricing.BasePricePerGuest[cat]; !ok {
			add(SectionPricing, "category %q has no base price", cat)
		}
		cs, ok := c.Staffing.Categories[cat]
		if !ok {
			add(SectionStaffing, "category %q has no staffing policy", cat)
		} else if cs.MaxGuestsPerChef <= 0 {
			add(SectionStaffing, "category %q has non-positive max guests per chef", cat)
		}
		if _, ok := c.Costs.FoodCostPercent[cat]; !ok {
			add(SectionCosts, "category %q has no food cost percent", cat)
		}
	}

	if c.Pricing.PremiumAddOnMax.LessThan(c.Pricing.PremiumAddOnMin) {
		add(SectionPricing, "premium add-on max %s is below min %s", c.Pricing.PremiumAddOnMax, c.Pricing.PremiumAddOnMin)
	}

	seen := make(map[string]bool)
	for i, p := range c.Staffing.Profiles {
		if p.ID == "" {
			add(SectionStaffing, "profile #%d has no id", i)
		} else if seen[p.ID] {
			add(SectionStaffing, "profile id %q is duplicated; only the first is reachable by id", p.ID)
		}
		seen[p.ID] = true
		if p.MaxGuests < p.MinGuests {
			add(SectionStaffing, "profile %q range [%d, %d] is empty", p.ID, p.MinGuests, p.MaxGuests)
		}
		for _, role := range p.Roles {
			if _, ok := c.Labor.Roles[role]; !ok {
				add(SectionLabor, "profile %q uses role %q with no compensation rule", p.ID, role)
			}
		}
	}
	for _, cat := range slices.Sorted(maps.Keys(c.Staffing.Categories)) {
		cs := c.Staffing.Categories[cat]
		for _, role := range []types.RoleTag{cs.LeadRole, cs.FullRole} {
			if role == "" {
				continue
			}
			if _, ok := c.Labor.Roles[role]; !ok {
				add(SectionLabor, "category %q staffs role %q with no compensation rule", cat, role)
			}
		}
	}

	if len(c.Labor.GratuitySplits) > 0 {
		total := decimal.Zero
		for _, pct := range c.Labor.GratuitySplits {
			total = total.Add(pct)
		}
		if !total.Equal(types.Hundred) {
			add(SectionLabor, "gratuity splits sum to %s%%, expected 100%%", total)
		}
	}
	for _, role := range slices.Sorted(maps.Keys(c.Labor.Roles)) {
		group := c.Labor.Roles[role].GratuityGroup
		if _, ok := c.Labor.GratuitySplits[group]; !ok && group != "" {
			add(SectionLabor, "role %q references unknown gratuity group %q", role, group)
		}
	}

	if c.Distance.IncrementMiles.Sign() <= 0 && c.Distance.FeePerIncrement.Sign() > 0 {
		add(SectionDistance, "increment miles must be positive for per-increment fees to apply")
	}

	pd := c.ProfitDistribution
	if sum := pd.BusinessRetainedPercent.Add(pd.OwnerDistributionPercent); !sum.Equal(types.Hundred) {
		add(SectionDistribution, "retained %s%% + distributed %s%% = %s%%, expected 100%%",
			pd.BusinessRetainedPercent, pd.OwnerDistributionPercent, sum)
	}
	if len(pd.Owners) > 0 {
		equity := decimal.Zero
		for _, o := range pd.Owners {
			equity = equity.Add(o.EquityPercent)
		}
		if !equity.Equal(types.Hundred) {
			add(SectionDistribution, "owner equity sums to %s%%, expected 100%%", equity)
		}
	} else if pd.OwnerDistributionPercent.Sign() > 0 {
		add(SectionDistribution, "owner distribution is %s%% but no owners are configured", pd.OwnerDistributionPercent)
	}

	return issues
}

// categories lists every category named anywhere in the document, sorted
func (c *Configuration) categories() []types.EventCategory {
	set := make(map[types.EventCategory]bool)
	for cat := range c.Pricing.BasePricePerGuest {
		set[cat] = true
	}
	for cat := range c.Staffing.Categories {
		set[cat] = true
	}
	for cat := range c.Costs.FoodCostPercent {
		set[cat] = true
	}
	return slices.Sorted(maps.Keys(set))
}
