package rules

import (
	"github.com/shopspring/decimal"

	"catering-finance/core/types"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// Default returns a complete working rule document for a two-category
// business: plated private dinners and buffets.
func Default() *Configuration {
	return &Configuration{
		Pricing: PricingRules{
			BasePricePerGuest: map[types.EventCategory]decimal.Decimal{
				types.CategoryPrivateDinner: d(85),
				types.CategoryBuffet:        d(55),
			},
			PremiumAddOnMin:        d(5),
			PremiumAddOnMax:        d(25),
			DefaultGratuityPercent: d(20),
			ChildDiscountPercent:   d(50),
		},
		Staffing: StaffingRules{
			Categories: map[types.EventCategory]CategoryStaffing{
				types.CategoryPrivateDinner: {
					MaxGuestsPerChef:  15,
					AssistantRequired: false,
					LeadRole:          types.RoleLead,
					FullRole:          types.RoleFull,
				},
				types.CategoryBuffet: {
					MaxGuestsPerChef:  25,
					AssistantRequired: true,
					LeadRole:          types.RoleBuffet,
					FullRole:          types.RoleBuffet,
				},
			},
			AssistantRole: types.RoleAssistant,
			Profiles: []StaffingProfile{
				{
					ID:        "dinner-party",
					Name:      "Large private dinner",
					Category:  types.CategoryPrivateDinner,
					MinGuests: 31,
					MaxGuests: 60,
					Roles:     []types.RoleTag{types.RoleLead, types.RoleFull, types.RoleFull, types.RoleAssistant},
				},
				{
					ID:        "banquet",
					Name:      "Banquet",
					Category:  types.CategoryAny,
					MinGuests: 120,
					MaxGuests: UnboundedGuests,
					Roles: []types.RoleTag{
						types.RoleLead, types.RoleFull, types.RoleFull, types.RoleFull,
						types.RoleAssistant, types.RoleAssistant,
					},
				},
			},
		},
		Labor: LaborRules{
			Roles: map[types.RoleTag]RoleRule{
				types.RoleLead:      {BasePayPercent: d(15), CapPercent: types.Optional(d(30)), GratuityGroup: "chef"},
				types.RoleFull:      {BasePayPercent: d(10), CapPercent: types.Optional(d(20)), GratuityGroup: "chef"},
				types.RoleBuffet:    {BasePayPercent: d(8), CapPercent: types.Optional(d(20)), GratuityGroup: "chef"},
				types.RoleAssistant: {BasePayPercent: d(5), GratuityGroup: "assistant"},
			},
			GratuitySplits: map[string]decimal.Decimal{
				"chef":      d(80),
				"assistant": d(20),
			},
		},
		Costs: CostRules{
			FoodCostPercent: map[types.EventCategory]decimal.Decimal{
				types.CategoryPrivateDinner: d(30),
				types.CategoryBuffet:        d(25),
			},
			SuppliesCostPercent:   d(5),
			TransportationStipend: d(40),
		},
		Distance: DistanceRules{
			FreeMiles:       d(20),
			BaseFee:         d(25),
			FeePerIncrement: d(15),
			IncrementMiles:  d(10),
		},
		ProfitDistribution: DistributionRules{
			BusinessRetainedPercent:  d(30),
			OwnerDistributionPercent: d(70),
			Owners: []Owner{
				{ID: "owner-1", Name: "Founding partner", EquityPercent: d(60)},
				{ID: "owner-2", Name: "Partner", EquityPercent: d(40)},
			},
		},
		SafetyLimits: SafetyLimits{
			MaxLaborPercent:    d(35),
			MaxFoodCostPercent: d(35),
			EnableWarnings:     true,
		},
	}
}
