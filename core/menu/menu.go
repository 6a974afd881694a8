// Package menu turns per-guest menu selections into replacement subtotal
// and food-cost figures for the financial engine.
//
// Pricing here is itemized from the catalog and the guest list; the rule
// document's base price is not consulted.
package menu

import (
	"github.com/shopspring/decimal"

	"catering-finance/core/types"
)

// DefaultPriceMultiplier prices an item at three times its cost when no
// explicit price is set
var DefaultPriceMultiplier = decimal.NewFromInt(3)

// DefaultSideItemIDs are the catalog ids of the four side flags, in flag order
var DefaultSideItemIDs = [4]string{"salad", "rice", "noodles", "vegetables"}

// CatalogItem is one orderable dish
type CatalogItem struct {
	ID              string              `json:"id"`
	Name            string              `json:"name,omitempty"`
	CostPerServing  decimal.Decimal     `json:"cost_per_serving"`
	PricePerServing decimal.NullDecimal `json:"price_per_serving"`
}

// Price returns the explicit price, or the default multiple of cost
func (i CatalogItem) Price() decimal.Decimal {
	if i.PricePerServing.Valid {
		return i.PricePerServing.Decimal
	}
	return i.CostPerServing.Mul(DefaultPriceMultiplier)
}

// Sides are the four optional side dishes a guest can add
type Sides struct {
	Salad      bool `json:"salad"`
	Rice       bool `json:"rice"`
	Noodles    bool `json:"noodles"`
	Vegetables bool `json:"vegetables"`
}

func (s Sides) flags() [4]bool {
	return [4]bool{s.Salad, s.Rice, s.Noodles, s.Vegetables}
}

// GuestSelection is one guest's order
type GuestSelection struct {
	GuestID  string `json:"guest_id"`
	IsChild  bool   `json:"is_child"`
	Protein1 string `json:"protein_1"`
	Protein2 string `json:"protein_2"`
	Sides    Sides  `json:"sides"`

	// Free text carried for the kitchen; not priced
	Allergies       string `json:"allergies,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// Params are the global pricing inputs
type Params struct {
	ChildDiscountPercent decimal.Decimal `json:"child_discount_percent"`
	PremiumAddOnPerGuest decimal.Decimal `json:"premium_add_on_per_guest"`
	SideItemIDs          [4]string       `json:"side_item_ids"`
}

// DefaultParams uses the default side ids with no discount or add-on
func DefaultParams() Params {
	return Params{SideItemIDs: DefaultSideItemIDs}
}

// GuestLine is the priced order of one guest
type GuestLine struct {
	GuestID string          `json:"guest_id"`
	Cost    decimal.Decimal `json:"cost"`
	Price   decimal.Decimal `json:"price"`
	Missing []string        `json:"missing,omitempty"`
}

// Result is the override triple plus the per-guest breakdown
type Result struct {
	SubtotalOverride decimal.Decimal `json:"subtotal_override"`
	FoodCostOverride decimal.Decimal `json:"food_cost_override"`

	// MissingItemIDs lists each absent catalog id once, in first-seen order
	MissingItemIDs []string    `json:"missing_item_ids"`
	Guests         []GuestLine `json:"guests"`
}

// Overrides converts the result into engine overrides
func (r Result) Overrides() types.FinancialOverrides {
	return types.FinancialOverrides{
		Subtotal: decimal.NewNullDecimal(r.SubtotalOverride),
		FoodCost: decimal.NewNullDecimal(r.FoodCostOverride),
	}
}

// Catalog indexes items by id; the first item listed for an id wins
type Catalog map[string]CatalogItem

// NewCatalog indexes a list of catalog items
func NewCatalog(items []CatalogItem) Catalog {
	c := make(Catalog, len(items))
	for _, item := range items {
		if _, exists := c[item.ID]; !exists {
			c[item.ID] = item
		}
	}
	return c
}

// Aggregate prices every guest's selection against the catalog. Ids absent
// from the catalog contribute nothing and are reported, not rejected.
func Aggregate(selections []GuestSelection, items []CatalogItem, params Params) Result {
	catalog := NewCatalog(items)
	sideIDs := params.SideItemIDs
	if sideIDs == ([4]string{}) {
		sideIDs = DefaultSideItemIDs
	}

	res := Result{
		SubtotalOverride: decimal.Zero,
		FoodCostOverride: decimal.Zero,
		MissingItemIDs:   []string{},
		Guests:           make([]GuestLine, 0, len(selections)),
	}
	seenMissing := make(map[string]bool)

	for _, g := range selections {
		line := GuestLine{GuestID: g.GuestID, Cost: decimal.Zero}
		itemPrice := decimal.Zero

		for _, id := range selectedIDs(g, sideIDs) {
			item, ok := catalog[id]
			if !ok {
				line.Missing = append(line.Missing, id)
				if !seenMissing[id] {
					seenMissing[id] = true
					res.MissingItemIDs = append(res.MissingItemIDs, id)
				}
				continue
			}
			line.Cost = line.Cost.Add(item.CostPerServing)
			itemPrice = itemPrice.Add(item.Price())
		}

		if g.IsChild {
			itemPrice = itemPrice.Sub(types.Percent(itemPrice, params.ChildDiscountPercent))
		}
		line.Price = itemPrice.Add(params.PremiumAddOnPerGuest)

		res.FoodCostOverride = res.FoodCostOverride.Add(line.Cost)
		res.SubtotalOverride = res.SubtotalOverride.Add(line.Price)
		res.Guests = append(res.Guests, line)
	}

	return res
}

// selectedIDs lists both proteins then each enabled side. An empty protein
// id means no selection and is skipped.
func selectedIDs(g GuestSelection, sideIDs [4]string) []string {
	ids := make([]string, 0, 6)
	for _, p := range []string{g.Protein1, g.Protein2} {
		if p != "" {
			ids = append(ids, p)
		}
	}
	for i, on := range g.Sides.flags() {
		if on && sideIDs[i] != "" {
			ids = append(ids, sideIDs[i])
		}
	}
	return ids
}
