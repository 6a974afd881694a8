package menu

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func catalog() []CatalogItem {
	return []CatalogItem{
		{ID: "chicken", CostPerServing: dec("4"), PricePerServing: decimal.NewNullDecimal(dec("14"))},
		{ID: "steak", CostPerServing: dec("9"), PricePerServing: decimal.NewNullDecimal(dec("30"))},
		{ID: "salmon", CostPerServing: dec("7")},
		{ID: "salad", CostPerServing: dec("1"), PricePerServing: decimal.NewNullDecimal(dec("4"))},
		{ID: "rice", CostPerServing: dec("0.5")},
	}
}

func TestCatalogItemDefaultPrice(t *testing.T) {
	item := CatalogItem{ID: "salmon", CostPerServing: dec("7")}
	if !item.Price().Equal(dec("21")) {
		t.Errorf("Price = %s, want 3x cost 21", item.Price())
	}
}

func TestAggregatePricesGuests(t *testing.T) {
	selections := []GuestSelection{
		{GuestID: "g1", Protein1: "chicken", Protein2: "steak", Sides: Sides{Salad: true}},
		{GuestID: "g2", IsChild: true, Protein1: "chicken", Protein2: "salmon", Sides: Sides{Rice: true}},
	}
	params := Params{ChildDiscountPercent: dec("50"), PremiumAddOnPerGuest: dec("2"), SideItemIDs: DefaultSideItemIDs}

	res := Aggregate(selections, catalog(), params)

	// g1: cost 4+9+1=14, price 14+30+4+2=50
	// g2: cost 4+7+0.5=11.5, price (14+21+1.5)*0.5+2=20.25
	if !res.Guests[0].Cost.Equal(dec("14")) || !res.Guests[0].Price.Equal(dec("50")) {
		t.Errorf("g1 = %+v", res.Guests[0])
	}
	if !res.Guests[1].Cost.Equal(dec("11.5")) || !res.Guests[1].Price.Equal(dec("20.25")) {
		t.Errorf("g2 = %+v", res.Guests[1])
	}
	if !res.FoodCostOverride.Equal(dec("25.5")) {
		t.Errorf("FoodCostOverride = %s, want 25.5", res.FoodCostOverride)
	}
	if !res.SubtotalOverride.Equal(dec("70.25")) {
		t.Errorf("SubtotalOverride = %s, want 70.25", res.SubtotalOverride)
	}
	if len(res.MissingItemIDs) != 0 {
		t.Errorf("unexpected missing ids %v", res.MissingItemIDs)
	}
}

func TestAggregateMissingItemsDeduplicated(t *testing.T) {
	selections := []GuestSelection{
		{GuestID: "g1", Protein1: "lobster", Protein2: "chicken"},
		{GuestID: "g2", Protein1: "steak", Protein2: "lobster", Sides: Sides{Noodles: true}},
	}

	res := Aggregate(selections, catalog(), DefaultParams())

	if !reflect.DeepEqual(res.MissingItemIDs, []string{"lobster", "noodles"}) {
		t.Errorf("MissingItemIDs = %v, want [lobster noodles]", res.MissingItemIDs)
	}
	// lobster contributes nothing; the rest of each guest is still priced
	if !res.Guests[0].Cost.Equal(dec("4")) || !res.Guests[0].Price.Equal(dec("14")) {
		t.Errorf("g1 = %+v", res.Guests[0])
	}
	if !res.Guests[1].Cost.Equal(dec("9")) || !res.Guests[1].Price.Equal(dec("30")) {
		t.Errorf("g2 = %+v", res.Guests[1])
	}
}

func TestAggregateEmptyProteinIsNoSelection(t *testing.T) {
	res := Aggregate([]GuestSelection{{GuestID: "g1", Protein1: "chicken"}}, catalog(), DefaultParams())
	if len(res.MissingItemIDs) != 0 {
		t.Errorf("empty protein id must not be reported missing: %v", res.MissingItemIDs)
	}
	if !res.SubtotalOverride.Equal(dec("14")) {
		t.Errorf("SubtotalOverride = %s, want 14", res.SubtotalOverride)
	}
}

func TestAggregateConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"chicken", "steak", "salmon", "lobster", "duck", ""}

	for round := 0; round < 50; round++ {
		var selections []GuestSelection
		referenced := map[string]bool{}
		guests := rng.Intn(30)
		for g := 0; g < guests; g++ {
			s := GuestSelection{
				IsChild:  rng.Intn(3) == 0,
				Protein1: ids[rng.Intn(len(ids))],
				Protein2: ids[rng.Intn(len(ids))],
				Sides:    Sides{Salad: rng.Intn(2) == 0, Rice: rng.Intn(2) == 0, Noodles: rng.Intn(2) == 0},
			}
			for _, id := range selectedIDs(s, DefaultSideItemIDs) {
				referenced[id] = true
			}
			selections = append(selections, s)
		}

		res := Aggregate(selections, catalog(), Params{ChildDiscountPercent: dec("25"), PremiumAddOnPerGuest: dec("3")})

		cost, price := decimal.Zero, decimal.Zero
		for _, line := range res.Guests {
			cost = cost.Add(line.Cost)
			price = price.Add(line.Price)
		}
		if !cost.Equal(res.FoodCostOverride) || !price.Equal(res.SubtotalOverride) {
			t.Fatalf("round %d: totals do not equal per-guest sums", round)
		}

		known := NewCatalog(catalog())
		counts := map[string]int{}
		for _, id := range res.MissingItemIDs {
			counts[id]++
		}
		for id := range referenced {
			_, inCatalog := known[id]
			if !inCatalog && counts[id] != 1 {
				t.Fatalf("round %d: missing id %q reported %d times", round, id, counts[id])
			}
			if inCatalog && counts[id] != 0 {
				t.Fatalf("round %d: catalog id %q reported missing", round, id)
			}
		}
	}
}

func TestOverrides(t *testing.T) {
	res := Result{SubtotalOverride: dec("100"), FoodCostOverride: dec("30")}
	ov := res.Overrides()
	if !ov.Subtotal.Valid || !ov.FoodCost.Valid || ov.GratuityPercent.Valid {
		t.Errorf("unexpected override validity: %+v", ov)
	}
}
