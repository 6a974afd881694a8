// Package labor computes per-slot staff compensation and enforces caps.
//
// Capped excess is reported per entry but never paid and never added back
// anywhere: it simply stays inside gross profit because only FinalPay is
// subtracted from revenue.
package labor

import (
	"fmt"

	"github.com/shopspring/decimal"

	"catering-finance/core/rules"
	"catering-finance/core/types"
)

// Result is the compensation for a whole staffing plan
type Result struct {
	Entries   []types.LaborCompensationEntry
	TotalPaid decimal.Decimal
	Warnings  []string
}

// Calculate pays every slot of the plan, in plan order
func Calculate(plan types.StaffingPlan, subtotal, gratuity decimal.Decimal, cfg *rules.Configuration, overrides []types.SlotOverride) Result {
	res := Result{
		Entries:   make([]types.LaborCompensationEntry, 0, len(plan.Slots)),
		TotalPaid: decimal.Zero,
	}

	bySlot, warnings := indexOverrides(plan, overrides)
	res.Warnings = append(res.Warnings, warnings...)

	capBase := subtotal.Add(gratuity)

	for _, slot := range plan.Slots {
		rule, hasRule := cfg.Role(slot.Role)
		ov, hasOverride := bySlot[slot.Index]
		if !hasRule && !hasOverride {
			res.Warnings = append(res.Warnings, fmt.Sprintf("slot %s: no compensation rule for role %q", slot.ID, slot.Role))
		}

		entry := types.LaborCompensationEntry{
			SlotIndex:            slot.Index,
			SlotID:               slot.ID,
			Role:                 slot.Role,
			BasePayPercent:       rule.BasePayPercent,
			GratuitySplitPercent: cfg.GratuitySplitFor(slot.Role),
			Cap:                  ruleCap(rule, capBase),
			Overridden:           hasOverride,
		}

		if hasOverride {
			if ov.BasePayPercent.Valid {
				entry.BasePayPercent = ov.BasePayPercent.Decimal
			}
			if ov.GratuitySplitPercent.Valid {
				entry.GratuitySplitPercent = ov.GratuitySplitPercent.Decimal
			}
			if ov.Cap.Valid {
				entry.Cap = normalizeCap(ov.Cap.Decimal)
			}
		}

		entry.BasePay = types.Percent(subtotal, entry.BasePayPercent)
		entry.GratuityShare = types.Percent(gratuity, entry.GratuitySplitPercent)
		entry.RawPay = entry.BasePay.Add(entry.GratuityShare)

		applyCap(&entry)

		res.TotalPaid = res.TotalPaid.Add(entry.FinalPay)
		res.Entries = append(res.Entries, entry)
	}

	return res
}

// applyCap binds FinalPay to the cap when the raw pay exceeds it
func applyCap(e *types.LaborCompensationEntry) {
	if e.Cap.Valid && e.RawPay.GreaterThan(e.Cap.Decimal) {
		e.FinalPay = e.Cap.Decimal
		e.WasCapped = true
		e.ExcessToProfit = e.RawPay.Sub(e.Cap.Decimal)
		return
	}
	e.FinalPay = e.RawPay
	e.WasCapped = false
	e.ExcessToProfit = decimal.Zero
}

// ruleCap converts a role's cap percentage into an amount of subtotal+gratuity
func ruleCap(r rules.RoleRule, capBase decimal.Decimal) decimal.NullDecimal {
	if !r.CapPercent.Valid || r.CapPercent.Decimal.Sign() <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(types.Percent(capBase, r.CapPercent.Decimal))
}

// normalizeCap treats a zero or negative cap as uncapped
func normalizeCap(amount decimal.Decimal) decimal.NullDecimal {
	if amount.Sign() <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount)
}

func indexOverrides(plan types.StaffingPlan, overrides []types.SlotOverride) (map[int]types.SlotOverride, []string) {
	var warnings []string
	bySlot := make(map[int]types.SlotOverride, len(overrides))

	for _, ov := range overrides {
		if ov.SlotIndex < 0 || ov.SlotIndex >= len(plan.Slots) {
			warnings = append(warnings, fmt.Sprintf("pay override for slot %d ignored: plan has %d slots", ov.SlotIndex, len(plan.Slots)))
			continue
		}
		slot := plan.Slots[ov.SlotIndex]
		if ov.Role != "" && ov.Role != slot.Role {
			warnings = append(warnings, fmt.Sprintf("pay override for slot %s ignored: targets role %q", slot.ID, ov.Role))
			continue
		}
		if _, dup := bySlot[ov.SlotIndex]; dup {
			warnings = append(warnings, fmt.Sprintf("slot %s has more than one pay override; the last one applies", slot.ID))
		}
		bySlot[ov.SlotIndex] = ov
	}

	return bySlot, warnings
}
