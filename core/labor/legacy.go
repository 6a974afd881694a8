package labor

import (
	"catering-finance/core/types"
)

// OverridesFromRoleOrder converts overrides addressed by role order, where
// the Nth override for role R means the Nth slot staffed with R, into
// slot-indexed overrides against a resolved plan. Incoming SlotIndex values
// are ignored; overrides with no matching slot are dropped.
func OverridesFromRoleOrder(plan types.StaffingPlan, overrides []types.SlotOverride) []types.SlotOverride {
	slotsByRole := make(map[types.RoleTag][]int)
	for _, s := range plan.Slots {
		slotsByRole[s.Role] = append(slotsByRole[s.Role], s.Index)
	}

	used := make(map[types.RoleTag]int)
	out := make([]types.SlotOverride, 0, len(overrides))
	for _, ov := range overrides {
		n := used[ov.Role]
		used[ov.Role]++

		indexes := slotsByRole[ov.Role]
		if n >= len(indexes) {
			continue
		}
		ov.SlotIndex = indexes[n]
		out = append(out, ov)
	}
	return out
}
