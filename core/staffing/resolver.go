// Package staffing resolves how many staff of which roles an event needs.
package staffing

import (
	"fmt"

	"catering-finance/core/rules"
	"catering-finance/core/types"
)

// Request is the subset of an event the resolver looks at
type Request struct {
	Guests    int
	Category  types.EventCategory
	ProfileID string
}

// RequestFor builds a resolver request from an event
func RequestFor(in types.EventInput) Request {
	return Request{
		Guests:    in.TotalGuests(),
		Category:  in.Category,
		ProfileID: in.StaffingProfileID,
	}
}

// Resolve picks the staffing plan for a request:
//  1. an explicit profile id, when it names a configured profile;
//  2. otherwise the first configured profile whose category and
//     inclusive guest range match;
//  3. otherwise the per-chef capacity formula for the category.
func Resolve(req Request, cfg *rules.Configuration) types.StaffingPlan {
	if req.ProfileID != "" {
		if p, ok := cfg.Profile(req.ProfileID); ok {
			return fromProfile(p, types.PlanSourceExplicit, cfg.Staffing.AssistantRole)
		}
	}

	if p, ok := Match(req.Guests, req.Category, cfg.Staffing.Profiles); ok {
		return fromProfile(p, types.PlanSourceProfile, cfg.Staffing.AssistantRole)
	}

	return defaultPlan(req, cfg)
}

// Match returns the first profile covering the category and guest count
func Match(guests int, category types.EventCategory, profiles []rules.StaffingProfile) (rules.StaffingProfile, bool) {
	for _, p := range profiles {
		if p.Category.Matches(category) && p.Contains(guests) {
			return p, true
		}
	}
	return rules.StaffingProfile{}, false
}

// ChefsNeeded is ceil(guests / capacity). A non-positive capacity staffs
// a single chef for any non-empty event.
func ChefsNeeded(guests, capacity int) int {
	if guests <= 0 {
		return 0
	}
	if capacity <= 0 {
		return 1
	}
	return (guests + capacity - 1) / capacity
}

func defaultPlan(req Request, cfg *rules.Configuration) types.StaffingPlan {
	cs, _ := cfg.CategoryStaffing(req.Category)

	lead, full := cs.LeadRole, cs.FullRole
	if lead == "" {
		lead = types.RoleLead
	}
	if full == "" {
		full = lead
	}

	chefs := ChefsNeeded(req.Guests, cs.MaxGuestsPerChef)
	roles := make([]types.RoleTag, 0, chefs+1)
	for i := 0; i < chefs; i++ {
		if i == 0 {
			roles = append(roles, lead)
		} else {
			roles = append(roles, full)
		}
	}
	if cs.AssistantRequired {
		roles = append(roles, assistantRole(cfg.Staffing.AssistantRole))
	}

	plan := build(roles)
	plan.Source = types.PlanSourceDefault
	plan.AssistantNeeded = cs.AssistantRequired
	return plan
}

func fromProfile(p rules.StaffingProfile, source types.PlanSource, assistant types.RoleTag) types.StaffingPlan {
	plan := build(p.Roles)
	plan.Source = source
	plan.ProfileID = p.ID

	assistant = assistantRole(assistant)
	for _, r := range p.Roles {
		if r == assistant {
			plan.AssistantNeeded = true
			break
		}
	}
	return plan
}

// build assigns every slot its plan index and per-role occurrence id
func build(roles []types.RoleTag) types.StaffingPlan {
	seen := make(map[types.RoleTag]int, len(roles))
	slots := make([]types.StaffingSlot, len(roles))
	for i, role := range roles {
		seen[role]++
		slots[i] = types.StaffingSlot{
			Index: i,
			ID:    fmt.Sprintf("%s-%d", role, seen[role]),
			Role:  role,
		}
	}
	return types.StaffingPlan{
		Slots:      slots,
		TotalStaff: len(slots),
	}
}

func assistantRole(r types.RoleTag) types.RoleTag {
	if r == "" {
		return types.RoleAssistant
	}
	return r
}
