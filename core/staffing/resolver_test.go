package staffing

import (
	"reflect"
	"testing"

	"catering-finance/core/rules"
	"catering-finance/core/types"
)

func TestChefsNeeded(t *testing.T) {
	tests := []struct {
		guests, capacity, want int
	}{
		{0, 15, 0},
		{1, 15, 1},
		{10, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
		{45, 15, 3},
		{12, 0, 1},
		{-3, 15, 0},
	}
	for _, tt := range tests {
		if got := ChefsNeeded(tt.guests, tt.capacity); got != tt.want {
			t.Errorf("ChefsNeeded(%d, %d) = %d, want %d", tt.guests, tt.capacity, got, tt.want)
		}
	}
}

func TestResolveDefaultFormula(t *testing.T) {
	cfg := rules.Default()

	tests := []struct {
		name      string
		req       Request
		wantRoles []types.RoleTag
		assistant bool
	}{
		{
			name:      "ten guest private dinner is one lead chef",
			req:       Request{Guests: 10, Category: types.CategoryPrivateDinner},
			wantRoles: []types.RoleTag{types.RoleLead},
		},
		{
			name:      "twenty guest private dinner adds a full chef",
			req:       Request{Guests: 20, Category: types.CategoryPrivateDinner},
			wantRoles: []types.RoleTag{types.RoleLead, types.RoleFull},
		},
		{
			name:      "buffet chefs are uniform with an assistant",
			req:       Request{Guests: 60, Category: types.CategoryBuffet},
			wantRoles: []types.RoleTag{types.RoleBuffet, types.RoleBuffet, types.RoleBuffet, types.RoleAssistant},
			assistant: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Resolve(tt.req, cfg)
			if !reflect.DeepEqual(plan.Roles(), tt.wantRoles) {
				t.Errorf("roles = %v, want %v", plan.Roles(), tt.wantRoles)
			}
			if plan.Source != types.PlanSourceDefault {
				t.Errorf("source = %s, want default formula", plan.Source)
			}
			if plan.AssistantNeeded != tt.assistant {
				t.Errorf("AssistantNeeded = %v, want %v", plan.AssistantNeeded, tt.assistant)
			}
			if plan.TotalStaff != len(tt.wantRoles) {
				t.Errorf("TotalStaff = %d, want %d", plan.TotalStaff, len(tt.wantRoles))
			}
		})
	}
}

func TestResolveMatchesProfileRangeInclusive(t *testing.T) {
	cfg := rules.Default()

	for _, guests := range []int{31, 45, 60} {
		plan := Resolve(Request{Guests: guests, Category: types.CategoryPrivateDinner}, cfg)
		if plan.ProfileID != "dinner-party" {
			t.Errorf("%d guests: profile = %q, want dinner-party", guests, plan.ProfileID)
		}
		if !plan.AssistantNeeded {
			t.Errorf("%d guests: profile with assistant role should flag assistant", guests)
		}
	}

	plan := Resolve(Request{Guests: 61, Category: types.CategoryPrivateDinner}, cfg)
	if plan.Source != types.PlanSourceDefault {
		t.Errorf("61 guests should fall back to the formula, got %s", plan.Source)
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	cfg := rules.Default()
	cfg.Staffing.Profiles = []rules.StaffingProfile{
		{ID: "first", Category: types.CategoryAny, MinGuests: 1, MaxGuests: 50, Roles: []types.RoleTag{types.RoleLead}},
		{ID: "second", Category: types.CategoryBuffet, MinGuests: 1, MaxGuests: 50, Roles: []types.RoleTag{types.RoleBuffet}},
	}

	plan := Resolve(Request{Guests: 20, Category: types.CategoryBuffet}, cfg)
	if plan.ProfileID != "first" {
		t.Errorf("profile = %q, want first", plan.ProfileID)
	}
}

func TestResolveExplicitProfile(t *testing.T) {
	cfg := rules.Default()

	plan := Resolve(Request{Guests: 5, Category: types.CategoryBuffet, ProfileID: "banquet"}, cfg)
	if plan.Source != types.PlanSourceExplicit || plan.ProfileID != "banquet" {
		t.Errorf("expected explicit banquet profile, got %s/%s", plan.Source, plan.ProfileID)
	}
	if plan.TotalStaff != 6 {
		t.Errorf("TotalStaff = %d, want 6", plan.TotalStaff)
	}

	fallback := Resolve(Request{Guests: 10, Category: types.CategoryPrivateDinner, ProfileID: "missing"}, cfg)
	if fallback.Source != types.PlanSourceDefault {
		t.Errorf("unknown explicit profile should fall through, got %s", fallback.Source)
	}
}

func TestSlotIdentity(t *testing.T) {
	cfg := rules.Default()
	plan := Resolve(Request{Guests: 200, Category: types.CategoryPrivateDinner}, cfg)

	wantIDs := []string{"lead-1", "full-1", "full-2", "full-3", "assistant-1", "assistant-2"}
	for i, slot := range plan.Slots {
		if slot.Index != i {
			t.Errorf("slot %d has index %d", i, slot.Index)
		}
		if slot.ID != wantIDs[i] {
			t.Errorf("slot %d id = %q, want %q", i, slot.ID, wantIDs[i])
		}
	}
}
