// Package diff compares the financials of one event computed under two
// rule sets, line by line and slot by slot.
package diff

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"catering-finance/core/types"
)

// ChangeType indicates the type of change
type ChangeType int

const (
	ChangeAdded     ChangeType = iota // Slot or owner only in after
	ChangeRemoved                     // Slot or owner only in before
	ChangeModified                    // Amount changed
	ChangeUnchanged                   // No change
)

// String returns the change type name
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	case ChangeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// MarshalText renders the change type by name
func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a change type name
func (c *ChangeType) UnmarshalText(text []byte) error {
	for _, t := range []ChangeType{ChangeAdded, ChangeRemoved, ChangeModified, ChangeUnchanged} {
		if t.String() == string(text) {
			*c = t
			return nil
		}
	}
	return fmt.Errorf("unknown change type %q", text)
}

// LineDiff is the change of one top-level amount
type LineDiff struct {
	Name   string          `json:"name"`
	Before decimal.Decimal `json:"before"`
	After  decimal.Decimal `json:"after"`
	Delta  decimal.Decimal `json:"delta"`
}

// SlotDiff is the change of one staffing slot's pay
type SlotDiff struct {
	SlotID     string          `json:"slot_id"`
	Role       types.RoleTag   `json:"role"`
	ChangeType ChangeType      `json:"change"`
	Before     decimal.Decimal `json:"before"`
	After      decimal.Decimal `json:"after"`
	Delta      decimal.Decimal `json:"delta"`

	CapChanged bool `json:"cap_changed,omitempty"`
}

// OwnerDiff is the change of one owner's distribution
type OwnerDiff struct {
	Owner      string          `json:"owner"`
	ChangeType ChangeType      `json:"change"`
	Before     decimal.Decimal `json:"before"`
	After      decimal.Decimal `json:"after"`
	Delta      decimal.Decimal `json:"delta"`
}

// Result holds the full comparison
type Result struct {
	EventID string `json:"event_id,omitempty"`

	// Lines lists only the amounts that moved, in a fixed order
	Lines  []LineDiff  `json:"lines"`
	Slots  []SlotDiff  `json:"slots"`
	Owners []OwnerDiff `json:"owners"`

	StaffBefore int `json:"staff_before"`
	StaffAfter  int `json:"staff_after"`

	WarningsAdded   []string `json:"warnings_added,omitempty"`
	WarningsRemoved []string `json:"warnings_removed,omitempty"`
}

// Differ computes diffs between two results of the same event
type Differ struct {
	// Tolerance below which an amount counts as unchanged
	Tolerance decimal.Decimal
}

// NewDiffer creates a new differ
func NewDiffer(tolerance decimal.Decimal) *Differ {
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}
	return &Differ{Tolerance: tolerance}
}

type line struct {
	name string
	get  func(*types.EventFinancials) decimal.Decimal
}

var lines = []line{
	{"subtotal", func(f *types.EventFinancials) decimal.Decimal { return f.Subtotal }},
	{"gratuity", func(f *types.EventFinancials) decimal.Decimal { return f.Gratuity }},
	{"distance_fee", func(f *types.EventFinancials) decimal.Decimal { return f.DistanceFee }},
	{"total_charged", func(f *types.EventFinancials) decimal.Decimal { return f.TotalCharged }},
	{"total_costs", func(f *types.EventFinancials) decimal.Decimal { return f.TotalCosts }},
	{"total_labor_paid", func(f *types.EventFinancials) decimal.Decimal { return f.TotalLaborPaid }},
	{"capped_excess", func(f *types.EventFinancials) decimal.Decimal { return f.CappedExcess() }},
	{"gross_profit", func(f *types.EventFinancials) decimal.Decimal { return f.GrossProfit }},
	{"retained_amount", func(f *types.EventFinancials) decimal.Decimal { return f.RetainedAmount }},
}

// Diff computes the diff between before and after
func (d *Differ) Diff(before, after *types.EventFinancials) *Result {
	result := &Result{
		EventID:     after.EventID,
		Lines:       []LineDiff{},
		Slots:       []SlotDiff{},
		Owners:      []OwnerDiff{},
		StaffBefore: before.StaffingPlan.TotalStaff,
		StaffAfter:  after.StaffingPlan.TotalStaff,
	}

	for _, l := range lines {
		b, a := l.get(before), l.get(after)
		if d.changed(b, a) {
			result.Lines = append(result.Lines, LineDiff{Name: l.name, Before: b, After: a, Delta: a.Sub(b)})
		}
	}

	result.Slots = d.diffSlots(before.Labor, after.Labor)
	result.Owners = d.diffOwners(before.OwnerDistributions, after.OwnerDistributions)
	result.WarningsAdded = missing(after.Warnings, before.Warnings)
	result.WarningsRemoved = missing(before.Warnings, after.Warnings)

	return result
}

func (d *Differ) diffSlots(before, after []types.LaborCompensationEntry) []SlotDiff {
	beforeMap := make(map[string]types.LaborCompensationEntry, len(before))
	for _, e := range before {
		beforeMap[e.SlotID] = e
	}

	diffs := []SlotDiff{}
	seen := make(map[string]bool, len(after))
	for _, a := range after {
		seen[a.SlotID] = true
		b, existed := beforeMap[a.SlotID]
		if !existed {
			diffs = append(diffs, SlotDiff{
				SlotID: a.SlotID, Role: a.Role, ChangeType: ChangeAdded,
				Before: decimal.Zero, After: a.FinalPay, Delta: a.FinalPay,
			})
			continue
		}
		sd := SlotDiff{
			SlotID: a.SlotID, Role: a.Role,
			Before: b.FinalPay, After: a.FinalPay, Delta: a.FinalPay.Sub(b.FinalPay),
			CapChanged: b.WasCapped != a.WasCapped,
		}
		if d.changed(b.FinalPay, a.FinalPay) || sd.CapChanged {
			sd.ChangeType = ChangeModified
		} else {
			sd.ChangeType = ChangeUnchanged
		}
		diffs = append(diffs, sd)
	}

	for _, b := range before {
		if !seen[b.SlotID] {
			diffs = append(diffs, SlotDiff{
				SlotID: b.SlotID, Role: b.Role, ChangeType: ChangeRemoved,
				Before: b.FinalPay, After: decimal.Zero, Delta: b.FinalPay.Neg(),
			})
		}
	}

	sort.SliceStable(diffs, func(i, j int) bool {
		if diffs[i].Role != diffs[j].Role {
			return diffs[i].Role < diffs[j].Role
		}
		return occurrence(diffs[i].SlotID) < occurrence(diffs[j].SlotID)
	})
	return diffs
}

// occurrence extracts n from a "<role>-<n>" slot id, or 0 when absent
func occurrence(slotID string) int {
	i := strings.LastIndexByte(slotID, '-')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(slotID[i+1:])
	if err != nil {
		return 0
	}
	return n
}

func (d *Differ) diffOwners(before, after map[string]decimal.Decimal) []OwnerDiff {
	names := make(map[string]bool, len(before)+len(after))
	for k := range before {
		names[k] = true
	}
	for k := range after {
		names[k] = true
	}

	diffs := make([]OwnerDiff, 0, len(names))
	for name := range names {
		b, inBefore := before[name]
		a, inAfter := after[name]
		od := OwnerDiff{Owner: name, Before: b, After: a, Delta: a.Sub(b)}
		switch {
		case !inBefore:
			od.ChangeType = ChangeAdded
		case !inAfter:
			od.ChangeType = ChangeRemoved
		case d.changed(b, a):
			od.ChangeType = ChangeModified
		default:
			od.ChangeType = ChangeUnchanged
		}
		diffs = append(diffs, od)
	}

	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Owner < diffs[j].Owner
	})
	return diffs
}

func (d *Differ) changed(before, after decimal.Decimal) bool {
	return after.Sub(before).Abs().GreaterThan(d.Tolerance)
}

// missing returns the entries of xs that are not in ys, in xs order
func missing(xs, ys []string) []string {
	have := make(map[string]bool, len(ys))
	for _, y := range ys {
		have[y] = true
	}
	var out []string
	for _, x := range xs {
		if !have[x] {
			out = append(out, x)
		}
	}
	return out
}

// Line returns the named line diff, if that amount moved
func (r *Result) Line(name string) (LineDiff, bool) {
	for _, l := range r.Lines {
		if l.Name == name {
			return l, true
		}
	}
	return LineDiff{}, false
}

// HasChanges reports whether anything moved
func (r *Result) HasChanges() bool {
	if len(r.Lines) > 0 || len(r.WarningsAdded) > 0 || len(r.WarningsRemoved) > 0 {
		return true
	}
	for _, s := range r.Slots {
		if s.ChangeType != ChangeUnchanged {
			return true
		}
	}
	for _, o := range r.Owners {
		if o.ChangeType != ChangeUnchanged {
			return true
		}
	}
	return false
}

// Summary provides a human-readable summary
func (r *Result) Summary() string {
	var sb strings.Builder

	gp, ok := r.Line("gross_profit")
	switch {
	case !ok:
		sb.WriteString("No gross profit change\n")
	case gp.Delta.IsNegative():
		fmt.Fprintf(&sb, "Gross profit decreased by $%s\n", gp.Delta.Neg().StringFixed(2))
	default:
		fmt.Fprintf(&sb, "Gross profit increased by $%s\n", gp.Delta.StringFixed(2))
	}

	if r.StaffBefore != r.StaffAfter {
		fmt.Fprintf(&sb, "  ~ staff %d -> %d\n", r.StaffBefore, r.StaffAfter)
	}

	var added, removed, changed int
	for _, s := range r.Slots {
		switch s.ChangeType {
		case ChangeAdded:
			added++
		case ChangeRemoved:
			removed++
		case ChangeModified:
			changed++
		}
	}
	if added > 0 {
		fmt.Fprintf(&sb, "  + %d slots added\n", added)
	}
	if removed > 0 {
		fmt.Fprintf(&sb, "  - %d slots removed\n", removed)
	}
	if changed > 0 {
		fmt.Fprintf(&sb, "  ~ %d slots changed pay\n", changed)
	}

	return sb.String()
}
