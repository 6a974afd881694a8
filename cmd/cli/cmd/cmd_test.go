package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catering-finance/core/output"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	// flags are package globals; reset the ones tests set
	eventFile, rulesFile, menuFile, outputFormat = "", "", "", ""
	saveResult, roleOrderPay = false, false
	diffEvent, diffFormat, diffTolerance = "", "cli", "0"
	return out.String(), err
}

func TestCalculateJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	event := writeFile(t, dir, "event.json", `{"event_id": "e1", "adults": 10, "children": 0, "category": "private-dinner"}`)

	out, err := execute(t, "calculate", "--event", event, "--format", "json")
	if err != nil {
		t.Fatalf("calculate: %v\n%s", err, out)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if report.Financials.Subtotal.String() != "850" {
		t.Errorf("subtotal = %s, want 850", report.Financials.Subtotal)
	}
	if report.Metadata.RulesHash == "" {
		t.Error("rules hash missing")
	}
}

func TestCalculateWithMenuAndSave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("CATERING_STORAGE_PATH", filepath.Join(dir, "store", "snapshots.db"))

	event := writeFile(t, dir, "event.json", `{"adults": 2, "category": "private-dinner"}`)
	menuPath := writeFile(t, dir, "menu.json", `{
  "selections": [{"guest_id": "a", "protein_1": "steak", "protein_2": "lobster"}],
  "catalog": [{"id": "steak", "cost_per_serving": 10, "price_per_serving": 32}]
}`)

	out, err := execute(t, "calculate", "--event", event, "--menu", menuPath, "--save", "--format", "markdown", "--no-color")
	if err != nil {
		t.Fatalf("calculate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Missing from catalog: lobster") {
		t.Errorf("markdown should report the missing item:\n%s", out)
	}

	list, err := execute(t, "rules", "list", "--no-color")
	if err != nil {
		t.Fatalf("rules list: %v\n%s", err, list)
	}
	if !strings.Contains(list, "built-in") {
		t.Errorf("saved snapshot not listed:\n%s", list)
	}
}

func TestCalculateRejectsInvalidEvent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	event := writeFile(t, dir, "event.json", `{"adults": -3, "category": "buffet"}`)

	if _, err := execute(t, "calculate", "--event", event); err == nil {
		t.Error("negative guest count should be rejected")
	}
}

func TestRulesValidate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	out, err := execute(t, "rules", "validate", "--no-color")
	if err != nil {
		t.Fatalf("defaults should validate: %v\n%s", err, out)
	}

	bad := writeFile(t, dir, "rules.hcl", "profit_distribution {\n  business_retained_percent = 40\n  owner_distribution_percent = 70\n}\n")
	out, err = execute(t, "rules", "validate", bad, "--no-color")
	if err == nil {
		t.Fatalf("inconsistent document should fail validation:\n%s", out)
	}
	if !strings.Contains(out, "profit_distribution") {
		t.Errorf("issue should name the section:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "catering-finance version") {
		t.Errorf("version output = %q", out)
	}
}

func TestRulesDiff(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	event := writeFile(t, dir, "event.json", `{"adults": 10, "children": 0, "category": "private-dinner"}`)
	current := writeFile(t, dir, "current.hcl", "costs {\n  supplies_cost_percent = 5\n}\n")
	proposed := writeFile(t, dir, "proposed.hcl", "costs {\n  supplies_cost_percent = 10\n}\n")

	out, err := execute(t, "rules", "diff", current, proposed, "--event", event, "--format", "json")
	if err != nil {
		t.Fatalf("rules diff: %v\n%s", err, out)
	}

	var result struct {
		Lines []struct {
			Name  string `json:"name"`
			Delta string `json:"delta"`
		} `json:"lines"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	// 5% more supplies on an 850 subtotal
	deltas := map[string]string{}
	for _, l := range result.Lines {
		deltas[l.Name] = l.Delta
	}
	if deltas["total_costs"] != "42.5" {
		t.Errorf("total_costs delta = %q, want 42.5 (lines %v)", deltas["total_costs"], deltas)
	}
	if deltas["gross_profit"] != "-42.5" {
		t.Errorf("gross_profit delta = %q, want -42.5", deltas["gross_profit"])
	}
	if _, ok := deltas["subtotal"]; ok {
		t.Error("subtotal should not have moved")
	}
}

func TestRulesDiffRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	event := writeFile(t, dir, "event.json", `{"adults": 10, "children": 0, "category": "private-dinner"}`)
	current := writeFile(t, dir, "current.hcl", "costs {\n  supplies_cost_percent = 5\n}\n")

	for _, format := range []string{"yaml", "markdown"} {
		out, err := execute(t, "rules", "diff", current, current, "--event", event, "--format", format)
		if err == nil || !strings.Contains(err.Error(), "unsupported diff format") {
			t.Errorf("--format %s: got %v, want unsupported format\n%s", format, err, out)
		}
	}
}
