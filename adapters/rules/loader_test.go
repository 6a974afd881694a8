package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"catering-finance/core/determinism"
	"catering-finance/core/rules"
	"catering-finance/core/types"
	"catering-finance/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadHCLMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "default.hcl"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, err := determinism.HashJSON(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want, err := determinism.HashJSON(rules.Default())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		gotJSON, _ := determinism.CanonicalJSON(cfg)
		t.Errorf("HCL document differs from defaults:\n%s", gotJSON)
	}
	if issues := cfg.Validate(); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
}

func TestLoadHCLKeepsDecimalPrecision(t *testing.T) {
	path := writeFile(t, "rules.hcl", `
pricing {
  base_price_per_guest = { buffet = 54.99 }
  default_gratuity_percent = 18.5
}
distance {
  free_miles = 12.25
  increment_miles = 0.1
}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.BasePrice(types.CategoryBuffet).Equal(decimal.RequireFromString("54.99")) {
		t.Errorf("buffet price = %s", cfg.BasePrice(types.CategoryBuffet))
	}
	if cfg.Pricing.DefaultGratuityPercent.String() != "18.5" {
		t.Errorf("gratuity = %s", cfg.Pricing.DefaultGratuityPercent)
	}
	if cfg.Distance.IncrementMiles.String() != "0.1" {
		t.Errorf("increment = %s", cfg.Distance.IncrementMiles)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "rules.json", `{
  "pricing": {"base_price_per_guest": {"buffet": "60"}, "default_gratuity_percent": 15},
  "labor": {
    "roles": {"buffet": {"base_pay_percent": 9, "cap_percent": null, "gratuity_group": "chef"}},
    "gratuity_splits": {"chef": 100}
  }
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.BasePrice(types.CategoryBuffet).Equal(decimal.NewFromInt(60)) {
		t.Errorf("buffet price = %s", cfg.BasePrice(types.CategoryBuffet))
	}
	role, ok := cfg.Role(types.RoleBuffet)
	if !ok || role.CapPercent.Valid {
		t.Errorf("buffet role = %+v, want uncapped", role)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLoadWithDefaultsKeepsEveryNamedValue(t *testing.T) {
	def := rules.Default()

	tests := []struct {
		name  string
		doc   string
		check func(t *testing.T, cfg *rules.Configuration)
	}{
		{
			name: "costs",
			doc:  "costs {\n  supplies_cost_percent = 10\n}\n",
			check: func(t *testing.T, cfg *rules.Configuration) {
				if !cfg.Costs.SuppliesCostPercent.Equal(dec("10")) {
					t.Errorf("supplies = %s, want 10", cfg.Costs.SuppliesCostPercent)
				}
				if !cfg.Costs.FoodCostPercent[types.CategoryBuffet].Equal(def.Costs.FoodCostPercent[types.CategoryBuffet]) {
					t.Error("food cost percent should come from defaults")
				}
				if !cfg.Costs.TransportationStipend.Equal(def.Costs.TransportationStipend) {
					t.Error("transportation stipend should come from defaults")
				}
			},
		},
		{
			name: "pricing",
			doc:  "pricing {\n  default_gratuity_percent = 18\n  base_price_per_guest = { buffet = 60 }\n}\n",
			check: func(t *testing.T, cfg *rules.Configuration) {
				if !cfg.Pricing.DefaultGratuityPercent.Equal(dec("18")) {
					t.Errorf("gratuity = %s, want 18", cfg.Pricing.DefaultGratuityPercent)
				}
				if !cfg.BasePrice(types.CategoryBuffet).Equal(dec("60")) {
					t.Errorf("buffet price = %s, want 60", cfg.BasePrice(types.CategoryBuffet))
				}
				if !cfg.BasePrice(types.CategoryPrivateDinner).Equal(def.BasePrice(types.CategoryPrivateDinner)) {
					t.Error("private dinner price should come from defaults")
				}
			},
		},
		{
			name: "labor splits without roles",
			doc:  "labor {\n  gratuity_splits = { chef = 70, assistant = 30 }\n}\n",
			check: func(t *testing.T, cfg *rules.Configuration) {
				if !cfg.Labor.GratuitySplits["chef"].Equal(dec("70")) || !cfg.Labor.GratuitySplits["assistant"].Equal(dec("30")) {
					t.Errorf("splits = %v, want chef 70 assistant 30", cfg.Labor.GratuitySplits)
				}
				if len(cfg.Labor.Roles) != len(def.Labor.Roles) {
					t.Errorf("got %d roles, want the %d defaults", len(cfg.Labor.Roles), len(def.Labor.Roles))
				}
			},
		},
		{
			name: "labor role replaced per key",
			doc:  "labor {\n  role \"lead\" {\n    base_pay_percent = 12\n    gratuity_group   = \"chef\"\n  }\n}\n",
			check: func(t *testing.T, cfg *rules.Configuration) {
				lead := cfg.Labor.Roles[types.RoleLead]
				if !lead.BasePayPercent.Equal(dec("12")) || lead.CapPercent.Valid {
					t.Errorf("lead = %+v, want 12%% uncapped", lead)
				}
				if !cfg.Labor.Roles[types.RoleFull].BasePayPercent.Equal(def.Labor.Roles[types.RoleFull].BasePayPercent) {
					t.Error("full role should come from defaults")
				}
			},
		},
		{
			name: "staffing",
			doc:  "staffing {\n  category \"buffet\" {\n    max_guests_per_chef = 30\n  }\n  profile \"solo\" {\n    category   = \"any\"\n    min_guests = 1\n    max_guests = 4\n    roles      = [\"lead\"]\n  }\n}\n",
			check: func(t *testing.T, cfg *rules.Configuration) {
				if got := cfg.Staffing.Categories[types.CategoryBuffet].MaxGuestsPerChef; got != 30 {
					t.Errorf("buffet capacity = %d, want 30", got)
				}
				if _, ok := cfg.Staffing.Categories[types.CategoryPrivateDinner]; !ok {
					t.Error("private dinner staffing should come from defaults")
				}
				if len(cfg.Staffing.Profiles) != 1 || cfg.Staffing.Profiles[0].ID != "solo" || cfg.Staffing.Profiles[0].Name != "" {
					t.Errorf("profiles = %+v, want only solo", cfg.Staffing.Profiles)
				}
				if cfg.Staffing.AssistantRole != def.Staffing.AssistantRole {
					t.Error("assistant role should come from defaults")
				}
			},
		},
		{
			name: "distance explicit zero",
			doc:  "distance {\n  free_miles = 0\n}\n",
			check: func(t *testing.T, cfg *rules.Configuration) {
				if !cfg.Distance.FreeMiles.IsZero() {
					t.Errorf("free miles = %s, want 0", cfg.Distance.FreeMiles)
				}
				if !cfg.Distance.BaseFee.Equal(def.Distance.BaseFee) {
					t.Error("base fee should come from defaults")
				}
			},
		},
		{
			name: "profit distribution",
			doc:  "profit_distribution {\n  business_retained_percent  = 40\n  owner_distribution_percent = 60\n}\n",
			check: func(t *testing.T, cfg *rules.Configuration) {
				if !cfg.ProfitDistribution.BusinessRetainedPercent.Equal(dec("40")) {
					t.Errorf("retained = %s, want 40", cfg.ProfitDistribution.BusinessRetainedPercent)
				}
				if len(cfg.ProfitDistribution.Owners) != len(def.ProfitDistribution.Owners) {
					t.Error("owners should come from defaults")
				}
			},
		},
		{
			name: "owners replaced whole",
			doc:  "profit_distribution {\n  owner \"sole\" {\n    equity_percent = 100\n  }\n}\n",
			check: func(t *testing.T, cfg *rules.Configuration) {
				owners := cfg.ProfitDistribution.Owners
				if len(owners) != 1 || owners[0].ID != "sole" || owners[0].Name != "" {
					t.Errorf("owners = %+v, want only sole", owners)
				}
			},
		},
		{
			name: "warnings disabled",
			doc:  "safety_limits {\n  enable_warnings = false\n}\n",
			check: func(t *testing.T, cfg *rules.Configuration) {
				if cfg.SafetyLimits.EnableWarnings {
					t.Error("enable_warnings = false was overridden")
				}
				if !cfg.SafetyLimits.MaxLaborPercent.Equal(def.SafetyLimits.MaxLaborPercent) {
					t.Error("labor limit should come from defaults")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithDefaults(writeFile(t, "rules.hcl", tt.doc))
			if err != nil {
				t.Fatalf("LoadWithDefaults: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadWithDefaultsJSON(t *testing.T) {
	path := writeFile(t, "rules.json", `{"costs": {"supplies_cost_percent": "10"}, "safety_limits": {"enable_warnings": false}}`)
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if !cfg.Costs.SuppliesCostPercent.Equal(dec("10")) || cfg.SafetyLimits.EnableWarnings {
		t.Errorf("costs = %+v, safety = %+v", cfg.Costs, cfg.SafetyLimits)
	}
	if len(cfg.Costs.FoodCostPercent) == 0 {
		t.Error("food cost percent should come from defaults")
	}
}

func TestLoadWithDefaultsEmptyPath(t *testing.T) {
	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := determinism.HashJSON(rules.Default())
	got, _ := determinism.HashJSON(cfg)
	if got != want {
		t.Error("empty path should yield defaults")
	}
}

func TestLoadWithoutDefaultsTakesDocumentAsWritten(t *testing.T) {
	cfg, err := Load(writeFile(t, "rules.hcl", "costs {\n  supplies_cost_percent = 10\n}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Costs.FoodCostPercent) != 0 || len(cfg.Labor.Roles) != 0 {
		t.Error("Load must not fill anything from defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantType errors.Type
		contains string
	}{
		{
			name:     "unknown extension",
			file:     "rules.yaml",
			content:  "pricing: {}",
			wantType: errors.TypeNotSupported,
		},
		{
			name:     "syntax error",
			file:     "rules.hcl",
			content:  "pricing {",
			wantType: errors.TypeParsing,
		},
		{
			name:     "unknown section",
			file:     "rules.hcl",
			content:  "catering {}",
			wantType: errors.TypeParsing,
			contains: `unknown section "catering"`,
		},
		{
			name:     "misplaced block",
			file:     "rules.hcl",
			content:  "pricing {\n  role \"lead\" {}\n}",
			wantType: errors.TypeParsing,
			contains: `unknown block "role"`,
		},
		{
			name:     "top-level attribute",
			file:     "rules.hcl",
			content:  "free_miles = 3",
			wantType: errors.TypeParsing,
			contains: "top-level attribute",
		},
		{
			name:     "map set as attribute and blocks",
			file:     "rules.hcl",
			content:  "labor {\n  roles = {}\n  role \"lead\" {}\n}",
			wantType: errors.TypeParsing,
			contains: "roles is set as an attribute",
		},
		{
			name:     "variable reference",
			file:     "rules.hcl",
			content:  "distance {\n  free_miles = var.miles\n}",
			wantType: errors.TypeParsing,
		},
		{
			name:     "unknown field",
			file:     "rules.json",
			content:  `{"pricing": {"base_price": 1}}`,
			wantType: errors.TypeParsing,
			contains: "base_price",
		},
		{
			name:     "duplicate role",
			file:     "rules.hcl",
			content:  "labor {\n  role \"lead\" {}\n  role \"lead\" {}\n}",
			wantType: errors.TypeParsing,
			contains: "declared twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.IsType(err, tt.wantType) {
				t.Errorf("error type: got %v, want %s", err, tt.wantType)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should mention %q", err, tt.contains)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	if !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("got %v, want not found", err)
	}
}

func TestStrayAttributeReportsFirstInSource(t *testing.T) {
	src := []byte("zeta = 1\nalpha = 2\nmid = 3\n")
	for i := 0; i < 20; i++ {
		_, err := Parse(src, "rules.hcl", FormatHCL)
		if err == nil || !strings.Contains(err.Error(), `rules.hcl:1: unexpected top-level attribute "zeta"`) {
			t.Fatalf("run %d: got %v, want the line 1 attribute", i, err)
		}
	}
}
