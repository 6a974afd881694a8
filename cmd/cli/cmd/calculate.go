// Package cmd - calculate command
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"catering-finance/adapters/storage"
	"catering-finance/api"
	"catering-finance/core/engine"
	"catering-finance/core/labor"
	"catering-finance/core/output"
	"catering-finance/core/staffing"
	"catering-finance/core/types"
	"catering-finance/internal/config"
	"catering-finance/internal/logging"
)

var (
	eventFile    string
	rulesFile    string
	menuFile     string
	outputFormat string
	saveResult   bool
	roleOrderPay bool
)

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Compute the financials of one event",
	Long: `Compute revenue, staffing, labor, costs, profit and distributions
for one event described by a JSON file.

With --menu, the subtotal and food cost come from the guests' menu
selections priced against a catalog instead of the per-guest formula.

Examples:
  catering-finance calculate --event event.json
  catering-finance calculate --event event.json --rules rules.hcl
  catering-finance calculate --event event.json --menu menu.json --format json
  catering-finance calculate --event event.json --save`,
	Args: cobra.NoArgs,
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVarP(&eventFile, "event", "e", "", "event JSON file (- for stdin)")
	calculateCmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "rules document (.hcl or .json)")
	calculateCmd.Flags().StringVarP(&menuFile, "menu", "m", "", "menu selections and catalog JSON file")
	calculateCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown)")
	calculateCmd.Flags().BoolVar(&saveResult, "save", false, "store the rules snapshot and the result")
	calculateCmd.Flags().BoolVar(&roleOrderPay, "role-order-overrides", false,
		"treat slot overrides as addressed by role order (Nth override for a role = Nth slot of that role)")
	calculateCmd.MarkFlagRequired("event")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logging.Named("calculate")

	var in types.EventInput
	if err := readJSONFile(eventFile, &in); err != nil {
		return err
	}
	if err := api.ValidateEvent(in); err != nil {
		return err
	}

	cfg, err := loadRules(rulesFile)
	if err != nil {
		return err
	}

	if roleOrderPay && len(in.SlotOverrides) > 0 {
		plan := staffing.Resolve(staffing.RequestFor(in), cfg)
		converted := labor.OverridesFromRoleOrder(plan, in.SlotOverrides)
		if dropped := len(in.SlotOverrides) - len(converted); dropped > 0 {
			log.Warn("role-order overrides without a matching slot were dropped", zap.Int("dropped", dropped))
		}
		in.SlotOverrides = converted
	}

	eng := engine.New(engine.WithLogger(logging.Named("engine")))
	report := &output.Report{Metadata: output.Metadata{Version: version}}

	if menuFile != "" {
		var req engine.MenuRequest
		if err := readJSONFile(menuFile, &req); err != nil {
			return err
		}
		if req.SideItemIDs == ([4]string{}) {
			req.SideItemIDs = sideItemIDs()
		}
		fin, priced := eng.CalculateWithMenu(in, cfg, req)
		report.Financials = fin
		report.Menu = &priced
	} else {
		report.Financials = eng.Calculate(in, cfg)
	}

	hash, err := storage.HashRules(cfg)
	if err != nil {
		return err
	}
	report.Metadata.RulesHash = hash

	if saveResult {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		name := rulesFile
		if name == "" {
			name = config.Get().Rules.Path
		}
		if name == "" {
			name = "built-in"
		}
		snap, err := store.SaveSnapshot(ctx, name, cfg)
		if err != nil {
			return fmt.Errorf("failed to save rules snapshot: %w", err)
		}
		rec := &storage.Record{SnapshotID: snap.ID, Input: in, Result: report.Financials}
		if err := store.SaveRecord(ctx, rec); err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		report.Metadata.SnapshotID = snap.ID
		report.Metadata.RecordID = rec.ID
		log.Info("saved result", zap.String("snapshot", snap.ID), zap.String("record", rec.ID))
	}

	return render(cmd, report)
}

func render(cmd *cobra.Command, report *output.Report) error {
	format := outputFormat
	if format == "" {
		format = config.Get().Output.DefaultFormat
	}
	f, err := output.NewRegistry(noColor).Get(output.Format(format))
	if err != nil {
		return err
	}
	return f.Render(cmd.OutOrStdout(), report)
}
