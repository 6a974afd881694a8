// Package cmd - rules diff command
package cmd

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"catering-finance/api"
	"catering-finance/core/diff"
	"catering-finance/core/engine"
	"catering-finance/core/output"
	"catering-finance/core/types"
	"catering-finance/internal/errors"
	"catering-finance/internal/logging"
)

var (
	diffEvent     string
	diffFormat    string
	diffTolerance string
)

var rulesDiffCmd = &cobra.Command{
	Use:   "diff <before> <after>",
	Short: "Show how one event's financials change between two rule documents",
	Long: `Compute the event under both rule documents and print every amount,
slot and owner distribution that moved.

Examples:
  catering-finance rules diff current.hcl proposed.hcl --event event.json
  catering-finance rules diff current.hcl proposed.hcl --event event.json --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runRulesDiff,
}

func init() {
	rulesDiffCmd.Flags().StringVarP(&diffEvent, "event", "e", "", "event JSON file (- for stdin)")
	rulesDiffCmd.Flags().StringVarP(&diffFormat, "format", "f", "cli", "output format (cli, json)")
	rulesDiffCmd.Flags().StringVar(&diffTolerance, "tolerance", "0", "amount below which a change is ignored")
	rulesDiffCmd.MarkFlagRequired("event")
	rulesCmd.AddCommand(rulesDiffCmd)
}

func runRulesDiff(cmd *cobra.Command, args []string) error {
	switch output.Format(diffFormat) {
	case output.FormatCLI, output.FormatJSON:
	default:
		return errors.Newf(errors.TypeNotSupported, "unsupported diff format %q (use cli or json)", diffFormat)
	}

	var in types.EventInput
	if err := readJSONFile(diffEvent, &in); err != nil {
		return err
	}
	if err := api.ValidateEvent(in); err != nil {
		return err
	}
	tolerance, err := decimal.NewFromString(diffTolerance)
	if err != nil {
		return err
	}

	beforeCfg, err := loadRules(args[0])
	if err != nil {
		return err
	}
	afterCfg, err := loadRules(args[1])
	if err != nil {
		return err
	}

	eng := engine.New(engine.WithLogger(logging.Named("engine")))
	before := eng.Calculate(in, beforeCfg)
	after := eng.Calculate(in, afterCfg)
	result := diff.NewDiffer(tolerance).Diff(before, after)

	if output.Format(diffFormat) == output.FormatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	w := newWriter(cmd)
	w.Header("Rule comparison")
	w.Debug("before: %s", args[0])
	w.Debug("after:  %s", args[1])
	w.Print("%s", result.Summary())

	if len(result.Lines) > 0 {
		w.SubHeader("Amounts")
		table := w.NewTable("Line", "Before", "After", "Delta").AlignRight(1, 2, 3)
		for _, l := range result.Lines {
			table.AddRow(l.Name, l.Before.StringFixed(2), l.After.StringFixed(2), l.Delta.StringFixed(2))
		}
		table.Render()
	}

	w.SubHeader("Labor")
	slots := w.NewTable("Slot", "Change", "Before", "After").AlignRight(2, 3)
	for _, s := range result.Slots {
		slots.AddRow(s.SlotID, s.ChangeType.String(), s.Before.StringFixed(2), s.After.StringFixed(2))
	}
	slots.Render()

	if len(result.Owners) > 0 {
		w.SubHeader("Owners")
		owners := w.NewTable("Owner", "Change", "Before", "After").AlignRight(2, 3)
		for _, o := range result.Owners {
			owners.AddRow(o.Owner, o.ChangeType.String(), o.Before.StringFixed(2), o.After.StringFixed(2))
		}
		owners.Render()
	}

	for _, warning := range result.WarningsAdded {
		w.Warning("new: %s", warning)
	}
	for _, warning := range result.WarningsRemoved {
		w.Info("resolved: %s", warning)
	}
	return nil
}
