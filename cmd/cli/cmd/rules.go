// Package cmd - rules commands
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"catering-finance/adapters/storage"
)

var (
	snapshotName string
	listLimit    int
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect, validate and snapshot rule documents",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the effective rule document as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRules(firstArg(args))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Report consistency issues in a rule document",
	Long: `Report consistency issues such as owner equity or gratuity splits not
summing to 100. Issues are advisory: the engine computes with the document
as written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRules(firstArg(args))
		if err != nil {
			return err
		}
		w := newWriter(cmd)

		issues := cfg.Validate()
		if len(issues) == 0 {
			w.Success("rule document is consistent")
			return nil
		}
		for _, issue := range issues {
			w.Warning("%s", issue)
		}
		return fmt.Errorf("%d issues found", len(issues))
	},
}

var rulesSnapshotCmd = &cobra.Command{
	Use:   "snapshot [path]",
	Short: "Freeze a rule document in the snapshot store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := firstArg(args)
		cfg, err := loadRules(path)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		name := snapshotName
		if name == "" {
			name = path
		}
		if name == "" {
			name = "built-in"
		}
		snap, err := store.SaveSnapshot(context.Background(), name, cfg)
		if err != nil {
			return err
		}

		w := newWriter(cmd)
		w.Success("snapshot %s (%s)", snap.ID, snap.Hash[:12])
		return nil
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rule snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snapshots, err := store.ListSnapshots(context.Background(), &storage.ListFilter{Limit: listLimit})
		if err != nil {
			return err
		}

		w := newWriter(cmd)
		if len(snapshots) == 0 {
			w.Info("no snapshots stored")
			return nil
		}
		table := w.NewTable("ID", "Name", "Hash", "Created")
		for _, snap := range snapshots {
			table.AddRow(snap.ID, snap.Name, snap.Hash[:12], snap.CreatedAt.Local().Format(time.DateTime))
		}
		table.Render()
		return nil
	},
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func init() {
	rulesSnapshotCmd.Flags().StringVar(&snapshotName, "name", "", "snapshot name (default is the document path)")
	rulesListCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum number of snapshots to list")

	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rulesCmd.AddCommand(rulesSnapshotCmd)
	rulesCmd.AddCommand(rulesListCmd)
}
