package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	rulesloader "catering-finance/adapters/rules"
	"catering-finance/adapters/storage"
	"catering-finance/core/menu"
	"catering-finance/core/rules"
	"catering-finance/core/ui"
	"catering-finance/internal/config"
	"catering-finance/internal/errors"
	"catering-finance/internal/logging"
)

// loadRules reads the rule document named by the flag, falling back to
// the configured path and then the built-in defaults
func loadRules(path string) (*rules.Configuration, error) {
	cfg := config.Get()
	if path == "" {
		path = cfg.Rules.Path
	}
	if path == "" {
		logging.Debug("using built-in rules")
		return rules.Default(), nil
	}

	logging.Debug("loading rules", zap.String("path", path), zap.Bool("merge_defaults", cfg.Rules.MergeDefaults))
	if cfg.Rules.MergeDefaults {
		return rulesloader.LoadWithDefaults(path)
	}
	return rulesloader.Load(path)
}

// openStore opens the configured snapshot database
func openStore() (storage.Store, error) {
	path := config.Get().Storage.Path
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Storage("create storage directory", err)
	}
	return storage.NewSQLiteStore(path)
}

// sideItemIDs returns the configured side ids, or the defaults when the
// configuration does not name exactly four
func sideItemIDs() [4]string {
	ids := config.Get().Menu.SideItemIDs
	if len(ids) != 4 {
		return menu.DefaultSideItemIDs
	}
	return [4]string{ids[0], ids[1], ids[2], ids[3]}
}

// readJSONFile decodes a JSON file; "-" reads standard input
func readJSONFile(path string, v interface{}) error {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.NotFound("file", path)
			}
			return errors.Input(fmt.Sprintf("open %s: %v", path, err))
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(errors.TypeInput, err, "invalid JSON in %s", path)
	}
	return nil
}

// newWriter returns a terminal writer honoring --no-color and --verbose
func newWriter(cmd *cobra.Command) *ui.Writer {
	w := ui.NewWriter(cmd.OutOrStdout(), noColor)
	if verbose {
		w.SetVerbosity(2)
	}
	return w
}
