// Package output provides output formatting interfaces.
// This package produces human and machine-readable outputs.
package output

import (
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"catering-finance/core/menu"
	"catering-finance/core/types"
	"catering-finance/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is everything rendered for one event
type Report struct {
	// Financials is the engine result
	Financials *types.EventFinancials `json:"financials"`

	// Menu is the per-guest breakdown when the event was menu-priced
	Menu *menu.Result `json:"menu,omitempty"`

	// Metadata identifies the rules the result was computed against
	Metadata Metadata `json:"metadata"`
}

// Metadata contains execution context
type Metadata struct {
	// SnapshotID is the stored rule snapshot, if the result was saved
	SnapshotID string `json:"snapshot_id,omitempty"`

	// RecordID is the stored financial record, if the result was saved
	RecordID string `json:"record_id,omitempty"`

	// RulesHash is the content hash of the rule document
	RulesHash string `json:"rules_hash,omitempty"`

	// Version is the tool version
	Version string `json:"version,omitempty"`
}

// Registry maps formats to formatters
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding the built-in formatters
func NewRegistry(noColor bool) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	r.Register(NewCLIFormatter(noColor))
	r.Register(NewJSONFormatter())
	r.Register(NewMarkdownFormatter())
	return r
}

// Register adds or replaces a formatter
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, error) {
	f, ok := r.formatters[format]
	if !ok {
		return nil, errors.Newf(errors.TypeNotSupported, "unknown output format %q (want one of %v)", format, r.Formats())
	}
	return f, nil
}

// Formats lists the registered formats in name order
func (r *Registry) Formats() []Format {
	formats := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// margin is gross profit as a percentage of total charged
func margin(f *types.EventFinancials) string {
	return f.Margin().StringFixed(1) + "%"
}

func money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + types.Cents(d.Neg())
	}
	return "$" + types.Cents(d)
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}
