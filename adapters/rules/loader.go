// Package rules loads business-rule documents from HCL or JSON files.
//
// Both formats decode into the same rules.Configuration. HCL documents
// use one block per policy area:
//
//	pricing {
//	  base_price_per_guest = { "private-dinner" = 85, buffet = 55 }
//	  default_gratuity_percent = 20
//	}
//
//	staffing {
//	  category "buffet" {
//	    max_guests_per_chef = 25
//	    assistant_required  = true
//	  }
//	  profile "banquet" {
//	    category   = "any"
//	    min_guests = 120
//	    max_guests = 9999
//	    roles      = ["lead", "full", "full", "assistant"]
//	  }
//	}
package rules

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"catering-finance/core/rules"
	"catering-finance/internal/errors"
)

// Format is a rule document encoding
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return FormatHCL, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.Newf(errors.TypeNotSupported, "rule documents must be .hcl or .json: %s", path)
	}
}

// Load reads a rule document from disk
func Load(path string) (*rules.Configuration, error) {
	format, src, err := read(path)
	if err != nil {
		return nil, err
	}
	return Parse(src, path, format)
}

func read(path string) (Format, []byte, error) {
	format, err := FormatFor(path)
	if err != nil {
		return "", nil, err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, errors.NotFound("rule document", path)
		}
		return "", nil, errors.Config("failed to read rule document", err)
	}
	return format, src, nil
}

// LoadWithDefaults reads a rule document and overlays it onto the
// built-in defaults. Every value the document names replaces the default
// one, explicit zeros and false included. Map entries are replaced per
// key and lists are replaced whole. An empty path yields the defaults.
func LoadWithDefaults(path string) (*rules.Configuration, error) {
	if path == "" {
		return rules.Default(), nil
	}
	format, src, err := read(path)
	if err != nil {
		return nil, err
	}
	return parseOnto(rules.Default(), src, path, format)
}

// Parse decodes a rule document held in memory. filename is only used
// in diagnostics.
func Parse(src []byte, filename string, format Format) (*rules.Configuration, error) {
	return parseOnto(&rules.Configuration{}, src, filename, format)
}

// resetLists drops the base lists a document supplies, so a supplied
// list never reuses elements of the one it replaces.
func resetLists(base *rules.Configuration, src []byte) {
	var doc map[string]map[string]json.RawMessage
	if json.Unmarshal(src, &doc) != nil {
		return
	}
	if _, ok := doc["staffing"]["profiles"]; ok {
		base.Staffing.Profiles = nil
	}
	if _, ok := doc["profit_distribution"]["owners"]; ok {
		base.ProfitDistribution.Owners = nil
	}
}

func parseOnto(base *rules.Configuration, src []byte, filename string, format Format) (*rules.Configuration, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(base, src, filename)
	case FormatHCL:
		doc, err := hclToJSON(src, filename)
		if err != nil {
			return nil, err
		}
		return decodeJSON(base, doc, filename)
	default:
		return nil, errors.Newf(errors.TypeNotSupported, "unknown rule format %q", format)
	}
}

// decodeJSON decodes src onto base. Fields absent from src keep the
// value base holds.
func decodeJSON(base *rules.Configuration, src []byte, filename string) (*rules.Configuration, error) {
	resetLists(base, src)

	dec := json.NewDecoder(bytes.NewReader(src))
	dec.DisallowUnknownFields()

	if err := dec.Decode(base); err != nil {
		return nil, errors.Wrapf(errors.TypeParsing, err, "invalid rule document %s", filename)
	}
	return base, nil
}
