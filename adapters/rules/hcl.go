package rules

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"catering-finance/internal/errors"
)

// sections are the top-level blocks of a rule document
var sections = map[string]bool{
	"pricing":             true,
	"staffing":            true,
	"labor":               true,
	"costs":               true,
	"distance":            true,
	"profit_distribution": true,
	"safety_limits":       true,
}

// labeled describes a block that takes one label, such as role "lead"
type labeled struct {
	parent string
	key    string
	list   bool
}

var labeledBlocks = map[string]labeled{
	"category": {parent: "staffing", key: "categories"},
	"profile":  {parent: "staffing", key: "profiles", list: true},
	"role":     {parent: "labor", key: "roles"},
	"owner":    {parent: "profit_distribution", key: "owners", list: true},
}

// hclToJSON rewrites an HCL rule document as the equivalent JSON
// document. Numbers are carried as JSON numerals so no precision is lost
// on the way to decimal.
func hclToJSON(src []byte, filename string) ([]byte, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.Newf(errors.TypeParsing, "%s: unexpected HCL body", filename)
	}

	if attrs := sortedAttributes(body); len(attrs) > 0 {
		return nil, errors.Newf(errors.TypeParsing, "%s:%d: unexpected top-level attribute %q",
			filename, attrs[0].SrcRange.Start.Line, attrs[0].Name)
	}

	doc := make(map[string]any)
	for _, block := range body.Blocks {
		if !sections[block.Type] {
			return nil, blockError(filename, block, "unknown section %q", block.Type)
		}
		if len(block.Labels) != 0 {
			return nil, blockError(filename, block, "section %q takes no labels", block.Type)
		}
		if _, dup := doc[block.Type]; dup {
			return nil, blockError(filename, block, "section %q is declared twice", block.Type)
		}
		section, err := convertSection(block, filename)
		if err != nil {
			return nil, err
		}
		doc[block.Type] = section
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Internal("failed to encode rule document", err)
	}
	return out, nil
}

func convertSection(block *hclsyntax.Block, filename string) (map[string]any, error) {
	out, err := convertAttributes(block.Body, filename)
	if err != nil {
		return nil, err
	}

	for _, nested := range block.Body.Blocks {
		spec, ok := labeledBlocks[nested.Type]
		if !ok || spec.parent != block.Type {
			return nil, blockError(filename, nested, "unknown block %q in section %q", nested.Type, block.Type)
		}
		if len(nested.Labels) != 1 {
			return nil, blockError(filename, nested, "block %q takes exactly one label", nested.Type)
		}
		if len(nested.Body.Blocks) > 0 {
			return nil, blockError(filename, nested.Body.Blocks[0], "block %q cannot nest blocks", nested.Type)
		}

		fields, err := convertAttributes(nested.Body, filename)
		if err != nil {
			return nil, err
		}
		label := nested.Labels[0]
		if _, isAttr := out[spec.key].(json.RawMessage); isAttr {
			return nil, blockError(filename, nested, "%s is set as an attribute and as %s blocks", spec.key, nested.Type)
		}

		if spec.list {
			fields["id"] = label
			items, _ := out[spec.key].([]any)
			out[spec.key] = append(items, fields)
			continue
		}

		entries, _ := out[spec.key].(map[string]any)
		if entries == nil {
			entries = make(map[string]any)
			out[spec.key] = entries
		}
		if _, dup := entries[label]; dup {
			return nil, blockError(filename, nested, "%s %q is declared twice", nested.Type, label)
		}
		entries[label] = fields
	}

	return out, nil
}

// convertAttributes evaluates every attribute as a constant expression
func convertAttributes(body *hclsyntax.Body, filename string) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes))
	for _, attr := range sortedAttributes(body) {
		name := attr.Name
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diagError(diags)
		}
		if !val.IsWhollyKnown() {
			return nil, errors.Newf(errors.TypeParsing, "%s:%d: %s must be a constant",
				filename, attr.SrcRange.Start.Line, name)
		}
		raw, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "%s:%d: %s", filename, attr.SrcRange.Start.Line, name)
		}
		out[name] = json.RawMessage(raw)
	}
	return out, nil
}

// sortedAttributes lists a body's attributes in source order
func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}

func blockError(filename string, block *hclsyntax.Block, format string, args ...any) error {
	return errors.Newf(errors.TypeParsing, "%s:%d: %s", filename, block.TypeRange.Start.Line, fmt.Sprintf(format, args...))
}

func diagError(diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		line := 0
		file := ""
		if d.Subject != nil {
			line = d.Subject.Start.Line
			file = d.Subject.Filename
		}
		return errors.Newf(errors.TypeParsing, "%s:%d: %s: %s", file, line, d.Summary, d.Detail)
	}
	return errors.New(errors.TypeParsing, diags.Error())
}
