// Package export renders architecture documents in alternative formats.
package export

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"cloudmap-backend/domain/architecture"
)

// HCL renders a graph document as an HCL file with one architecture block
// holding node and edge blocks in document order.
func HCL(id string, doc architecture.GraphDocument) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body().AppendNewBlock("architecture", []string{id})
	body := root.Body()

	if len(doc.Metadata) > 0 {
		meta, err := toCty(map[string]any(doc.Metadata))
		if err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
		body.SetAttributeValue("metadata", meta)
	}

	for _, n := range doc.Nodes {
		body.AppendNewline()
		nb := body.AppendNewBlock("node", []string{n.ID}).Body()
		if n.Type != "" {
			nb.SetAttributeValue("type", cty.StringVal(n.Type))
		}
		nb.SetAttributeValue("position", cty.ObjectVal(map[string]cty.Value{
			"x": cty.NumberFloatVal(n.Position.X),
			"y": cty.NumberFloatVal(n.Position.Y),
		}))
		if len(n.Data) > 0 {
			data, err := toCty(n.Data)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", n.ID, err)
			}
			nb.SetAttributeValue("data", data)
		}
	}

	for _, e := range doc.Edges {
		body.AppendNewline()
		eb := body.AppendNewBlock("edge", []string{e.ID}).Body()
		eb.SetAttributeValue("source", cty.StringVal(e.Source))
		eb.SetAttributeValue("target", cty.StringVal(e.Target))
		if e.Label != "" {
			eb.SetAttributeValue("label", cty.StringVal(e.Label))
		}
	}

	return f.Bytes(), nil
}

// toCty converts decoded JSON values into cty values
func toCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case float32:
		return cty.NumberFloatVal(float64(t)), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return toCty(items)
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, 0, len(t))
		for _, item := range t {
			cv, err := toCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			vals = append(vals, cv)
		}
		return cty.TupleVal(vals), nil
	case architecture.Metadata:
		return toCty(map[string]any(t))
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, nil
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		attrs := make(map[string]cty.Value, len(t))
		for _, k := range keys {
			cv, err := toCty(t[k])
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", v)
	}
}
