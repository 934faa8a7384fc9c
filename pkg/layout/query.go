package layout

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Query evaluates a JSONPath expression against the serialized form of the
// layout, e.g. `$.data.layout[?(@.type == 'Input')].id`.
func Query(external *ExternalFormLayout, selector string) ([]any, error) {
	expr, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("layout: invalid jsonpath %q: %w", selector, err)
	}
	payload, err := json.Marshal(external)
	if err != nil {
		return nil, fmt.Errorf("layout: encode for query: %w", err)
	}
	root, err := oj.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("layout: parse for query: %w", err)
	}
	return expr.Get(root), nil
}
