package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

const (
	keySchema   = "$schema"
	keyData     = "data"
	keyLayout   = "layout"
	keyID       = "id"
	keyType     = "type"
	keyChildren = "children"
)

// ExternalFormLayout is the persisted form of a layout. Top-level keys other
// than $schema and data are kept in CustomRootProperties.
type ExternalFormLayout struct {
	Schema               string
	Data                 *ExternalData
	CustomRootProperties map[string]any
}

// ExternalData is the "data" object of a persisted layout. Keys other than
// layout are kept in CustomDataProperties. A nil Layout encodes as null.
type ExternalData struct {
	Layout               []ExternalComponent
	CustomDataProperties map[string]any
}

// ExternalComponent is one entry of the flat layout list. Children holds the
// "children" key of any entry; only container types nest through it. nil
// means the key is absent.
type ExternalComponent struct {
	ID         string
	Type       string
	Children   []string
	Properties map[string]any
}

// ParseExternal decodes a persisted layout document. The literal "null"
// yields a nil layout.
func ParseExternal(data []byte) (*ExternalFormLayout, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var out ExternalFormLayout
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *ExternalFormLayout) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("layout: decode document: %w", err)
	}
	out := ExternalFormLayout{CustomRootProperties: map[string]any{}}
	for key, value := range raw {
		switch key {
		case keySchema:
			if err := json.Unmarshal(value, &out.Schema); err != nil {
				return fmt.Errorf("layout: decode $schema: %w", err)
			}
		case keyData:
			if isNull(value) {
				continue
			}
			var payload ExternalData
			if err := json.Unmarshal(value, &payload); err != nil {
				return err
			}
			out.Data = &payload
		default:
			var decoded any
			if err := json.Unmarshal(value, &decoded); err != nil {
				return fmt.Errorf("layout: decode %q: %w", key, err)
			}
			out.CustomRootProperties[key] = decoded
		}
	}
	*l = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l ExternalFormLayout) MarshalJSON() ([]byte, error) {
	fixed := []field{{keySchema, l.Schema}}
	if l.Data == nil {
		fixed = append(fixed, field{keyData, nil})
	} else {
		fixed = append(fixed, field{keyData, *l.Data})
	}
	return marshalObject(fixed, l.CustomRootProperties)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *ExternalData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("layout: decode data: %w", err)
	}
	out := ExternalData{CustomDataProperties: map[string]any{}}
	for key, value := range raw {
		if key == keyLayout {
			if isNull(value) {
				continue
			}
			var list []ExternalComponent
			if err := json.Unmarshal(value, &list); err != nil {
				return err
			}
			if list == nil {
				list = []ExternalComponent{}
			}
			out.Layout = list
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return fmt.Errorf("layout: decode data.%s: %w", key, err)
		}
		out.CustomDataProperties[key] = decoded
	}
	*d = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d ExternalData) MarshalJSON() ([]byte, error) {
	var list any
	if d.Layout != nil {
		list = d.Layout
	}
	return marshalObject([]field{{keyLayout, list}}, d.CustomDataProperties)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ExternalComponent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("layout: decode component: %w", err)
	}
	out := ExternalComponent{}
	props := map[string]any{}
	for key, value := range raw {
		switch key {
		case keyID:
			if err := json.Unmarshal(value, &out.ID); err != nil {
				return fmt.Errorf("layout: component id must be a string: %w", err)
			}
		case keyType:
			if err := json.Unmarshal(value, &out.Type); err != nil {
				return fmt.Errorf("layout: component %q type must be a string: %w", out.ID, err)
			}
		case keyChildren:
			children := []string{}
			if !isNull(value) {
				if err := json.Unmarshal(value, &children); err != nil {
					return fmt.Errorf("layout: component children must be a list of ids: %w", err)
				}
			}
			out.Children = children
		default:
			var decoded any
			if err := json.Unmarshal(value, &decoded); err != nil {
				return fmt.Errorf("layout: decode component property %q: %w", key, err)
			}
			props[key] = decoded
		}
	}
	if len(props) > 0 {
		out.Properties = props
	}
	*c = out
	return nil
}

// MarshalJSON implements json.Marshaler. Keys are written as id, type,
// children, then the remaining properties in lexical order.
func (c ExternalComponent) MarshalJSON() ([]byte, error) {
	fixed := []field{{keyID, c.ID}, {keyType, c.Type}}
	if c.Children != nil {
		fixed = append(fixed, field{keyChildren, c.Children})
	}
	return marshalObject(fixed, c.Properties)
}

type field struct {
	key   string
	value any
}

func marshalObject(fixed []field, extra map[string]any) ([]byte, error) {
	reserved := make(map[string]struct{}, len(fixed))
	for _, f := range fixed {
		reserved[f.key] = struct{}{}
	}
	extraKeys := make([]string, 0, len(extra))
	for key := range extra {
		if _, skip := reserved[key]; skip {
			continue
		}
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(idx int, key string, value any) error {
		if idx > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return err
		}
		encodedValue, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("layout: encode %q: %w", key, err)
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
		return nil
	}
	idx := 0
	for _, f := range fixed {
		if err := write(idx, f.key, f.value); err != nil {
			return nil, err
		}
		idx++
	}
	for _, key := range extraKeys {
		if err := write(idx, key, extra[key]); err != nil {
			return nil, err
		}
		idx++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
