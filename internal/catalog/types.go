package catalog

import (
	"encoding/json"
	"fmt"
)

// Product is one sellable item as the catalog service reports it.
type Product struct {
	SKU    string `json:"sku"`
	Titulo string `json:"titulo"`
}

// CategoryNode is one node of the store's category tree. Children are in
// the catalog's display order, which downstream flattening preserves.
type CategoryNode struct {
	Slug     string         `json:"slug"`
	Name     string         `json:"name"`
	Children []CategoryNode `json:"children,omitempty"`
}

// AttributeMap holds the technical attributes per product:
// sku -> attribute key -> value(s).
type AttributeMap map[string]map[string]AttributeValue

// AttributeValue is one attribute payload. The catalog serializes scalar
// attributes as a plain JSON string and multi-valued ones as an array, and
// legacy records occasionally carry numbers, so all of them decode into a
// flat list of strings.
type AttributeValue struct {
	values []string
}

// NewAttributeValue builds a value from literal strings (used by tests and
// the mock service).
func NewAttributeValue(values ...string) AttributeValue {
	return AttributeValue{values: values}
}

// Values returns the decoded strings. Never nil-panics; an absent attribute
// yields an empty slice.
func (v AttributeValue) Values() []string {
	return v.values
}

func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		v.values = []string{val}
	case []any:
		v.values = make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				v.values = append(v.values, s)
			} else {
				v.values = append(v.values, fmt.Sprint(item))
			}
		}
	case nil:
		v.values = nil
	default:
		v.values = []string{fmt.Sprint(val)}
	}
	return nil
}

func (v AttributeValue) MarshalJSON() ([]byte, error) {
	if len(v.values) == 1 {
		return json.Marshal(v.values[0])
	}
	return json.Marshal(v.values)
}

// CategoryAssignment is one sku -> category pair submitted back to the
// catalog when a suggestion is applied.
type CategoryAssignment struct {
	SKU      string `json:"sku"`
	Category string `json:"category"`
}

// BatchAck is the catalog's acknowledgment for one submitted batch: how
// many assignments it persisted plus any per-item error messages.
type BatchAck struct {
	Applied int      `json:"applied"`
	Errors  []string `json:"errors"`
}
