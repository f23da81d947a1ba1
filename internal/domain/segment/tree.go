package segment

import (
	"encoding/json"
	"fmt"
)

// GroupOperator combines the results of a group's direct children.
type GroupOperator string

const (
	GroupAnd GroupOperator = "AND"
	GroupOr  GroupOperator = "OR"
)

// Opposite flips AND and OR. New sub-groups default to the opposite of their
// parent to bias toward mixed-logic expressions like "(A AND B) OR (C AND D)".
func (op GroupOperator) Opposite() GroupOperator {
	if op == GroupAnd {
		return GroupOr
	}
	return GroupAnd
}

// Valid reports whether op is one of the two known combinators.
func (op GroupOperator) Valid() bool {
	return op == GroupAnd || op == GroupOr
}

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueString
	ValueNumber
	ValueList
)

// Value is a condition operand: a scalar string (also used for dates and
// select values), a number, or a list of strings for multi-select operators.
// It is a closed tagged union keyed by the field's declared type; the zero
// Value means "no operand".
//
// On the wire a Value is a plain JSON scalar or array of strings, so rule
// trees stay JSON-compatible (no wrapper objects) and round-trip losslessly.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	List []string
}

// StringValue wraps a scalar string (or date string, or select value).
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// NumberValue wraps a numeric operand.
func NumberValue(n float64) Value { return Value{Kind: ValueNumber, Num: n} }

// ListValue wraps a multi-select operand.
func ListValue(items ...string) Value { return Value{Kind: ValueList, List: items} }

// IsZero reports whether the value carries no operand. Used by the json
// omitzero option so absent operands serialize as absent keys.
func (v Value) IsZero() bool {
	return v.Kind == ValueNone
}

// MarshalJSON encodes the value as a plain JSON scalar or string array.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueList:
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a plain JSON scalar or string array.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Value{}
	case string:
		*v = StringValue(t)
	case float64:
		*v = NumberValue(t)
	case []any:
		list := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("condition value list must contain strings, got %T", item)
			}
			list = append(list, s)
		}
		*v = Value{Kind: ValueList, List: list}
	default:
		return fmt.Errorf("unsupported condition value type %T", raw)
	}
	return nil
}

// clone deep-copies the value (the list is the only shared state).
func (v Value) clone() Value {
	if v.Kind == ValueList && v.List != nil {
		list := make([]string, len(v.List))
		copy(list, v.List)
		v.List = list
	}
	return v
}

// Condition is a leaf test: field, operator, operand(s). The node id is
// opaque and stable across edits, so the editing surface can use it for
// diffing and animation keys.
//
// Invariant: Operator is always a member of the allowed set for the current
// field's type. ChangeConditionField enforces it on every field change.
type Condition struct {
	ID       string   `json:"id"`
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    Value    `json:"value,omitzero"`
	Value2   Value    `json:"value2,omitzero"`
}

// Clone returns a deep copy of the condition.
func (c Condition) Clone() Condition {
	c.Value = c.Value.clone()
	c.Value2 = c.Value2.clone()
	return c
}

// RuleGroup is a recursive node combining conditions and nested sub-groups
// with a single operator. Children are directly owned: no node is shared
// between trees, and there are no parent back-pointers.
type RuleGroup struct {
	ID         string        `json:"id"`
	Operator   GroupOperator `json:"operator"`
	Conditions []Condition   `json:"conditions"`
	Groups     []RuleGroup   `json:"groups"`
}

// Clone returns a deep copy of the group and all descendants,
// preserving every node id.
func (g RuleGroup) Clone() RuleGroup {
	out := RuleGroup{
		ID:         g.ID,
		Operator:   g.Operator,
		Conditions: make([]Condition, len(g.Conditions)),
		Groups:     make([]RuleGroup, len(g.Groups)),
	}
	for i, c := range g.Conditions {
		out.Conditions[i] = c.Clone()
	}
	for i, sub := range g.Groups {
		out.Groups[i] = sub.Clone()
	}
	return out
}

// IsVacuous reports whether the group has no children. A vacuous group
// evaluates to true under AND and false under OR (standard boolean identity).
func (g RuleGroup) IsVacuous() bool {
	return len(g.Conditions) == 0 && len(g.Groups) == 0
}

// Record is one contact's attribute map keyed by catalogue field key.
// Missing keys are treated as empty values of the field's declared type.
type Record map[string]any
