package segment

import (
	"pulsecrm/internal/core/apperror"
	"pulsecrm/internal/core/id"
)

// Tree editing operations. All operations are pure: they never mutate their
// input and return a rebuilt group. The editing surface treats trees as
// immutable snapshots, so undo/redo and change detection stay correct.
//
// Operations are local to one group level. Replacing a descendant is the
// caller's responsibility via GroupAt/ReplaceGroupAt: ancestors on the path
// are rebuilt but keep their ids; only brand-new nodes get fresh ids.

// NewCondition creates a default condition: the first catalogue field, that
// field's first valid operator, and no operand.
func NewCondition(cat *Catalog) Condition {
	field, ok := cat.FirstField()
	if !ok {
		// Empty catalogue: still produce a structurally valid node.
		return Condition{ID: id.NewString(), Operator: DefaultOperator(TypeString)}
	}
	return Condition{
		ID:       id.NewString(),
		Field:    field.Key,
		Operator: DefaultOperator(field.Type),
	}
}

// NewGroup creates a group with the given operator and one default condition.
func NewGroup(cat *Catalog, op GroupOperator) RuleGroup {
	return RuleGroup{
		ID:         id.NewString(),
		Operator:   op,
		Conditions: []Condition{NewCondition(cat)},
		Groups:     []RuleGroup{},
	}
}

// NewRuleTree creates a fresh root group: AND with one default condition.
// The root is never removable.
func NewRuleTree(cat *Catalog) RuleGroup {
	return NewGroup(cat, GroupAnd)
}

// AddCondition appends a default condition to the group.
func AddCondition(cat *Catalog, g RuleGroup) RuleGroup {
	out := g.Clone()
	out.Conditions = append(out.Conditions, NewCondition(cat))
	return out
}

// AddSubGroup appends a sub-group whose operator is the opposite of the
// parent's, biasing new trees toward mixed-logic expressions.
func AddSubGroup(cat *Catalog, g RuleGroup) RuleGroup {
	out := g.Clone()
	out.Groups = append(out.Groups, NewGroup(cat, g.Operator.Opposite()))
	return out
}

// RemoveCondition removes the condition at index. An out-of-range index is a
// programming-contract violation and returns an error; use CanRemoveCondition
// to gate the UI so a group does not reach the fully-empty state.
func RemoveCondition(g RuleGroup, index int) (RuleGroup, error) {
	if index < 0 || index >= len(g.Conditions) {
		return g, apperror.NewOutOfRange("condition", index, len(g.Conditions))
	}
	out := g.Clone()
	out.Conditions = append(out.Conditions[:index], out.Conditions[index+1:]...)
	return out, nil
}

// RemoveSubGroup removes the sub-group at index.
func RemoveSubGroup(g RuleGroup, index int) (RuleGroup, error) {
	if index < 0 || index >= len(g.Groups) {
		return g, apperror.NewOutOfRange("group", index, len(g.Groups))
	}
	out := g.Clone()
	out.Groups = append(out.Groups[:index], out.Groups[index+1:]...)
	return out, nil
}

// UpdateCondition replaces the condition at index, preserving sibling order.
func UpdateCondition(g RuleGroup, index int, c Condition) (RuleGroup, error) {
	if index < 0 || index >= len(g.Conditions) {
		return g, apperror.NewOutOfRange("condition", index, len(g.Conditions))
	}
	out := g.Clone()
	out.Conditions[index] = c.Clone()
	return out, nil
}

// UpdateSubGroup replaces the sub-group at index, preserving sibling order.
func UpdateSubGroup(g RuleGroup, index int, sub RuleGroup) (RuleGroup, error) {
	if index < 0 || index >= len(g.Groups) {
		return g, apperror.NewOutOfRange("group", index, len(g.Groups))
	}
	out := g.Clone()
	out.Groups[index] = sub.Clone()
	return out, nil
}

// ToggleOperator flips AND and OR for this group only; children are
// unaffected.
func ToggleOperator(g RuleGroup) RuleGroup {
	out := g.Clone()
	out.Operator = g.Operator.Opposite()
	return out
}

// ChangeConditionField switches a condition to a new field. The operator is
// reset to the new field type's first valid operator and both operands are
// cleared, so stale operator/value pairs for the previous type never persist.
// The condition id is preserved.
func ChangeConditionField(cat *Catalog, c Condition, fieldKey string) Condition {
	return Condition{
		ID:       c.ID,
		Field:    fieldKey,
		Operator: DefaultOperator(cat.FieldType(fieldKey)),
	}
}

// CanRemoveCondition is the UI gate: a condition may be removed only while
// the group keeps at least one child afterwards.
func CanRemoveCondition(g RuleGroup) bool {
	return len(g.Conditions) > 1 || len(g.Groups) > 0
}

// CanRemoveSubGroup is the UI gate for sub-group removal.
func CanRemoveSubGroup(g RuleGroup) bool {
	return len(g.Groups) > 1 || len(g.Conditions) > 0
}

// GroupAt resolves the group addressed by an index path from root.
// An empty path addresses the root itself.
func GroupAt(root RuleGroup, path []int) (RuleGroup, error) {
	current := root
	for _, idx := range path {
		if idx < 0 || idx >= len(current.Groups) {
			return RuleGroup{}, apperror.NewOutOfRange("group", idx, len(current.Groups))
		}
		current = current.Groups[idx]
	}
	return current, nil
}

// ReplaceGroupAt rebuilds the tree with the group at path replaced. Every
// ancestor on the path is rebuilt with its existing id (structural sharing),
// so ids of unaffected siblings remain stable.
func ReplaceGroupAt(root RuleGroup, path []int, g RuleGroup) (RuleGroup, error) {
	if len(path) == 0 {
		return g.Clone(), nil
	}
	idx := path[0]
	if idx < 0 || idx >= len(root.Groups) {
		return root, apperror.NewOutOfRange("group", idx, len(root.Groups))
	}
	replaced, err := ReplaceGroupAt(root.Groups[idx], path[1:], g)
	if err != nil {
		return root, err
	}
	out := root.Clone()
	out.Groups[idx] = replaced
	return out, nil
}
