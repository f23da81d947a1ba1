package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsecrm/internal/core/apperror"
)

func TestNewRuleTree(t *testing.T) {
	cat := DefaultCatalog()
	root := NewRuleTree(cat)

	assert.NotEmpty(t, root.ID)
	assert.Equal(t, GroupAnd, root.Operator)
	require.Len(t, root.Conditions, 1)
	assert.Empty(t, root.Groups)

	c := root.Conditions[0]
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "email", c.Field)
	assert.Equal(t, DefaultOperator(TypeString), c.Operator)
	assert.True(t, c.Value.IsZero())
}

func TestAddCondition(t *testing.T) {
	cat := DefaultCatalog()
	orig := NewRuleTree(cat)

	out := AddCondition(cat, orig)

	assert.Len(t, out.Conditions, 2)
	assert.Len(t, orig.Conditions, 1, "input must not be mutated")
	assert.Equal(t, orig.ID, out.ID)
	assert.Equal(t, orig.Conditions[0].ID, out.Conditions[0].ID)
	assert.NotEqual(t, out.Conditions[0].ID, out.Conditions[1].ID)
}

func TestAddSubGroup(t *testing.T) {
	cat := DefaultCatalog()
	orig := NewRuleTree(cat)

	out := AddSubGroup(cat, orig)

	require.Len(t, out.Groups, 1)
	assert.Empty(t, orig.Groups, "input must not be mutated")
	// New sub-group inverts the parent operator.
	assert.Equal(t, GroupOr, out.Groups[0].Operator)
	assert.Len(t, out.Groups[0].Conditions, 1)

	deeper := AddSubGroup(cat, out.Groups[0])
	assert.Equal(t, GroupAnd, deeper.Groups[0].Operator)
}

func TestRemoveCondition(t *testing.T) {
	cat := DefaultCatalog()
	g := AddCondition(cat, NewRuleTree(cat))
	keep := g.Conditions[1].ID

	out, err := RemoveCondition(g, 0)
	require.NoError(t, err)
	require.Len(t, out.Conditions, 1)
	assert.Equal(t, keep, out.Conditions[0].ID)
	assert.Len(t, g.Conditions, 2, "input must not be mutated")

	_, err = RemoveCondition(g, 2)
	assert.True(t, apperror.IsOutOfRange(err))
	_, err = RemoveCondition(g, -1)
	assert.True(t, apperror.IsOutOfRange(err))
}

func TestRemoveSubGroup(t *testing.T) {
	cat := DefaultCatalog()
	g := AddSubGroup(cat, NewRuleTree(cat))

	out, err := RemoveSubGroup(g, 0)
	require.NoError(t, err)
	assert.Empty(t, out.Groups)
	assert.Len(t, g.Groups, 1, "input must not be mutated")

	_, err = RemoveSubGroup(out, 0)
	assert.True(t, apperror.IsOutOfRange(err))
}

func TestUpdateCondition(t *testing.T) {
	cat := DefaultCatalog()
	g := NewRuleTree(cat)

	updated := g.Conditions[0]
	updated.Operator = OpContains
	updated.Value = StringValue("acme")

	out, err := UpdateCondition(g, 0, updated)
	require.NoError(t, err)
	assert.Equal(t, OpContains, out.Conditions[0].Operator)
	assert.Equal(t, StringValue("acme"), out.Conditions[0].Value)
	assert.True(t, g.Conditions[0].Value.IsZero(), "input must not be mutated")

	_, err = UpdateCondition(g, 1, updated)
	assert.True(t, apperror.IsOutOfRange(err))
}

func TestUpdateSubGroup(t *testing.T) {
	cat := DefaultCatalog()
	g := AddSubGroup(cat, NewRuleTree(cat))

	sub := ToggleOperator(g.Groups[0])
	out, err := UpdateSubGroup(g, 0, sub)
	require.NoError(t, err)
	assert.Equal(t, GroupAnd, out.Groups[0].Operator)
	assert.Equal(t, GroupOr, g.Groups[0].Operator, "input must not be mutated")

	_, err = UpdateSubGroup(g, 1, sub)
	assert.True(t, apperror.IsOutOfRange(err))
}

func TestToggleOperator(t *testing.T) {
	cat := DefaultCatalog()
	g := AddSubGroup(cat, NewRuleTree(cat))

	out := ToggleOperator(g)
	assert.Equal(t, GroupOr, out.Operator)
	assert.Equal(t, GroupAnd, g.Operator, "input must not be mutated")
	// Children keep their own operators.
	assert.Equal(t, g.Groups[0].Operator, out.Groups[0].Operator)

	assert.Equal(t, GroupAnd, ToggleOperator(out).Operator)
}

func TestChangeConditionField(t *testing.T) {
	cat := DefaultCatalog()

	c := Condition{
		ID:       "c1",
		Field:    "email",
		Operator: OpContains,
		Value:    StringValue("@acme.io"),
		Value2:   StringValue("leftover"),
	}

	out := ChangeConditionField(cat, c, "total_orders")

	assert.Equal(t, "c1", out.ID, "node identity survives the field switch")
	assert.Equal(t, "total_orders", out.Field)
	assert.Equal(t, DefaultOperator(TypeNumber), out.Operator)
	assert.True(t, out.Value.IsZero(), "stale operand must be cleared")
	assert.True(t, out.Value2.IsZero())
}

func TestCanRemoveGates(t *testing.T) {
	cat := DefaultCatalog()

	single := NewRuleTree(cat)
	assert.False(t, CanRemoveCondition(single), "last child is not removable")

	two := AddCondition(cat, single)
	assert.True(t, CanRemoveCondition(two))

	withSub := AddSubGroup(cat, single)
	assert.True(t, CanRemoveCondition(withSub), "a sub-group counts as a remaining child")
	assert.True(t, CanRemoveSubGroup(withSub))

	onlySub, err := RemoveCondition(withSub, 0)
	require.NoError(t, err)
	assert.False(t, CanRemoveSubGroup(onlySub), "last child is not removable")
}

func TestGroupAt(t *testing.T) {
	cat := DefaultCatalog()
	root := AddSubGroup(cat, NewRuleTree(cat))
	root.Groups[0] = AddSubGroup(cat, root.Groups[0])

	got, err := GroupAt(root, nil)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)

	got, err = GroupAt(root, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, root.Groups[0].Groups[0].ID, got.ID)

	_, err = GroupAt(root, []int{0, 1})
	assert.True(t, apperror.IsOutOfRange(err))
}

func TestReplaceGroupAt(t *testing.T) {
	cat := DefaultCatalog()
	root := AddSubGroup(cat, NewRuleTree(cat))
	root.Groups[0] = AddSubGroup(cat, root.Groups[0])

	target := root.Groups[0].Groups[0]
	edited := ToggleOperator(AddCondition(cat, target))

	out, err := ReplaceGroupAt(root, []int{0, 0}, edited)
	require.NoError(t, err)

	// Ancestors on the path keep their ids; the replacement took effect.
	assert.Equal(t, root.ID, out.ID)
	assert.Equal(t, root.Groups[0].ID, out.Groups[0].ID)
	assert.Equal(t, target.ID, out.Groups[0].Groups[0].ID)
	assert.Len(t, out.Groups[0].Groups[0].Conditions, 2)
	assert.NotEqual(t, target.Operator, out.Groups[0].Groups[0].Operator)

	// The original tree is untouched.
	assert.Len(t, root.Groups[0].Groups[0].Conditions, 1)

	_, err = ReplaceGroupAt(root, []int{3}, edited)
	assert.True(t, apperror.IsOutOfRange(err))

	// Empty path replaces the root itself.
	out, err = ReplaceGroupAt(root, nil, edited)
	require.NoError(t, err)
	assert.Equal(t, edited.ID, out.ID)
}
