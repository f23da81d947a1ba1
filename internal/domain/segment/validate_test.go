package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTree(t *testing.T) {
	cat := DefaultCatalog()

	valid := func() RuleGroup {
		return RuleGroup{
			ID:       "root",
			Operator: GroupAnd,
			Conditions: []Condition{
				{ID: "c1", Field: "email", Operator: OpContains, Value: StringValue("@acme.io")},
			},
			Groups: []RuleGroup{
				{
					ID:       "sub",
					Operator: GroupOr,
					Conditions: []Condition{
						{ID: "c2", Field: "total_orders", Operator: OpBetween, Value: NumberValue(1), Value2: NumberValue(10)},
					},
				},
			},
		}
	}

	t.Run("valid tree", func(t *testing.T) {
		assert.NoError(t, ValidateTree(cat, valid()))
	})

	t.Run("fresh tree is valid", func(t *testing.T) {
		assert.NoError(t, ValidateTree(cat, NewRuleTree(cat)))
	})

	t.Run("missing group id", func(t *testing.T) {
		g := valid()
		g.Groups[0].ID = ""
		err := ValidateTree(cat, g)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing an id")
	})

	t.Run("unknown group operator", func(t *testing.T) {
		g := valid()
		g.Groups[0].Operator = "XOR"
		err := ValidateTree(cat, g)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown group operator")
	})

	t.Run("missing condition id", func(t *testing.T) {
		g := valid()
		g.Conditions[0].ID = ""
		assert.Error(t, ValidateTree(cat, g))
	})

	t.Run("missing condition field", func(t *testing.T) {
		g := valid()
		g.Conditions[0].Field = ""
		assert.Error(t, ValidateTree(cat, g))
	})

	t.Run("operator not allowed for field type", func(t *testing.T) {
		g := valid()
		// greater_than has no meaning for a plain string field.
		g.Conditions[0] = Condition{ID: "c1", Field: "email", Operator: OpGreaterThan, Value: StringValue("x")}
		err := ValidateTree(cat, g)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not allowed")
	})

	t.Run("unknown field uses the string operator set", func(t *testing.T) {
		g := valid()
		g.Conditions[0] = Condition{ID: "c1", Field: "legacy_field", Operator: OpContains, Value: StringValue("x")}
		assert.NoError(t, ValidateTree(cat, g))

		g.Conditions[0].Operator = OpGreaterThan
		assert.Error(t, ValidateTree(cat, g))
	})

	t.Run("between requires a lower bound", func(t *testing.T) {
		g := valid()
		g.Groups[0].Conditions[0].Value = Value{}
		err := ValidateTree(cat, g)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lower bound")

		// A missing upper bound is fine: between is unbounded above.
		g = valid()
		g.Groups[0].Conditions[0].Value2 = Value{}
		assert.NoError(t, ValidateTree(cat, g))
	})

	t.Run("invalid nested group surfaces", func(t *testing.T) {
		g := valid()
		g.Groups[0].Conditions[0].ID = ""
		assert.Error(t, ValidateTree(cat, g))
	})
}

func TestOperatorsForType(t *testing.T) {
	tests := []struct {
		fieldType FieldType
		first     Operator
		contains  Operator
		excludes  Operator
	}{
		{TypeString, OpEquals, OpContains, OpGreaterThan},
		{TypeNumber, OpEquals, OpBetween, OpContains},
		{TypeDate, OpEquals, OpInLastDays, OpContains},
		{TypeSelect, OpEquals, OpIn, OpContains},
		{TypeArray, OpContains, OpNotIn, OpGreaterThan},
	}

	for _, tt := range tests {
		t.Run(string(tt.fieldType), func(t *testing.T) {
			ops := OperatorsForType(tt.fieldType)
			require.NotEmpty(t, ops)
			assert.Equal(t, tt.first, ops[0])
			assert.Equal(t, tt.first, DefaultOperator(tt.fieldType))
			assert.Contains(t, ops, tt.contains)
			assert.NotContains(t, ops, tt.excludes)
		})
	}

	// Unknown types degrade to the string set.
	assert.Equal(t, OperatorsForType(TypeString), OperatorsForType(FieldType("geo")))
}

func TestRequiresValue(t *testing.T) {
	assert.False(t, RequiresValue(OpIsEmpty))
	assert.False(t, RequiresValue(OpIsNotEmpty))
	assert.True(t, RequiresValue(OpEquals))
	assert.True(t, RequiresValue(OpBetween))

	assert.True(t, RequiresSecondValue(OpBetween))
	assert.False(t, RequiresSecondValue(OpEquals))
}
