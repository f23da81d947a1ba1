package segment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"string", StringValue("customer"), `"customer"`},
		{"number", NumberValue(42.5), `42.5`},
		{"list", ListValue("us", "de"), `["us","de"]`},
		{"empty list", ListValue(), `[]`},
		{"none", Value{}, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Value
			require.NoError(t, json.Unmarshal(data, &back))
			if tt.in.Kind == ValueList {
				assert.ElementsMatch(t, tt.in.List, back.List)
			} else {
				assert.Equal(t, tt.in, back)
			}
		})
	}
}

func TestValueJSON_Errors(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &v), "list items must be strings")
	assert.Error(t, json.Unmarshal([]byte(`{"nested": true}`), &v))
}

func TestConditionJSON_OmitsAbsentOperands(t *testing.T) {
	c := Condition{ID: "c1", Field: "email", Operator: OpIsEmpty}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "value")
	assert.NotContains(t, m, "value2")
}

func TestRuleGroupJSON_RoundTrip(t *testing.T) {
	root := RuleGroup{
		ID:       "root",
		Operator: GroupAnd,
		Conditions: []Condition{
			{ID: "c1", Field: "country", Operator: OpIn, Value: ListValue("us", "ca")},
			{ID: "c2", Field: "total_orders", Operator: OpBetween, Value: NumberValue(1), Value2: NumberValue(10)},
		},
		Groups: []RuleGroup{
			{
				ID:       "sub",
				Operator: GroupOr,
				Conditions: []Condition{
					{ID: "c3", Field: "last_activity_at", Operator: OpInLastDays, Value: NumberValue(30)},
				},
				Groups: []RuleGroup{},
			},
		},
	}

	data, err := json.Marshal(root)
	require.NoError(t, err)

	var back RuleGroup
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, root, back)
}

func TestRuleGroupClone(t *testing.T) {
	root := RuleGroup{
		ID:       "root",
		Operator: GroupOr,
		Conditions: []Condition{
			{ID: "c1", Field: "tags", Operator: OpIn, Value: ListValue("vip")},
		},
		Groups: []RuleGroup{
			{
				ID:       "sub",
				Operator: GroupAnd,
				Conditions: []Condition{
					{ID: "c2", Field: "email", Operator: OpContains, Value: StringValue("@")},
				},
				Groups: []RuleGroup{},
			},
		},
	}

	cloned := root.Clone()
	assert.Equal(t, root, cloned)

	// Mutating the clone must not leak into the original.
	cloned.Conditions[0].Value.List[0] = "changed"
	cloned.Groups[0].Conditions[0].Value = StringValue("other")
	assert.Equal(t, "vip", root.Conditions[0].Value.List[0])
	assert.Equal(t, StringValue("@"), root.Groups[0].Conditions[0].Value)
}

func TestIsVacuous(t *testing.T) {
	assert.True(t, RuleGroup{ID: "g", Operator: GroupAnd}.IsVacuous())
	assert.False(t, RuleGroup{ID: "g", Operator: GroupAnd, Conditions: []Condition{{ID: "c"}}}.IsVacuous())
	assert.False(t, RuleGroup{ID: "g", Operator: GroupAnd, Groups: []RuleGroup{{ID: "s"}}}.IsVacuous())
}

func TestGroupOperatorOpposite(t *testing.T) {
	assert.Equal(t, GroupOr, GroupAnd.Opposite())
	assert.Equal(t, GroupAnd, GroupOr.Opposite())
	assert.Equal(t, GroupAnd, GroupOperator("bogus").Opposite())
}
