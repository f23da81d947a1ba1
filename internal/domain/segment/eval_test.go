package segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRecord() Record {
	lastActivity := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	return Record{
		"email":            "alice@acme.io",
		"first_name":       "Alice",
		"last_name":        "Turner",
		"company":          "Acme",
		"country":          "us",
		"lifecycle_stage":  "customer",
		"tags":             []string{"vip", "newsletter"},
		"lifetime_value":   2450.0,
		"total_orders":     12,
		"last_activity_at": lastActivity,
		"created_at":       time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func cond(field string, op Operator, v Value) Condition {
	return Condition{ID: "c1", Field: field, Operator: op, Value: v}
}

func TestEvaluateCondition_Operators(t *testing.T) {
	eval := NewEvaluator(DefaultCatalog())
	rec := testRecord()

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		// string
		{"equals match", cond("email", OpEquals, StringValue("alice@acme.io")), true},
		{"equals case sensitive", cond("email", OpEquals, StringValue("ALICE@acme.io")), false},
		{"not_equals", cond("email", OpNotEquals, StringValue("bob@acme.io")), true},
		{"contains substring case insensitive", cond("company", OpContains, StringValue("AC")), true},
		{"contains no match", cond("company", OpContains, StringValue("globex")), false},
		{"contains empty needle never matches", cond("company", OpContains, StringValue("")), false},
		{"not_contains", cond("company", OpNotContains, StringValue("globex")), true},
		{"is_not_empty string", cond("company", OpIsNotEmpty, Value{}), true},

		// number
		{"number equals", cond("total_orders", OpEquals, NumberValue(12)), true},
		{"greater_than true", cond("total_orders", OpGreaterThan, NumberValue(10)), true},
		{"greater_than boundary excluded", cond("total_orders", OpGreaterThan, NumberValue(12)), false},
		{"less_than", cond("lifetime_value", OpLessThan, NumberValue(3000)), true},
		{"number operand as string coerces", cond("total_orders", OpGreaterThan, StringValue("10")), true},
		{"unparseable numeric operand is false", cond("total_orders", OpGreaterThan, StringValue("ten")), false},

		// between: inclusive on both ends, unbounded above when value2 absent
		{"between inclusive lower", Condition{ID: "c1", Field: "total_orders", Operator: OpBetween, Value: NumberValue(12), Value2: NumberValue(20)}, true},
		{"between inclusive upper", Condition{ID: "c1", Field: "total_orders", Operator: OpBetween, Value: NumberValue(1), Value2: NumberValue(12)}, true},
		{"between outside", Condition{ID: "c1", Field: "total_orders", Operator: OpBetween, Value: NumberValue(13), Value2: NumberValue(20)}, false},
		{"between unbounded above", Condition{ID: "c1", Field: "total_orders", Operator: OpBetween, Value: NumberValue(5)}, true},

		// select
		{"select equals", cond("country", OpEquals, StringValue("us")), true},
		{"select in", cond("country", OpIn, ListValue("de", "us")), true},
		{"select not_in", cond("country", OpNotIn, ListValue("de", "fr")), true},
		{"select in scalar operand tolerated", cond("country", OpIn, StringValue("us")), true},

		// array
		{"tags contains exact element", cond("tags", OpContains, StringValue("vip")), true},
		{"tags contains is not substring", cond("tags", OpContains, StringValue("vi")), false},
		{"tags in overlaps", cond("tags", OpIn, ListValue("beta", "newsletter")), true},
		{"tags not_in", cond("tags", OpNotIn, ListValue("beta")), true},

		// date
		{"date equals same calendar day", cond("last_activity_at", OpEquals, StringValue("2024-05-10")), true},
		{"date greater_than", cond("last_activity_at", OpGreaterThan, StringValue("2024-01-01")), true},
		{"date between", Condition{ID: "c1", Field: "last_activity_at", Operator: OpBetween, Value: StringValue("2024-05-01"), Value2: StringValue("2024-05-31")}, true},
		{"unparseable date operand is false", cond("last_activity_at", OpGreaterThan, StringValue("not-a-date")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval.EvaluateCondition(tt.cond, rec))
		})
	}
}

func TestEvaluateCondition_EmptyChecks(t *testing.T) {
	eval := NewEvaluator(DefaultCatalog())

	rec := Record{
		"company": "",
		"tags":    []string{},
	}

	assert.True(t, eval.EvaluateCondition(cond("company", OpIsEmpty, Value{}), rec))
	assert.True(t, eval.EvaluateCondition(cond("tags", OpIsEmpty, Value{}), rec))
	// Missing keys are empty values of the declared type.
	assert.True(t, eval.EvaluateCondition(cond("first_name", OpIsEmpty, Value{}), rec))
	assert.False(t, eval.EvaluateCondition(cond("company", OpIsNotEmpty, Value{}), rec))
}

func TestEvaluateCondition_InLastDays(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	eval := NewEvaluator(DefaultCatalog()).WithClock(func() time.Time { return now })

	recent := Record{"last_activity_at": now.AddDate(0, 0, -3)}
	stale := Record{"last_activity_at": now.AddDate(0, 0, -45)}
	future := Record{"last_activity_at": now.AddDate(0, 0, 2)}
	broken := Record{"last_activity_at": "garbage"}

	in7 := cond("last_activity_at", OpInLastDays, NumberValue(7))
	notIn7 := cond("last_activity_at", OpNotInLastDays, NumberValue(7))

	assert.True(t, eval.EvaluateCondition(in7, recent))
	assert.False(t, eval.EvaluateCondition(in7, stale))
	assert.True(t, eval.EvaluateCondition(notIn7, stale))

	// Future dates are not "in the last N days".
	assert.False(t, eval.EvaluateCondition(in7, future))

	// Unparseable dates match neither polarity.
	assert.False(t, eval.EvaluateCondition(in7, broken))
	assert.False(t, eval.EvaluateCondition(notIn7, broken))

	// Negative N never matches.
	assert.False(t, eval.EvaluateCondition(cond("last_activity_at", OpInLastDays, NumberValue(-1)), recent))
}

func TestEvaluateCondition_DefensiveDegradation(t *testing.T) {
	eval := NewEvaluator(DefaultCatalog())
	rec := testRecord()

	// Unknown field degrades to the string type: equals compares as string.
	unknown := cond("removed_field", OpEquals, StringValue(""))
	assert.True(t, eval.EvaluateCondition(unknown, rec), "missing value should equal empty string")

	// Unknown operator never matches.
	assert.False(t, eval.EvaluateCondition(cond("email", Operator("regex"), StringValue(".*")), rec))
}

func TestEvaluate_GroupLogic(t *testing.T) {
	eval := NewEvaluator(DefaultCatalog())
	rec := testRecord()

	match := cond("country", OpEquals, StringValue("us"))
	noMatch := cond("country", OpEquals, StringValue("de"))

	tests := []struct {
		name string
		g    RuleGroup
		want bool
	}{
		{"AND all match", RuleGroup{ID: "g", Operator: GroupAnd, Conditions: []Condition{match, match}}, true},
		{"AND one fails", RuleGroup{ID: "g", Operator: GroupAnd, Conditions: []Condition{match, noMatch}}, false},
		{"OR one matches", RuleGroup{ID: "g", Operator: GroupOr, Conditions: []Condition{noMatch, match}}, true},
		{"OR none match", RuleGroup{ID: "g", Operator: GroupOr, Conditions: []Condition{noMatch}}, false},
		{"empty AND is vacuously true", RuleGroup{ID: "g", Operator: GroupAnd}, true},
		{"empty OR is vacuously false", RuleGroup{ID: "g", Operator: GroupOr}, false},
		{
			name: "nested mixed logic",
			g: RuleGroup{
				ID: "root", Operator: GroupAnd,
				Conditions: []Condition{match},
				Groups: []RuleGroup{
					{ID: "sub", Operator: GroupOr, Conditions: []Condition{noMatch, cond("tags", OpContains, StringValue("vip"))}},
				},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eval.Evaluate(tt.g, rec))
		})
	}
}

func TestFilter(t *testing.T) {
	eval := NewEvaluator(DefaultCatalog())

	records := []Record{
		{"country": "us", "total_orders": 5},
		{"country": "de", "total_orders": 1},
		{"country": "us", "total_orders": 0},
	}

	g := RuleGroup{
		ID: "g", Operator: GroupAnd,
		Conditions: []Condition{cond("country", OpEquals, StringValue("us"))},
	}

	matched := eval.Filter(g, records)
	assert.Len(t, matched, 2)
}
