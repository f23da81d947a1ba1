package segment

// Operator is a named comparison applicable to a condition. The set is
// closed: the grammar is not user-extensible at runtime.
type Operator string

const (
	OpEquals        Operator = "equals"
	OpNotEquals     Operator = "not_equals"
	OpContains      Operator = "contains"
	OpNotContains   Operator = "not_contains"
	OpGreaterThan   Operator = "greater_than"
	OpLessThan      Operator = "less_than"
	OpBetween       Operator = "between"
	OpIn            Operator = "in"
	OpNotIn         Operator = "not_in"
	OpIsEmpty       Operator = "is_empty"
	OpIsNotEmpty    Operator = "is_not_empty"
	OpInLastDays    Operator = "in_last_days"
	OpNotInLastDays Operator = "not_in_last_days"
)

// operatorsByType maps each field type to its allowed operators.
// Order is significant and stable: the first operator is the default
// assigned when a condition's field changes to that type.
var operatorsByType = map[FieldType][]Operator{
	TypeString: {
		OpEquals, OpNotEquals, OpContains, OpNotContains,
		OpIsEmpty, OpIsNotEmpty,
	},
	TypeNumber: {
		OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpBetween,
		OpIsEmpty, OpIsNotEmpty,
	},
	TypeDate: {
		OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpBetween,
		OpInLastDays, OpNotInLastDays, OpIsEmpty, OpIsNotEmpty,
	},
	TypeSelect: {
		OpEquals, OpNotEquals, OpIn, OpNotIn,
		OpIsEmpty, OpIsNotEmpty,
	},
	TypeArray: {
		OpContains, OpNotContains, OpIn, OpNotIn,
		OpIsEmpty, OpIsNotEmpty,
	},
}

// noValueOperators take no operand: they test presence only.
var noValueOperators = map[Operator]bool{
	OpIsEmpty:    true,
	OpIsNotEmpty: true,
}

// OperatorsForType returns the ordered operator set allowed for a field type.
// Unknown types degrade to the string operator set.
func OperatorsForType(t FieldType) []Operator {
	ops, ok := operatorsByType[t]
	if !ok {
		ops = operatorsByType[TypeString]
	}
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// DefaultOperator returns the first operator valid for a field type,
// used as the default when a condition's field changes.
func DefaultOperator(t FieldType) Operator {
	ops, ok := operatorsByType[t]
	if !ok {
		ops = operatorsByType[TypeString]
	}
	return ops[0]
}

// OperatorValidForType reports whether op belongs to the allowed set of t.
func OperatorValidForType(op Operator, t FieldType) bool {
	ops, ok := operatorsByType[t]
	if !ok {
		ops = operatorsByType[TypeString]
	}
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// RequiresValue reports whether op takes an operand.
func RequiresValue(op Operator) bool {
	return !noValueOperators[op]
}

// RequiresSecondValue reports whether op takes an upper bound (between only).
func RequiresSecondValue(op Operator) bool {
	return op == OpBetween
}
