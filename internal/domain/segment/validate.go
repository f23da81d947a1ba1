package segment

import (
	"fmt"

	"pulsecrm/internal/core/apperror"
)

// ValidateTree checks the structural invariants of a rule tree at the
// persistence boundary: every node carries an id, group operators are known,
// and each condition's operator is allowed for its field's type (unknown
// fields fall back to the string operator set).
//
// Evaluation itself never requires a valid tree; this guards what gets
// persisted as part of a segment definition.
func ValidateTree(cat *Catalog, g RuleGroup) error {
	return validateGroup(cat, g, "rules")
}

func validateGroup(cat *Catalog, g RuleGroup, path string) error {
	if g.ID == "" {
		return apperror.NewValidation("rule group is missing an id").
			WithDetail("path", path)
	}
	if !g.Operator.Valid() {
		return apperror.NewValidation("unknown group operator").
			WithDetail("path", path).
			WithDetail("operator", string(g.Operator))
	}
	for i, c := range g.Conditions {
		if err := validateCondition(cat, c, fmt.Sprintf("%s.conditions[%d]", path, i)); err != nil {
			return err
		}
	}
	for i, sub := range g.Groups {
		if err := validateGroup(cat, sub, fmt.Sprintf("%s.groups[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func validateCondition(cat *Catalog, c Condition, path string) error {
	if c.ID == "" {
		return apperror.NewValidation("rule condition is missing an id").
			WithDetail("path", path)
	}
	if c.Field == "" {
		return apperror.NewValidation("rule condition is missing a field").
			WithDetail("path", path)
	}
	if !OperatorValidForType(c.Operator, cat.FieldType(c.Field)) {
		return apperror.NewValidation("operator is not allowed for field type").
			WithDetail("path", path).
			WithDetail("field", c.Field).
			WithDetail("operator", string(c.Operator))
	}
	if RequiresSecondValue(c.Operator) && c.Value.IsZero() {
		return apperror.NewValidation("between requires a lower bound").
			WithDetail("path", path).
			WithDetail("field", c.Field)
	}
	return nil
}
