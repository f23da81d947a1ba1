package segment

import (
	"strconv"
	"strings"
	"time"
)

// Evaluator matches rule trees against contact records. It is pure CPU work
// with no shared mutable state: one evaluator may be used concurrently
// across records.
//
// The evaluator never fails on malformed input. Unknown fields, operators
// invalid for a type, unparseable numbers and dates, and missing record
// values all degrade to a conservative boolean instead of aborting the
// audience computation, because a contact list can carry heterogeneous
// legacy data and one bad record must not fail the whole campaign.
type Evaluator struct {
	catalog *Catalog
	now     func() time.Time
}

// NewEvaluator creates an evaluator over the given field catalogue.
func NewEvaluator(cat *Catalog) *Evaluator {
	return &Evaluator{catalog: cat, now: time.Now}
}

// WithClock returns a copy using the given clock for relative-date operators.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	return &Evaluator{catalog: e.catalog, now: now}
}

// Evaluate computes the boolean match of a rule group against one record.
//
// AND requires every child (conditions and sub-groups alike) to match and is
// vacuously true for an empty group; OR requires at least one match and is
// vacuously false. The asymmetry follows standard boolean identity and
// governs what an accidentally emptied group matches.
func (e *Evaluator) Evaluate(g RuleGroup, rec Record) bool {
	if g.Operator == GroupOr {
		for _, c := range g.Conditions {
			if e.EvaluateCondition(c, rec) {
				return true
			}
		}
		for _, sub := range g.Groups {
			if e.Evaluate(sub, rec) {
				return true
			}
		}
		return false
	}

	// AND is the default for any unknown combinator.
	for _, c := range g.Conditions {
		if !e.EvaluateCondition(c, rec) {
			return false
		}
	}
	for _, sub := range g.Groups {
		if !e.Evaluate(sub, rec) {
			return false
		}
	}
	return true
}

// Filter returns the subset of records matching the rule group.
func (e *Evaluator) Filter(g RuleGroup, recs []Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if e.Evaluate(g, rec) {
			out = append(out, rec)
		}
	}
	return out
}

// EvaluateCondition computes one leaf test against a record.
func (e *Evaluator) EvaluateCondition(c Condition, rec Record) bool {
	fieldType := e.catalog.FieldType(c.Field)
	raw := rec[c.Field]

	switch c.Operator {
	case OpEquals:
		return e.equals(fieldType, raw, c.Value)
	case OpNotEquals:
		return !e.equals(fieldType, raw, c.Value)
	case OpContains:
		return contains(raw, c.Value)
	case OpNotContains:
		return !contains(raw, c.Value)
	case OpGreaterThan:
		return ordered(fieldType, raw, c.Value, func(cmp int) bool { return cmp > 0 })
	case OpLessThan:
		return ordered(fieldType, raw, c.Value, func(cmp int) bool { return cmp < 0 })
	case OpBetween:
		return between(fieldType, raw, c.Value, c.Value2)
	case OpIn:
		return member(raw, c.Value)
	case OpNotIn:
		return !member(raw, c.Value)
	case OpIsEmpty:
		return isEmpty(raw)
	case OpIsNotEmpty:
		return !isEmpty(raw)
	case OpInLastDays:
		within, ok := e.withinLastDays(raw, c.Value)
		return ok && within
	case OpNotInLastDays:
		// Unparseable dates match neither polarity.
		within, ok := e.withinLastDays(raw, c.Value)
		return ok && !within
	default:
		// Closed grammar; defend against unknown operators anyway.
		return false
	}
}

// equals applies type-directed value equality: exact numeric compare for
// numbers, calendar-day compare for dates, case-sensitive string compare
// otherwise.
func (e *Evaluator) equals(t FieldType, raw any, operand Value) bool {
	switch t {
	case TypeNumber:
		rv, ok1 := asNumber(raw)
		ov, ok2 := operandNumber(operand)
		return ok1 && ok2 && rv == ov
	case TypeDate:
		rv, ok1 := asTime(raw)
		ov, ok2 := asTime(operand.Str)
		if !ok1 || !ok2 {
			return false
		}
		return rv.Format("2006-01-02") == ov.Format("2006-01-02")
	default:
		return asString(raw) == operandString(operand)
	}
}

// contains is a case-insensitive substring test for strings and an exact
// element-membership test for arrays (tags).
func contains(raw any, operand Value) bool {
	needle := operandString(operand)
	if list, ok := asList(raw); ok {
		for _, item := range list {
			if item == needle {
				return true
			}
		}
		return false
	}
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(asString(raw)), strings.ToLower(needle))
}

// ordered compares a record value against the operand as dates or numbers,
// depending on the declared type. Non-coercible values evaluate to false.
func ordered(t FieldType, raw any, operand Value, match func(cmp int) bool) bool {
	if t == TypeDate {
		rv, ok1 := asTime(raw)
		ov, ok2 := asTime(operand.Str)
		if !ok1 || !ok2 {
			return false
		}
		return match(rv.Compare(ov))
	}
	rv, ok1 := asNumber(raw)
	ov, ok2 := operandNumber(operand)
	if !ok1 || !ok2 {
		return false
	}
	switch {
	case rv > ov:
		return match(1)
	case rv < ov:
		return match(-1)
	default:
		return match(0)
	}
}

// between tests lower ≤ value ≤ upper inclusive. A missing upper bound means
// unbounded above; a non-coercible lower bound evaluates to false.
func between(t FieldType, raw any, lower, upper Value) bool {
	if t == TypeDate {
		rv, ok := asTime(raw)
		if !ok {
			return false
		}
		lo, ok := asTime(lower.Str)
		if !ok {
			return false
		}
		if rv.Before(lo) {
			return false
		}
		if upper.IsZero() {
			return true
		}
		hi, ok := asTime(upper.Str)
		if !ok {
			return false
		}
		return !rv.After(hi)
	}

	rv, ok := asNumber(raw)
	if !ok {
		return false
	}
	lo, ok := operandNumber(lower)
	if !ok {
		return false
	}
	if rv < lo {
		return false
	}
	if upper.IsZero() {
		return true
	}
	hi, ok := operandNumber(upper)
	if !ok {
		return false
	}
	return rv <= hi
}

// member tests the record value's membership in the operand list, with
// string equality per element. Array record values match when any of their
// elements is a member.
func member(raw any, operand Value) bool {
	var set []string
	switch operand.Kind {
	case ValueList:
		set = operand.List
	case ValueString:
		// Tolerate a scalar operand as a single-element set.
		set = []string{operand.Str}
	default:
		return false
	}

	values, ok := asList(raw)
	if !ok {
		values = []string{asString(raw)}
	}
	for _, rv := range values {
		for _, sv := range set {
			if rv == sv {
				return true
			}
		}
	}
	return false
}

// isEmpty tests for nil, empty string, or empty array, ignoring operands.
func isEmpty(raw any) bool {
	switch t := raw.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case *time.Time:
		return t == nil || t.IsZero()
	case time.Time:
		return t.IsZero()
	default:
		return false
	}
}

// withinLastDays reports whether the record's date falls within N days before
// "now". The second result is false when the date or N cannot be parsed; the
// caller treats that as "does not match" for both polarities.
func (e *Evaluator) withinLastDays(raw any, operand Value) (within, ok bool) {
	n, ok := operandNumber(operand)
	if !ok || n < 0 {
		return false, false
	}
	t, ok := asTime(raw)
	if !ok {
		return false, false
	}
	now := e.now()
	elapsed := now.Sub(t)
	return elapsed >= 0 && elapsed <= time.Duration(n*24)*time.Hour, true
}

// --- Record value coercion ---

func asString(raw any) string {
	switch t := raw.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}

func asNumber(raw any) (float64, bool) {
	switch t := raw.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// asTime accepts time values and the date string layouts the console and the
// wire format produce.
func asTime(raw any) (time.Time, bool) {
	switch t := raw.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func asList(raw any) ([]string, bool) {
	switch t := raw.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, asString(item))
		}
		return out, true
	default:
		return nil, false
	}
}

// --- Operand coercion ---

func operandString(v Value) string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

func operandNumber(v Value) (float64, bool) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, true
	case ValueString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
