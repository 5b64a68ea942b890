package builder

import (
	"fmt"
	"strconv"
	"strings"
)

// WhereBuilder renders a list of conditions into a WHERE clause with
// numbered placeholders.
type WhereBuilder struct {
	conditions []Condition
	paramStart int
}

// NewWhereBuilder creates a WhereBuilder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return NewWhereBuilderWithStart(1)
}

// NewWhereBuilderWithStart creates a WhereBuilder whose first placeholder is
// $paramStart, for clauses that follow other parameters.
func NewWhereBuilderWithStart(paramStart int) *WhereBuilder {
	return &WhereBuilder{paramStart: paramStart}
}

// Add appends conditions.
func (w *WhereBuilder) Add(conditions ...Condition) *WhereBuilder {
	w.conditions = append(w.conditions, conditions...)
	return w
}

// Build returns "WHERE ..." and its arguments, or an empty string when there
// are no conditions.
func (w *WhereBuilder) Build() (string, []any, error) {
	if len(w.conditions) == 0 {
		return "", nil, nil
	}

	cw := &clauseWriter{next: w.paramStart}
	cw.b.WriteString("WHERE ")
	if err := cw.list(w.conditions); err != nil {
		return "", nil, err
	}
	return cw.b.String(), cw.args, nil
}

// clauseWriter accumulates SQL and arguments, numbering placeholders in
// the order values are bound.
type clauseWriter struct {
	b    strings.Builder
	args []any
	next int
}

func (cw *clauseWriter) bind(v any) string {
	cw.args = append(cw.args, v)
	ph := "$" + strconv.Itoa(cw.next)
	cw.next++
	return ph
}

func (cw *clauseWriter) list(conditions []Condition) error {
	for i, cond := range conditions {
		if i > 0 {
			logic := cond.Logic
			if logic == "" {
				logic = LogicAnd
			}
			cw.b.WriteString(" " + string(logic) + " ")
		}
		if cond.Not {
			cw.b.WriteString("NOT (")
		}
		if err := cw.one(cond); err != nil {
			return err
		}
		if cond.Not {
			cw.b.WriteString(")")
		}
	}
	return nil
}

func (cw *clauseWriter) one(cond Condition) error {
	if len(cond.Group) > 0 {
		cw.b.WriteString("(")
		if err := cw.list(cond.Group); err != nil {
			return err
		}
		cw.b.WriteString(")")
		return nil
	}

	switch cond.Operator {
	case OpEqual, OpNotEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual, OpLike:
		fmt.Fprintf(&cw.b, "%s %s %s", cond.Column, cond.Operator, cw.bind(cond.Value))
	case OpIn:
		values, ok := cond.Value.([]any)
		if !ok || len(values) == 0 {
			return fmt.Errorf("IN on %s needs at least one value", cond.Column)
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = cw.bind(v)
		}
		fmt.Fprintf(&cw.b, "%s IN (%s)", cond.Column, strings.Join(placeholders, ", "))
	case OpIsNull, OpIsNotNull:
		fmt.Fprintf(&cw.b, "%s %s", cond.Column, cond.Operator)
	default:
		return fmt.Errorf("unknown operator: %s", cond.Operator)
	}
	return nil
}

// Eq creates an equality condition.
func Eq(column string, value any) Condition {
	return Condition{Column: column, Operator: OpEqual, Value: value, Logic: LogicAnd}
}

// NotEq creates a not-equal condition.
func NotEq(column string, value any) Condition {
	return Condition{Column: column, Operator: OpNotEqual, Value: value, Logic: LogicAnd}
}

// Gt creates a greater-than condition.
func Gt(column string, value any) Condition {
	return Condition{Column: column, Operator: OpGreaterThan, Value: value, Logic: LogicAnd}
}

// Lt creates a less-than condition.
func Lt(column string, value any) Condition {
	return Condition{Column: column, Operator: OpLessThan, Value: value, Logic: LogicAnd}
}

// In creates an IN condition.
func In(column string, values ...any) Condition {
	return Condition{Column: column, Operator: OpIn, Value: values, Logic: LogicAnd}
}

// Like creates a LIKE condition.
func Like(column string, pattern string) Condition {
	return Condition{Column: column, Operator: OpLike, Value: pattern, Logic: LogicAnd}
}

// IsNull creates an IS NULL condition.
func IsNull(column string) Condition {
	return Condition{Column: column, Operator: OpIsNull, Logic: LogicAnd}
}

// Or sets the logic operator to OR.
func Or(cond Condition) Condition {
	cond.Logic = LogicOr
	return cond
}

// Not negates a condition.
func Not(cond Condition) Condition {
	cond.Not = true
	return cond
}

// Group creates a grouped condition.
func Group(conditions ...Condition) Condition {
	return Condition{Group: conditions, Logic: LogicAnd}
}
