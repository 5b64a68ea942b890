package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereBuilder_Build(t *testing.T) {
	tests := []struct {
		name       string
		conditions []Condition
		wantSQL    string
		wantArgs   []any
	}{
		{
			name:    "empty conditions",
			wantSQL: "",
		},
		{
			name:       "single equality condition",
			conditions: []Condition{Eq("publisher.id", 1)},
			wantSQL:    "WHERE publisher.id = $1",
			wantArgs:   []any{1},
		},
		{
			name:       "multiple AND conditions",
			conditions: []Condition{Eq("book.id_publisher", 1), Eq("shop.name", "Downtown")},
			wantSQL:    "WHERE book.id_publisher = $1 AND shop.name = $2",
			wantArgs:   []any{1, "Downtown"},
		},
		{
			name:       "OR condition",
			conditions: []Condition{Eq("id", 1), Or(Eq("id", 2))},
			wantSQL:    "WHERE id = $1 OR id = $2",
			wantArgs:   []any{1, 2},
		},
		{
			name:       "IN condition",
			conditions: []Condition{In("name", "Acme", "Globex", "Initech")},
			wantSQL:    "WHERE name IN ($1, $2, $3)",
			wantArgs:   []any{"Acme", "Globex", "Initech"},
		},
		{
			name:       "IS NULL condition",
			conditions: []Condition{IsNull("title")},
			wantSQL:    "WHERE title IS NULL",
		},
		{
			name:       "LIKE condition",
			conditions: []Condition{Like("title", "%Go%")},
			wantSQL:    "WHERE title LIKE $1",
			wantArgs:   []any{"%Go%"},
		},
		{
			name:       "NOT condition",
			conditions: []Condition{Not(Eq("count", 0))},
			wantSQL:    "WHERE NOT (count = $1)",
			wantArgs:   []any{0},
		},
		{
			name:       "complex mixed conditions",
			conditions: []Condition{Gt("count", 0), Lt("price", 20.0), Or(Like("title", "%Go%"))},
			wantSQL:    "WHERE count > $1 AND price < $2 OR title LIKE $3",
			wantArgs:   []any{0, 20.0, "%Go%"},
		},
		{
			name: "IN after other parameters",
			conditions: []Condition{
				Eq("book.id_publisher", 7),
				In("shop.id", 1, 2),
			},
			wantSQL:  "WHERE book.id_publisher = $1 AND shop.id IN ($2, $3)",
			wantArgs: []any{7, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := NewWhereBuilder().Add(tt.conditions...).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestWhereBuilder_ParamStart(t *testing.T) {
	sql, args, err := NewWhereBuilderWithStart(3).Add(Eq("a", 1), Eq("b", 2)).Build()
	require.NoError(t, err)
	assert.Equal(t, "WHERE a = $3 AND b = $4", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestWhereBuilder_Errors(t *testing.T) {
	_, _, err := NewWhereBuilder().Add(In("id")).Build()
	assert.Error(t, err, "empty IN")

	_, _, err = NewWhereBuilder().Add(Condition{Column: "id", Operator: "~~~"}).Build()
	assert.Error(t, err, "unknown operator")

	_, _, err = NewWhereBuilder().Add(Group(Eq("a", 1), In("b"))).Build()
	assert.Error(t, err, "error inside a group")
}

func TestConditionHelpers(t *testing.T) {
	cond := Eq("name", "Acme")
	assert.Equal(t, Condition{Column: "name", Operator: OpEqual, Value: "Acme", Logic: LogicAnd}, cond)

	assert.Equal(t, OpNotEqual, NotEq("name", "x").Operator)
	assert.Equal(t, LogicOr, Or(Eq("id", 1)).Logic)
	assert.True(t, Not(Eq("id", 1)).Not)
}

func TestGroupedConditions(t *testing.T) {
	sql, args, err := NewWhereBuilder().
		Add(Gt("count", 0)).
		Add(Group(Eq("shop.name", "Downtown"), Or(Eq("shop.name", "Uptown")))).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "WHERE count > $1 AND (shop.name = $2 OR shop.name = $3)", sql)
	assert.Len(t, args, 3)
}

func TestGroupedConditions_Not(t *testing.T) {
	sql, _, err := NewWhereBuilder().
		Add(Not(Group(Eq("a", 1), Or(Eq("b", 2))))).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "WHERE NOT ((a = $1 OR b = $2))", sql)
}
