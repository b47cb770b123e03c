package dto

import (
	"fmt"
	"maps"
	"strings"

	"github.com/lib/pq"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorLike      = "like"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

// comparisons maps a binary operator to its SQL template; %[1]s is the column
// and %[2]s the named argument.
var comparisons = map[string]string{
	FilterOperatorEq:        "%[1]s = :%[2]s",
	FilterOperatorNotEq:     "%[1]s != :%[2]s",
	FilterOperatorLessEq:    "%[1]s <= :%[2]s",
	FilterOperatorGreaterEq: "%[1]s >= :%[2]s",
	FilterOperatorLike:      "LOWER(%[1]s) LIKE LOWER(:%[2]s)",
	FilterOperatorIn:        "%[1]s = ANY(:%[2]s)",
}

// Filter is a single predicate rendered as a named-parameter clause. ArgName
// defaults to Field and must be unique within one query.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string
	Table    string
}

func (f *Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f *Filter) arg() any {
	switch f.Operator {
	case FilterOperatorLike:
		return fmt.Sprintf("%%%v%%", f.Value)
	case FilterOperatorIn:
		return pq.Array(f.Value)
	default:
		return f.Value
	}
}

// GetWhereClause renders the predicate. An unknown operator renders nothing.
func (f *Filter) GetWhereClause() (string, map[string]any) {
	tmpl, ok := comparisons[f.Operator]
	if !ok {
		return "", map[string]any{}
	}

	name := f.ArgName
	if name == "" {
		name = f.Field
	}

	return fmt.Sprintf(tmpl, f.column(), name), map[string]any{name: f.arg()}
}

// FilterGroup joins Filters and nested FilterGroups with Operator, AND when
// empty. Other element types are ignored.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func (f *FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(f.Filters))

	for _, item := range f.Filters {
		var (
			clause string
			params map[string]any
		)

		switch typed := item.(type) {
		case Filter:
			clause, params = typed.GetWhereClause()
		case FilterGroup:
			clause, params = typed.GetWhereClause()
		default:
			continue
		}

		if clause == "" {
			continue
		}

		clauses = append(clauses, clause)
		maps.Copy(args, params)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(clauses, " "+operator+" ") + ")", args
}
