package dto_test

import (
	"testing"

	"driveease/shared/dto"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "equality on a table column",
			filter:    dto.Filter{Field: "city", Value: "Pune", Operator: dto.FilterOperatorEq, Table: "cars"},
			wantWhere: "cars.city = :city",
			wantArgs:  map[string]any{"city": "Pune"},
		},
		{
			name:      "argument name overrides the field",
			filter:    dto.Filter{ArgName: "overlap_drop", Field: "pickup_date", Value: "2024-06-12", Operator: dto.FilterOperatorLessEq},
			wantWhere: "pickup_date <= :overlap_drop",
			wantArgs:  map[string]any{"overlap_drop": "2024-06-12"},
		},
		{
			name:      "like is case insensitive and wrapped",
			filter:    dto.Filter{Field: "name", Value: "swift", Operator: dto.FilterOperatorLike},
			wantWhere: "LOWER(name) LIKE LOWER(:name)",
			wantArgs:  map[string]any{"name": "%swift%"},
		},
		{
			name:      "in binds a postgres array",
			filter:    dto.Filter{Field: "booking_status", Value: []string{"pending", "confirmed"}, Operator: dto.FilterOperatorIn},
			wantWhere: "booking_status = ANY(:booking_status)",
			wantArgs:  map[string]any{"booking_status": pq.Array([]string{"pending", "confirmed"})},
		},
		{
			name:      "unknown operator renders nothing",
			filter:    dto.Filter{Field: "id", Value: "1", Operator: "between"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "role", Value: "user", Operator: dto.FilterOperatorEq},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{ArgName: "search_name", Field: "name", Value: "asha", Operator: dto.FilterOperatorLike},
					dto.Filter{ArgName: "search_email", Field: "email", Value: "asha", Operator: dto.FilterOperatorLike},
				},
			},
			dto.Filter{Field: "ignored", Operator: "nope"},
			"not a filter",
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(role = :role AND (LOWER(name) LIKE LOWER(:search_name) OR LOWER(email) LIKE LOWER(:search_email)))", where)
	assert.Equal(t, map[string]any{"role": "user", "search_name": "%asha%", "search_email": "%asha%"}, args)

	empty := dto.FilterGroup{}
	where, args = empty.GetWhereClause()
	assert.Empty(t, where)
	assert.Empty(t, args)
}
