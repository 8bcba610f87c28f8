package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name      string
		opts      *ListQueryOptions
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "basic select",
			opts:      NewListQueryOptions("doctors"),
			wantQuery: `SELECT * FROM "doctors"`,
			wantArgs:  []any{},
		},
		{
			name:      "qualified columns",
			opts:      NewListQueryOptions("doctors", WithColumns("doctors.id", "name")),
			wantQuery: `SELECT "doctors"."id", "name" FROM "doctors"`,
			wantArgs:  []any{},
		},
		{
			name: "count only drops pagination",
			opts: NewListQueryOptions("doctors",
				WithCountOnly(),
				WithCondition(WhereCond("available", Equal, true)),
				WithLimit(10),
			),
			wantQuery: `SELECT COUNT(*) FROM "doctors" WHERE "available" = $1`,
			wantArgs:  []any{true},
		},
		{
			name: "conditions order and paging",
			opts: NewListQueryOptions("appointments",
				WithCondition(WhereCond("user_id", Equal, "u1")),
				WithCondition(WhereCond("status", Equal, "booked")),
				WithOrderBy("slot_at", "desc"),
				WithLimit(20),
				WithOffset(40),
			),
			wantQuery: `SELECT * FROM "appointments" WHERE "user_id" = $1 AND "status" = $2 ORDER BY "slot_at" DESC LIMIT $3 OFFSET $4`,
			wantArgs:  []any{"u1", "booked", 20, 40},
		},
		{
			name: "raw condition renumbered",
			opts: NewListQueryOptions("doctors",
				WithCondition(WhereCond("available", Equal, true)),
				WithCondition(WhereRawCond("lower(specialty) = lower($1)", "Cardiology")),
				WithLimit(5),
			),
			wantQuery: `SELECT * FROM "doctors" WHERE "available" = $1 AND lower(specialty) = lower($2) LIMIT $3`,
			wantArgs:  []any{true, "Cardiology", 5},
		},
		{
			name: "raw condition reuses placeholder",
			opts: NewListQueryOptions("doctors",
				WithCondition(WhereRawCond("(name ILIKE $1 OR hospital ILIKE $1)", "%apollo%")),
			),
			wantQuery: `SELECT * FROM "doctors" WHERE (name ILIKE $1 OR hospital ILIKE $1)`,
			wantArgs:  []any{"%apollo%"},
		},
		{
			name:      "invalid order direction ignored",
			opts:      NewListQueryOptions("doctors", WithOrderBy("name", "sideways")),
			wantQuery: `SELECT * FROM "doctors" ORDER BY "name"`,
			wantArgs:  []any{},
		},
		{
			name:      "zero limit kept",
			opts:      NewListQueryOptions("doctors", WithLimit(0), WithOffset(-5)),
			wantQuery: `SELECT * FROM "doctors" LIMIT $1`,
			wantArgs:  []any{0},
		},
		{
			name:      "identifiers are quoted",
			opts:      NewListQueryOptions(`doctors"; DROP TABLE x; --`),
			wantQuery: `SELECT * FROM "doctors""; DROP TABLE x; --"`,
			wantArgs:  []any{},
		},
		{
			name:      "empty field skipped",
			opts:      NewListQueryOptions("doctors", WithCondition(WhereCond("", Equal, 1))),
			wantQuery: `SELECT * FROM "doctors"`,
			wantArgs:  []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := BuildListQuery(tt.opts)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildListQuery_Nil(t *testing.T) {
	query, args := BuildListQuery(nil)
	assert.Empty(t, query)
	assert.Nil(t, args)
}

func TestWhereCond_CustomPanics(t *testing.T) {
	assert.Panics(t, func() { WhereCond("x", Custom, nil) })
}
