package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/pkg/sandbox"
)

// TablesInput is the empty request for TablesQuery.
type TablesInput struct{}

type tableLister interface {
	Tables(ctx context.Context) ([]string, error)
}

// TablesQuery lists the sandbox tables.
type TablesQuery struct {
	db tableLister
}

// NewTablesQuery builds the query.
func NewTablesQuery(db tableLister) *TablesQuery {
	return &TablesQuery{db: db}
}

var _ gocommand.Querier[TablesInput, []string] = (*TablesQuery)(nil)

// Query returns table names.
func (q *TablesQuery) Query(ctx context.Context, _ TablesInput) ([]string, error) {
	return q.db.Tables(ctx)
}

// TableInput names one sandbox table.
type TableInput struct {
	Name string `json:"name"`
}

type tableDescriber interface {
	Describe(ctx context.Context, table string) ([]sandbox.Column, error)
}

// DescribeTableQuery lists a table's columns.
type DescribeTableQuery struct {
	db tableDescriber
}

// NewDescribeTableQuery builds the query.
func NewDescribeTableQuery(db tableDescriber) *DescribeTableQuery {
	return &DescribeTableQuery{db: db}
}

var _ gocommand.Querier[TableInput, []sandbox.Column] = (*DescribeTableQuery)(nil)

// Query returns the table's columns.
func (q *DescribeTableQuery) Query(ctx context.Context, in TableInput) ([]sandbox.Column, error) {
	return q.db.Describe(ctx, in.Name)
}
