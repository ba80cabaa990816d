package sandbox

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Result is one result set of a query.
type Result struct {
	Columns []string `json:"columns"`
	Values  [][]any  `json:"values"`
}

// RunResult reports the rows changed by a statement.
type RunResult struct {
	Changes int64 `json:"changes"`
}

// Column describes one table column.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"notnull"`
	PrimaryKey bool   `json:"pk"`
}

// Query runs a statement and returns its rows. Statements that produce no
// columns return an empty slice. The database image is persisted on success.
func (s *Sandbox) Query(ctx context.Context, query string, params ...any) ([]Result, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	results, err := s.queryLocked(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	s.persistImageLocked(ctx)
	return results, nil
}

// Run executes a statement and reports the number of changed rows. The
// database image is persisted on success.
func (s *Sandbox) Run(ctx context.Context, query string, params ...any) (RunResult, error) {
	if err := s.Init(ctx); err != nil {
		return RunResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.sqlDB.ExecContext(ctx, query, params...)
	if err != nil {
		return RunResult{}, fmt.Errorf("sandbox: run: %w", err)
	}
	changes, err := res.RowsAffected()
	if err != nil {
		return RunResult{}, fmt.Errorf("sandbox: run: %w", err)
	}
	s.persistImageLocked(ctx)
	return RunResult{Changes: changes}, nil
}

func (s *Sandbox) read(ctx context.Context, query string, params ...any) ([]Result, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(ctx, query, params...)
}

func (s *Sandbox) queryLocked(ctx context.Context, query string, params ...any) ([]Result, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("sandbox: query: %w", err)
	}
	defer rows.Close()
	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("sandbox: query: %w", err)
	}
	if len(result.Columns) == 0 {
		return []Result{}, nil
	}
	return []Result{result}, nil
}

func scanRows(rows *sql.Rows) (Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}
	out := Result{Columns: cols, Values: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out.Values = append(out.Values, values)
	}
	return out, rows.Err()
}

// Insert adds one row built from data.
func (s *Sandbox) Insert(ctx context.Context, table string, data map[string]any) (RunResult, error) {
	cols, values, err := columnsOf(table, data)
	if err != nil {
		return RunResult{}, err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(table), joinQuoted(cols), placeholders)
	return s.Run(ctx, query, values...)
}

// Select returns every row of table matching the optional where clause.
func (s *Sandbox) Select(ctx context.Context, table, where string, params ...any) ([]Result, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("sandbox: invalid table name %q", table)
	}
	query := "SELECT * FROM " + quote(table) + whereClause(where)
	return s.read(ctx, query, params...)
}

// Update sets data on rows matching the where clause.
func (s *Sandbox) Update(ctx context.Context, table string, data map[string]any, where string, params ...any) (RunResult, error) {
	cols, values, err := columnsOf(table, data)
	if err != nil {
		return RunResult{}, err
	}
	assignments := lo.Map(cols, func(col string, _ int) string { return quote(col) + " = ?" })
	query := fmt.Sprintf("UPDATE %s SET %s%s", quote(table), strings.Join(assignments, ", "), whereClause(where))
	return s.Run(ctx, query, append(values, params...)...)
}

// Delete removes rows matching the where clause.
func (s *Sandbox) Delete(ctx context.Context, table, where string, params ...any) (RunResult, error) {
	if !identifierPattern.MatchString(table) {
		return RunResult{}, fmt.Errorf("sandbox: invalid table name %q", table)
	}
	return s.Run(ctx, "DELETE FROM "+quote(table)+whereClause(where), params...)
}

// Tables lists every table name.
func (s *Sandbox) Tables(ctx context.Context) ([]string, error) {
	results, err := s.read(ctx, "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []string{}, nil
	}
	return lo.Map(results[0].Values, func(row []any, _ int) string {
		return fmt.Sprint(row[0])
	}), nil
}

// Describe lists the columns of table.
func (s *Sandbox) Describe(ctx context.Context, table string) ([]Column, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("sandbox: invalid table name %q", table)
	}
	results, err := s.read(ctx, "PRAGMA table_info("+quote(table)+")")
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []Column{}, nil
	}
	index := make(map[string]int, len(results[0].Columns))
	for i, name := range results[0].Columns {
		index[name] = i
	}
	return lo.Map(results[0].Values, func(row []any, _ int) Column {
		return Column{
			Name:       fmt.Sprint(row[index["name"]]),
			Type:       fmt.Sprint(row[index["type"]]),
			NotNull:    fmt.Sprint(row[index["notnull"]]) == "1",
			PrimaryKey: fmt.Sprint(row[index["pk"]]) != "0",
		}
	}), nil
}

func columnsOf(table string, data map[string]any) ([]string, []any, error) {
	if !identifierPattern.MatchString(table) {
		return nil, nil, fmt.Errorf("sandbox: invalid table name %q", table)
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("sandbox: no columns for %s", table)
	}
	cols := lo.Keys(data)
	sort.Strings(cols)
	for _, col := range cols {
		if !identifierPattern.MatchString(col) {
			return nil, nil, fmt.Errorf("sandbox: invalid column name %q", col)
		}
	}
	values := lo.Map(cols, func(col string, _ int) any { return data[col] })
	return cols, values, nil
}

func whereClause(where string) string {
	if strings.TrimSpace(where) == "" {
		return ""
	}
	return " WHERE " + where
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func joinQuoted(idents []string) string {
	return strings.Join(lo.Map(idents, func(id string, _ int) string { return quote(id) }), ", ")
}
