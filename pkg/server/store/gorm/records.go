package gorm

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/casq89/mibauu-backend/pkg/model"
	"github.com/casq89/mibauu-backend/pkg/server/store"
)

// Ensure RecordStore implements store.RecordStore
var _ store.RecordStore = (*RecordStore)(nil)

// RecordStore implements store.RecordStore with raw SQL through GORM.
// Tables are schemaless from its point of view: rows are scanned column by
// column into model.Record values.
type RecordStore struct {
	db *gorm.DB
}

// NewRecordStore creates a new RecordStore
func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// List returns the rows of table matching q
func (s *RecordStore) List(ctx context.Context, table string, q store.Query) ([]model.Record, error) {
	if err := checkQuery(table, q); err != nil {
		return nil, opError("list", table, err)
	}

	query := `SELECT t.*`
	jsonColumns := map[string]bool{}
	for i, e := range q.Embeds {
		alias := fmt.Sprintf("e%d", i)
		pairs := make([]string, 0, len(e.Columns))
		for _, c := range e.Columns {
			pairs = append(pairs, fmt.Sprintf("'%s', %s.%s", c, alias, pq.QuoteIdentifier(c)))
		}
		query += fmt.Sprintf(`, CASE WHEN %s."id" IS NULL THEN NULL ELSE json_build_object(%s) END AS %s`,
			alias, strings.Join(pairs, ", "), pq.QuoteIdentifier(e.Table))
		jsonColumns[e.Table] = true
	}
	query += ` FROM ` + pq.QuoteIdentifier(table) + ` t`
	for i, e := range q.Embeds {
		alias := fmt.Sprintf("e%d", i)
		query += fmt.Sprintf(` LEFT JOIN %s %s ON %s."id" = t.%s`,
			pq.QuoteIdentifier(e.Table), alias, alias, pq.QuoteIdentifier(e.ForeignKey))
	}

	where, args := whereClause("t.", q.Filters)
	query += where

	if q.Order != nil {
		direction := "ASC"
		if q.Order.Descending {
			direction = "DESC"
		}
		query += ` ORDER BY t.` + pq.QuoteIdentifier(q.Order.Column) + ` ` + direction
	}

	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, opError("list", table, err)
	}
	records, err := scanRecords(rows, jsonColumns)
	if err != nil {
		return nil, opError("list", table, err)
	}
	return records, nil
}

// Insert creates one row and returns it as stored
func (s *RecordStore) Insert(ctx context.Context, table string, record model.Record) ([]model.Record, error) {
	if !store.ValidIdentifier(table) {
		return nil, opError("insert", table, fmt.Errorf("invalid table name %q", table))
	}

	columns := sortedColumns(record)
	query := `INSERT INTO ` + pq.QuoteIdentifier(table)
	args := make([]interface{}, 0, len(columns))
	if len(columns) == 0 {
		query += ` DEFAULT VALUES`
	} else {
		quoted := make([]string, 0, len(columns))
		marks := make([]string, 0, len(columns))
		for _, c := range columns {
			if !store.ValidIdentifier(c) {
				return nil, opError("insert", table, fmt.Errorf("invalid column name %q", c))
			}
			quoted = append(quoted, pq.QuoteIdentifier(c))
			marks = append(marks, "?")
			args = append(args, bindValue(record[c]))
		}
		query += ` (` + strings.Join(quoted, ", ") + `) VALUES (` + strings.Join(marks, ", ") + `)`
	}
	query += ` RETURNING *`

	return s.returning(ctx, "insert", table, query, args)
}

// Update applies patch to the rows matching filters and returns them
func (s *RecordStore) Update(ctx context.Context, table string, filters []store.Filter, patch model.Record) ([]model.Record, error) {
	if err := checkQuery(table, store.Query{Filters: filters}); err != nil {
		return nil, opError("update", table, err)
	}
	if len(filters) == 0 {
		return nil, opError("update", table, errors.New("update requires a filter"))
	}
	if len(patch) == 0 {
		return s.List(ctx, table, store.Query{Filters: filters})
	}

	columns := sortedColumns(patch)
	sets := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+len(filters))
	for _, c := range columns {
		if !store.ValidIdentifier(c) {
			return nil, opError("update", table, fmt.Errorf("invalid column name %q", c))
		}
		sets = append(sets, pq.QuoteIdentifier(c)+` = ?`)
		args = append(args, bindValue(patch[c]))
	}

	where, whereArgs := whereClause("", filters)
	query := `UPDATE ` + pq.QuoteIdentifier(table) + ` SET ` + strings.Join(sets, ", ") + where + ` RETURNING *`
	args = append(args, whereArgs...)

	return s.returning(ctx, "update", table, query, args)
}

// Delete removes the rows matching filters
func (s *RecordStore) Delete(ctx context.Context, table string, filters []store.Filter) error {
	if err := checkQuery(table, store.Query{Filters: filters}); err != nil {
		return opError("delete", table, err)
	}
	if len(filters) == 0 {
		return opError("delete", table, errors.New("delete requires a filter"))
	}

	where, args := whereClause("", filters)
	if err := s.db.WithContext(ctx).Exec(`DELETE FROM `+pq.QuoteIdentifier(table)+where, args...).Error; err != nil {
		return opError("delete", table, err)
	}
	return nil
}

// NextSequence calls the named SQL function and returns its integer result
func (s *RecordStore) NextSequence(ctx context.Context, name string) (int64, error) {
	if !store.ValidIdentifier(name) {
		return 0, opError("sequence", "", fmt.Errorf("invalid function name %q", name))
	}

	var next int64
	row := s.db.WithContext(ctx).Raw(`SELECT ` + pq.QuoteIdentifier(name) + `()`).Row()
	if err := row.Scan(&next); err != nil {
		return 0, opError("sequence", "", err)
	}
	return next, nil
}

func (s *RecordStore) returning(ctx context.Context, op, table, query string, args []interface{}) ([]model.Record, error) {
	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, opError(op, table, err)
	}
	records, err := scanRecords(rows, nil)
	if err != nil {
		return nil, opError(op, table, err)
	}
	return records, nil
}

func checkQuery(table string, q store.Query) error {
	if !store.ValidIdentifier(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	for _, f := range q.Filters {
		if !store.ValidIdentifier(f.Column) {
			return fmt.Errorf("invalid column name %q", f.Column)
		}
		if f.Op != store.OpEq && f.Op != store.OpGt {
			return fmt.Errorf("unsupported operator %q", f.Op)
		}
	}
	if q.Order != nil && !store.ValidIdentifier(q.Order.Column) {
		return fmt.Errorf("invalid column name %q", q.Order.Column)
	}
	for _, e := range q.Embeds {
		if !store.ValidIdentifier(e.Table) || !store.ValidIdentifier(e.ForeignKey) {
			return fmt.Errorf("invalid embed %s(%s)", e.Table, e.ForeignKey)
		}
		for _, c := range e.Columns {
			if !store.ValidIdentifier(c) {
				return fmt.Errorf("invalid column name %q", c)
			}
		}
	}
	return nil
}

func whereClause(prefix string, filters []store.Filter) (string, []interface{}) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, 0, len(filters))
	args := make([]interface{}, 0, len(filters))
	for _, f := range filters {
		op := "="
		if f.Op == store.OpGt {
			op = ">"
		}
		conds = append(conds, prefix+pq.QuoteIdentifier(f.Column)+` `+op+` ?`)
		args = append(args, bindValue(f.Value))
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

func sortedColumns(r model.Record) []string {
	columns := make([]string, 0, len(r))
	for c := range r {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}

// bindValue keeps nested JSON values from being expanded into lists by the
// query builder.
func bindValue(v interface{}) interface{} {
	switch v.(type) {
	case map[string]interface{}, []interface{}, model.Record:
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(b)
	}
	return v
}

func scanRecords(rows *sql.Rows, jsonColumns map[string]bool) ([]model.Record, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	records := []model.Record{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		record := make(model.Record, len(columns))
		for i, c := range columns {
			record[c] = normalize(values[i], types[i].DatabaseTypeName(), jsonColumns[c])
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// normalize converts driver values into values that encode to the same JSON
// the REST backend would produce.
func normalize(v interface{}, dbType string, isJSON bool) interface{} {
	var text string
	switch t := v.(type) {
	case []byte:
		text = string(t)
	case string:
		text = t
	default:
		return v
	}

	switch {
	case isJSON || dbType == "JSON" || dbType == "JSONB":
		return json.RawMessage(text)
	case dbType == "NUMERIC":
		return json.Number(text)
	}
	return text
}

func opError(op, table string, err error) error {
	message := err.Error()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		message = pgErr.Message
	}
	return &store.Error{Op: op, Table: table, Message: message, Err: err}
}
