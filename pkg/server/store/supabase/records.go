package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/casq89/mibauu-backend/pkg/model"
	"github.com/casq89/mibauu-backend/pkg/server/store"
)

var _ store.RecordStore = (*RecordStore)(nil)

// RecordStore implements store.RecordStore against the platform's PostgREST API
type RecordStore struct {
	client *Client
}

// NewRecordStore creates a new RecordStore
func NewRecordStore(client *Client) *RecordStore {
	return &RecordStore{client: client}
}

// List returns the rows of table matching q
func (s *RecordStore) List(ctx context.Context, table string, q store.Query) ([]model.Record, error) {
	query, err := filterValues(table, q.Filters)
	if err != nil {
		return nil, opError("list", table, err)
	}

	sel := []string{"*"}
	for _, e := range q.Embeds {
		if !store.ValidIdentifier(e.Table) {
			return nil, opError("list", table, fmt.Errorf("invalid embed %q", e.Table))
		}
		sel = append(sel, e.Table+"("+strings.Join(e.Columns, ",")+")")
	}
	query.Set("select", strings.Join(sel, ","))

	if q.Order != nil {
		if !store.ValidIdentifier(q.Order.Column) {
			return nil, opError("list", table, fmt.Errorf("invalid column name %q", q.Order.Column))
		}
		direction := "asc"
		if q.Order.Descending {
			direction = "desc"
		}
		query.Set("order", q.Order.Column+"."+direction)
	}

	resp, err := s.client.do(ctx, request{method: http.MethodGet, path: restPath(table), query: query})
	return records("list", table, resp, err)
}

// Insert creates one row and returns it as stored
func (s *RecordStore) Insert(ctx context.Context, table string, record model.Record) ([]model.Record, error) {
	if !store.ValidIdentifier(table) {
		return nil, opError("insert", table, fmt.Errorf("invalid table name %q", table))
	}
	resp, err := s.client.do(ctx, request{
		method:  http.MethodPost,
		path:    restPath(table),
		json:    record,
		headers: map[string]string{"Prefer": "return=representation"},
	})
	return records("insert", table, resp, err)
}

// Update applies patch to the rows matching filters and returns them
func (s *RecordStore) Update(ctx context.Context, table string, filters []store.Filter, patch model.Record) ([]model.Record, error) {
	if len(filters) == 0 {
		return nil, opError("update", table, fmt.Errorf("update requires a filter"))
	}
	query, err := filterValues(table, filters)
	if err != nil {
		return nil, opError("update", table, err)
	}
	resp, err := s.client.do(ctx, request{
		method:  http.MethodPatch,
		path:    restPath(table),
		query:   query,
		json:    patch,
		headers: map[string]string{"Prefer": "return=representation"},
	})
	return records("update", table, resp, err)
}

// Delete removes the rows matching filters
func (s *RecordStore) Delete(ctx context.Context, table string, filters []store.Filter) error {
	if len(filters) == 0 {
		return opError("delete", table, fmt.Errorf("delete requires a filter"))
	}
	query, err := filterValues(table, filters)
	if err != nil {
		return opError("delete", table, err)
	}
	resp, err := s.client.do(ctx, request{method: http.MethodDelete, path: restPath(table), query: query})
	if err != nil {
		return opError("delete", table, err)
	}
	if !resp.ok() {
		return &store.Error{Op: "delete", Table: table, Message: ErrorMessage(resp.body, resp.status)}
	}
	return nil
}

// NextSequence calls the named RPC function and returns its integer result
func (s *RecordStore) NextSequence(ctx context.Context, name string) (int64, error) {
	if !store.ValidIdentifier(name) {
		return 0, opError("sequence", "", fmt.Errorf("invalid function name %q", name))
	}
	resp, err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/rpc/" + name,
		json:   map[string]interface{}{},
	})
	if err != nil {
		return 0, opError("sequence", "", err)
	}
	if !resp.ok() {
		return 0, &store.Error{Op: "sequence", Message: ErrorMessage(resp.body, resp.status)}
	}
	result := gjson.ParseBytes(resp.body)
	if result.Type != gjson.Number {
		return 0, &store.Error{Op: "sequence", Message: fmt.Sprintf("%s returned %s, expected a number", name, strings.TrimSpace(string(resp.body)))}
	}
	return result.Int(), nil
}

func restPath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

func filterValues(table string, filters []store.Filter) (url.Values, error) {
	if !store.ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	query := url.Values{}
	for _, f := range filters {
		if !store.ValidIdentifier(f.Column) {
			return nil, fmt.Errorf("invalid column name %q", f.Column)
		}
		switch f.Op {
		case store.OpEq, store.OpGt:
		default:
			return nil, fmt.Errorf("unsupported operator %q", f.Op)
		}
		query.Add(f.Column, f.Op+"."+fmt.Sprint(f.Value))
	}
	return query, nil
}

func records(op, table string, resp response, err error) ([]model.Record, error) {
	if err != nil {
		return nil, opError(op, table, err)
	}
	if !resp.ok() {
		return nil, &store.Error{Op: op, Table: table, Message: ErrorMessage(resp.body, resp.status)}
	}

	rows := []model.Record{}
	if len(resp.body) == 0 {
		return rows, nil
	}
	dec := json.NewDecoder(bytes.NewReader(resp.body))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, opError(op, table, fmt.Errorf("decode response: %w", err))
	}
	return rows, nil
}

func opError(op, table string, err error) error {
	return &store.Error{Op: op, Table: table, Message: err.Error(), Err: err}
}
