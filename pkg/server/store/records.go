package store

import (
	"context"
	"regexp"

	"github.com/casq89/mibauu-backend/pkg/model"
)

// Filter operators
const (
	OpEq = "eq"
	OpGt = "gt"
)

// Filter is one predicate on a column. Filters in a list are AND-ed.
type Filter struct {
	Column string
	Op     string
	Value  any
}

// Eq returns an equality filter
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Gt returns a greater-than filter
func Gt(column string, value any) Filter {
	return Filter{Column: column, Op: OpGt, Value: value}
}

// Order sorts a listing by one column
type Order struct {
	Column     string
	Descending bool
}

// Embed pulls selected columns of a related row into each result under the
// related table's name, e.g. {"category": {"name": "Toys"}}. The value is null
// when the foreign key is null or dangling.
type Embed struct {
	Table      string
	ForeignKey string
	Columns    []string
}

// Query describes a listing
type Query struct {
	Filters []Filter
	Order   *Order
	Embeds  []Embed
}

// RecordStore abstracts the row operations every resource handler performs.
// Implementations return *Error for every failure the backend reports.
type RecordStore interface {
	// List returns the rows of table matching q, in q.Order when set.
	List(ctx context.Context, table string, q Query) ([]model.Record, error)

	// Insert creates one row and returns the stored representation.
	Insert(ctx context.Context, table string, record model.Record) ([]model.Record, error)

	// Update applies patch to every row matching filters and returns the
	// updated rows.
	Update(ctx context.Context, table string, filters []Filter, patch model.Record) ([]model.Record, error)

	// Delete removes every row matching filters.
	Delete(ctx context.Context, table string, filters []Filter) error

	// NextSequence calls the named sequence function and returns its value.
	NextSequence(ctx context.Context, name string) (int64, error)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to use as a table or column
// name in a query.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
