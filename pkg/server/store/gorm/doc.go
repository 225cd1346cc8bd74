// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Queries are written as raw SQL with bound parameters; table and column
// names are validated and quoted before they reach the statement. The GORM
// handle is opened by pkg/db on the pgx-backed postgres driver.
package gorm
