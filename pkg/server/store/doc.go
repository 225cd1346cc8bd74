// Package store provides storage abstractions for the mibauu server.
//
// Handlers depend only on these interfaces, so the same resource logic runs
// against direct PostgreSQL (subpackage gorm), the managed platform's REST
// and storage APIs (subpackage supabase) or Google Cloud Storage
// (subpackage gcs), and against testify mocks in tests.
//
// # Available Stores
//
//   - RecordStore: list, insert, update and delete rows; call sequences
//   - ObjectStore: upload, address and remove images
//   - HealthStore: backend connectivity
//
// # Usage
//
//	rows, err := records.List(ctx, "products", store.Query{
//	    Filters: []store.Filter{store.Eq("enable", true), store.Gt("stock", 0)},
//	    Order:   &store.Order{Column: "name"},
//	})
//	if err != nil {
//	    var serr *store.Error
//	    if errors.As(err, &serr) {
//	        // serr.Message is the backend's own text
//	    }
//	}
package store
