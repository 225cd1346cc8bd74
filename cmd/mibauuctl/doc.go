// Command mibauuctl runs the mibauu backend.
//
// The backend serves CRUD endpoints over the catalogue schema (categories,
// products, offers, order lines and consents), read-only mirrors for the
// mobile app and a password login.
//
// # Architecture
//
//   - pkg/server: HTTP server and middleware
//   - pkg/server/endpoints: resource handlers, login and health
//   - pkg/server/store: record and object store interfaces, with supabase,
//     gorm and gcs implementations
//   - pkg/authenticator: password sign-in (gotrue, local)
//   - pkg/config: configuration management
//   - pkg/db: database connection utilities
//
// # Quick Start
//
//	export SUPABASE_URL=https://<project>.supabase.co
//	export SUPABASE_ANON_KEY=...
//	mibauuctl configuration validate
//	mibauuctl server
//	mibauuctl wait
//
// # Environment Variables
//
//   - SUPABASE_URL, SUPABASE_ANON_KEY: platform endpoint and access key
//   - DATABASE_URL: PostgreSQL connection string (postgres store, local auth)
//   - MIBAUU_STORE_DRIVER, MIBAUU_STORAGE_DRIVER, MIBAUU_AUTH_DRIVER: backend selection
//   - MIBAUU_BUCKET: image bucket (default: mibauu)
//   - MIBAUU_LOG_LEVEL, MIBAUU_LOG_FORMAT: logging
//   - PORT: Server port (default: 8000)
package main
