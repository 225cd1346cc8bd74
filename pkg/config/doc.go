// Package config provides configuration management for the mibauu server.
//
// Configuration is resolved once at start-up and handed to the components
// that need it. Nothing in the server reads the environment after that.
//
// # Configuration Sources
//
// Values are layered, later sources winning:
//
//   - Built-in defaults
//   - $MIBAUU_CONFIG_PATH/mibauu.yml (default /etc/mibauu/mibauu.yml)
//   - Environment variables
//
// # Key Configuration Options
//
//   - SUPABASE_URL, SUPABASE_ANON_KEY: managed platform project and access key
//   - DATABASE_URL: direct PostgreSQL connection (postgres store, local auth)
//   - MIBAUU_STORE_DRIVER: supabase or postgres
//   - MIBAUU_STORAGE_DRIVER: supabase or gcs
//   - MIBAUU_AUTH_DRIVER: gotrue or local
//   - MIBAUU_BUCKET: image bucket (default mibauu)
//   - MIBAUU_LOG_LEVEL, MIBAUU_LOG_FORMAT: logging
//   - BIND_ADDRESS, PORT: server listen address
package config
