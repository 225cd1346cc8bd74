// Package supabase implements the store interfaces on top of the managed
// platform's HTTP APIs: PostgREST under /rest/v1 for records and the storage
// API under /storage/v1 for images.
//
// Every call carries the project access key in both the apikey and
// Authorization headers. Error bodies are reduced to the platform's own
// message so it can be shown to clients unchanged.
//
//	client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.Timeout())
//	records := supabase.NewRecordStore(client)
//	objects := supabase.NewObjectStore(client)
package supabase
