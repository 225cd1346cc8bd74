package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casq89/mibauu-backend/pkg/config"
	"github.com/casq89/mibauu-backend/pkg/server/store/supabase"
)

func TestBuildServer_Supabase(t *testing.T) {
	t.Setenv("MIBAUU_CONFIG_PATH", t.TempDir())
	t.Setenv("SUPABASE_URL", "https://proj.supabase.test")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	s, closeBackends, err := buildServer(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer closeBackends()

	assert.IsType(t, &supabase.RecordStore{}, s.Records)
	assert.IsType(t, &supabase.ObjectStore{}, s.Objects)
	assert.IsType(t, &supabase.HealthStore{}, s.Health)
	assert.Equal(t, "gotrue", s.Auth.Name())
	assert.Equal(t, "mibauu", s.Bucket)
}

func TestBuildServer_UnknownAuthenticator(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:     config.StoreDriverSupabase,
		StorageDriver:   config.StorageDriverSupabase,
		AuthDriver:      config.AuthDriverLocal,
		SupabaseURL:     "https://proj.supabase.test",
		SupabaseAnonKey: "anon",
		Bucket:          "mibauu",
	}

	_, closeBackends, err := buildServer(context.Background(), cfg, zerolog.Nop())
	defer closeBackends()
	assert.ErrorContains(t, err, `authenticator "local" not found`)
}
