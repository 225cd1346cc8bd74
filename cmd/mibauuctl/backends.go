package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/casq89/mibauu-backend/pkg/authenticator"
	"github.com/casq89/mibauu-backend/pkg/authenticator/authn"
	"github.com/casq89/mibauu-backend/pkg/authenticator/gotrue"
	"github.com/casq89/mibauu-backend/pkg/config"
	"github.com/casq89/mibauu-backend/pkg/db"
	"github.com/casq89/mibauu-backend/pkg/server"
	"github.com/casq89/mibauu-backend/pkg/server/store/gcs"
	gormstore "github.com/casq89/mibauu-backend/pkg/server/store/gorm"
	"github.com/casq89/mibauu-backend/pkg/server/store/supabase"
)

// buildServer constructs every backend client once and injects them into a
// new server. The returned func releases the clients that hold resources.
func buildServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*server.Server, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var platform *supabase.Client
	if cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "" {
		platform = supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.Timeout())
	}

	var gdb *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		gdb, err = db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
		if err != nil {
			return nil, func() {}, fmt.Errorf("unable to connect to DB: %w", err)
		}
		closers = append(closers, func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
	}

	var stores server.Stores
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		stores.Records = gormstore.NewRecordStore(gdb)
		stores.Health = gormstore.NewHealthStore(gdb)
	default:
		stores.Records = supabase.NewRecordStore(platform)
		stores.Health = supabase.NewHealthStore(platform)
	}

	switch cfg.StorageDriver {
	case config.StorageDriverGCS:
		client, err := gcs.NewClient(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("unable to create storage client: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		stores.Objects = gcs.NewObjectStore(client, cfg.GCSPublicBaseURL)
	default:
		stores.Objects = supabase.NewObjectStore(platform)
	}

	registry := authenticator.NewRegistry()
	if platform != nil {
		registry.Register(gotrue.New(platform))
	}
	if gdb != nil && cfg.JWTSecret != "" {
		registry.Register(authn.New(gdb, []byte(cfg.JWTSecret), cfg.TokenLifetime()))
	}
	auth, err := registry.Lookup(cfg.AuthDriver)
	if err != nil {
		closeAll()
		return nil, func() {}, err
	}

	logger.Debug().Strs("installed", registry.Installed()).Str("enabled", auth.Name()).Msg("authenticators")

	return server.NewServer(cfg, stores, auth, logger, cfg.BindAddress, cfg.Port), closeAll, nil
}
