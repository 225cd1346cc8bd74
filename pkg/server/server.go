package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/casq89/mibauu-backend/pkg/authenticator"
	"github.com/casq89/mibauu-backend/pkg/config"
	"github.com/casq89/mibauu-backend/pkg/server/middleware"
	"github.com/casq89/mibauu-backend/pkg/server/store"
)

// Stores groups the backends handlers read from and write to
type Stores struct {
	Records store.RecordStore
	Objects store.ObjectStore
	Health  store.HealthStore
}

type Server struct {
	Router *mux.Router

	Records store.RecordStore
	Objects store.ObjectStore
	Health  store.HealthStore
	Auth    authenticator.Authenticator

	// Bucket holds every uploaded image
	Bucket string
	Config *config.Config
	Logger zerolog.Logger

	srv *http.Server
}

func NewServer(
	cfg *config.Config,
	stores Stores,
	auth authenticator.Authenticator,
	logger zerolog.Logger,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()

	var handler http.Handler = router
	handler = middleware.Recover(handler)
	handler = middleware.RequestLogger(logger)(handler)
	handler = handlers.ProxyHeaders(handler)

	srv := &http.Server{
		Handler: handler,
		Addr:    net.JoinHostPort(host, port),
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	bucket := config.DefaultBucket
	if cfg != nil && cfg.Bucket != "" {
		bucket = cfg.Bucket
	}

	return &Server{
		Router:  router,
		Records: stores.Records,
		Objects: stores.Objects,
		Health:  stores.Health,
		Auth:    auth,
		Bucket:  bucket,
		Config:  cfg,
		Logger:  logger,
		srv:     srv,
	}
}

// Handler returns the full middleware chain, for tests
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	s.Logger.Info().Str("address", s.srv.Addr).Msg("listening")
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
