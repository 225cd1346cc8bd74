package endpoints

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/casq89/mibauu-backend/pkg/authenticator"
	"github.com/casq89/mibauu-backend/pkg/server"
	"github.com/casq89/mibauu-backend/pkg/server/store"
)

// HealthResponse represents the response from /health
type HealthResponse struct {
	Status        string `json:"status"`
	Authenticator string `json:"authenticator,omitempty"`
}

// HealthErrorResponse represents a failed health check
type HealthErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// RegisterHealthEndpoint registers GET /health
func RegisterHealthEndpoint(s *server.Server) {
	s.Router.HandleFunc("/health", handleHealth(s.Health, s.Auth)).Methods("GET")
}

func handleHealth(healthStore store.HealthStore, auth authenticator.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		// Check 1: record store connectivity
		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			logger.Warn().Err(err).Msg("record store health check failed")
			respondWithJSON(w, http.StatusServiceUnavailable, HealthErrorResponse{
				Status: "error",
				Error:  "record store connectivity check failed",
			})
			return
		}

		// Check 2: authenticator backend
		if auth != nil {
			if err := auth.Status(r.Context()); err != nil {
				logger.Warn().Err(err).Str("authenticator", auth.Name()).Msg("authenticator health check failed")
				respondWithJSON(w, http.StatusServiceUnavailable, HealthErrorResponse{
					Status: "error",
					Error:  "authenticator " + auth.Name() + " is unavailable",
				})
				return
			}
		}

		resp := HealthResponse{Status: "ok"}
		if auth != nil {
			resp.Authenticator = auth.Name()
		}
		respondWithJSON(w, http.StatusOK, resp)
	}
}
