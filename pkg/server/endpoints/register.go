package endpoints

import (
	"github.com/casq89/mibauu-backend/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterHealthEndpoint(srv)
	RegisterLoginEndpoint(srv)
	RegisterResourcesEndpoints(srv)
}
