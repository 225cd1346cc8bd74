// Package server provides the HTTP server for the mibauu backend.
//
// The server routes requests with gorilla/mux and wraps the router with
// request logging, panic recovery and proxy header handling.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, server.Stores{Records: records, Objects: objects, Health: health}, auth, logger, "0.0.0.0", "8000")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Router: HTTP request router
//   - Records: table rows (category, products, offer, order_product, consent)
//   - Objects: the image bucket
//   - Health: backend connectivity check
//   - Auth: password sign-in
//
// # Endpoints
//
// Endpoints are registered via the endpoints subpackage:
//
//	endpoints.RegisterAll(srv)
//
// This registers the back-office mounts (/categories, /products, /offers,
// /order-detail, /consents), the mobile mounts (/mobile-categories,
// /mobile-offer, /mobile-products, /mobile-consents), /login and /health.
package server
