package endpoints

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// methodOrder is the order methods are listed in the Allow header
var methodOrder = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodOptions,
}

// allowHeader lists the methods present in methods, OPTIONS last
func allowHeader(methods map[string]bool) string {
	allowed := make([]string, 0, len(methodOrder))
	for _, m := range methodOrder {
		if methods[m] {
			allowed = append(allowed, m)
		}
	}
	return strings.Join(allowed, ", ")
}

// ServeHTTP routes the request to the resource's action for its method.
// Every mount answers OPTIONS with the preflight response.
func (h *resourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		respondPreflight(w)
		return
	}

	act, ok := h.res.Methods[r.Method]
	if !ok {
		methods := map[string]bool{http.MethodOptions: true}
		for m := range h.res.Methods {
			methods[m] = true
		}
		w.Header().Set("Allow", allowHeader(methods))
		respondWithError(w, http.StatusMethodNotAllowed, "Method is not allowed")
		return
	}

	handleError(w, r, act(h, w, r))
}

// handleError renders err: request errors with their status and message,
// anything else as a 500.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		respondWithError(w, reqErr.status, reqErr.message)
		return
	}

	zerolog.Ctx(r.Context()).Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	respondWithFailure(w, err)
}
