package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// AllowedHeaders is the Access-Control-Allow-Headers value of every response
const AllowedHeaders = "authorization, x-client-info, apikey, content-type"

// SetCORSHeaders writes the permissive cross-origin headers
func SetCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", AllowedHeaders)
}

// Recover turns a panicking handler into a 500 {"message": ...} response
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}

			zerolog.Ctx(r.Context()).Error().Interface("panic", v).Msg("handler panicked")

			body, _ := json.Marshal(map[string]string{"message": fmt.Sprint(v)})
			SetCORSHeaders(w)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write(body)
		}()
		next.ServeHTTP(w, r)
	})
}
