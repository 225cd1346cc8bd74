package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/casq89/mibauu-backend/pkg/server/middleware"
)

func setCORSHeaders(w http.ResponseWriter) {
	middleware.SetCORSHeaders(w)
}

// respondWithData writes the success envelope {"data": payload}
func respondWithData(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"data": payload})
}

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

// respondWithFailure reports an unexpected error as {"message": ...}
func respondWithFailure(w http.ResponseWriter, err error) {
	respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{"message": err.Error()})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondPreflight answers OPTIONS with the CORS headers and a plain "ok"
func respondPreflight(w http.ResponseWriter) {
	setCORSHeaders(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
