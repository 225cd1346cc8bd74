package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/casq89/mibauu-backend/pkg/authenticator"
	"github.com/casq89/mibauu-backend/pkg/server"
)

// LoginResponse is the body of a successful login
type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type LoginUser struct {
	Email string `json:"email"`
}

var validate = validator.New()

// RegisterLoginEndpoint registers POST /login
func RegisterLoginEndpoint(s *server.Server) {
	s.Router.Handle("/login", handleLogin(s.Auth))
	s.Router.PathPrefix("/login/").Handler(handleLogin(s.Auth))
}

func handleLogin(auth authenticator.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
		case http.MethodOptions:
			respondPreflight(w)
			return
		default:
			w.Header().Set("Allow", "POST, OPTIONS")
			respondWithError(w, http.StatusMethodNotAllowed, "Only POST allowed")
			return
		}

		var creds authenticator.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			respondWithError(w, http.StatusBadRequest, "Missing credentials")
			return
		}
		if err := validate.Struct(creds); err != nil {
			respondWithError(w, http.StatusBadRequest, "Missing credentials")
			return
		}

		session, err := auth.SignIn(r.Context(), creds)
		if err != nil {
			zerolog.Ctx(r.Context()).Info().Str("authenticator", auth.Name()).Err(err).Msg("login rejected")
			respondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}

		respondWithJSON(w, http.StatusOK, LoginResponse{
			Token: session.AccessToken,
			User:  LoginUser{Email: session.Email},
		})
	}
}
