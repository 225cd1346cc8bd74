package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/casq89/mibauu-backend/pkg/server/store"
)

// requestError is an expected failure with a client-facing message
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(format string, args ...interface{}) error {
	return &requestError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func notFound(label, id string) error {
	return badRequest("%s id: %s does not exist", label, id)
}

func unauthorized(message string) error {
	return &requestError{status: http.StatusUnauthorized, message: message}
}

// rejected turns a failed mutation into a 400 carrying the backend's message.
// Anything that is not a store error stays fatal.
func rejected(err error) error {
	var serr *store.Error
	if errors.As(err, &serr) {
		return badRequest("%s", serr.Message)
	}
	var oerr *store.StorageError
	if errors.As(err, &oerr) {
		return badRequest("%s", oerr.Message)
	}
	return err
}
