package server

import (
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"

	apperrors "github.com/voxgate/voxgate/internal/errors"
)

// HandleError central handler for all errors
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

// respondWithCode adapts HandleError to the rate-limit middleware's responder
// signature.
func respondWithCode(w http.ResponseWriter, r *http.Request, code, message string) {
	HandleError(w, r, errors.NewErrorEnvelope(code, message))
}
