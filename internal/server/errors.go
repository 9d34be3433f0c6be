package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/BillTheBest/cdap-security-extn/internal/authz"
	"github.com/BillTheBest/cdap-security-extn/internal/repository"
)

// errorResponse is the JSON body returned for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError translates service errors into HTTP responses. Typed
// authorization errors carry their own status; everything else is a 500 with
// the detail kept in the server log only.
func writeError(w http.ResponseWriter, err error) {
	var (
		invalidType  *authz.InvalidPrincipalTypeError
		unauthorized *authz.UnauthorizedError
	)

	switch {
	case errors.As(err, &invalidType):
		writeJSONError(w, http.StatusBadRequest, invalidType.Error())
	case errors.As(err, &unauthorized):
		writeJSONError(w, http.StatusForbidden, unauthorized.Error())
	case errors.Is(err, authz.ErrRoleNotFound), errors.Is(err, repository.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, authz.ErrRoleExists):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeJSON writes a JSON success response.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
