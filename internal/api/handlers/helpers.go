package handlers

import (
	"delivery-insertion-planner/internal/domain"
	"delivery-insertion-planner/internal/services"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeJSON reads exactly one JSON object into v and validates it.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

// writeServiceError maps planner errors to HTTP statuses. Input errors are
// reported verbatim; anything else is logged and hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrJobInFlight):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStopLimitExceeded):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNoDepot),
		errors.Is(err, domain.ErrAnchorNotFound),
		errors.Is(err, domain.ErrAnchorNotUsed),
		errors.Is(err, domain.ErrAnchorIsDepot),
		errors.Is(err, domain.ErrInvalidInsertionMode),
		errors.Is(err, domain.ErrInvalidCoordinates):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func isInputError(err error) bool {
	return errors.Is(err, services.ErrJobInFlight) ||
		errors.Is(err, domain.ErrStopLimitExceeded) ||
		errors.Is(err, domain.ErrInvalidCoordinates)
}
