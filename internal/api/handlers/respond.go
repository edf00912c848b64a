package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zatekoja/courtside/internal/api/middleware"
	"github.com/zatekoja/courtside/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/courtside/pkg/errors"
)

const maxBodyBytes = 64 << 10

// errorResponse is the body of every non-2xx JSON response
type errorResponse struct {
	Error      string `json:"error"`
	Type       string `json:"type,omitempty"`
	ExistingID string `json:"existing_id,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{Error: message})
}

// respondWithAppError maps an engine error onto its HTTP status. Unknown
// errors are logged and reported as a generic 500.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	body := errorResponse{Error: appErr.Message, Type: string(appErr.Type), ExistingID: appErr.ExistingID}
	status := statusFor(appErr.Type)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("type", string(appErr.Type)).Msg("request failed")
		if appErr.Type == apperrors.ErrorTypeInternal {
			body.Error = "internal server error"
		}
	}
	if appErr.Type == apperrors.ErrorTypeUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	respondWithJSON(w, status, body)
}

func statusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body, rejecting unknown fields
func decodeJSON(r *http.Request, w http.ResponseWriter, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required")
		}
		return apperrors.NewValidationError(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// requireUser returns the caller identity or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		respondWithAppError(w, r, apperrors.NewUnauthorizedError(middleware.UserIDHeader+" header is required"))
		return "", false
	}
	return userID, true
}
