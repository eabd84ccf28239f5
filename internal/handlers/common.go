package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"eventboard-backend/internal/middleware"
	"eventboard-backend/internal/repository"
	"eventboard-backend/internal/services"

	"github.com/rs/zerolog"
)

const serverErrorMessage = "Server error"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the error shape of the read endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// validatorError is one entry of ValidationResponse.Errors
type validatorError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
	Path    string `json:"path"`
}

// ValidationResponse mirrors the document-store validation error body
// clients of this API already parse.
type ValidationResponse struct {
	Errors  map[string]validatorError `json:"errors"`
	Message string                    `json:"_message"`
	Name    string                    `json:"name"`
	Full    string                    `json:"message"`
}

func newValidationResponse(verr *services.ValidationError) ValidationResponse {
	resp := ValidationResponse{
		Errors:  make(map[string]validatorError, len(verr.Fields)),
		Message: verr.Model + " validation failed",
		Name:    "ValidationError",
		Full:    verr.Error(),
	}
	for path, fe := range verr.Fields {
		name := "ValidatorError"
		if fe.Kind != "required" {
			name = "CastError"
		}
		resp.Errors[path] = validatorError{Name: name, Message: fe.Message, Kind: fe.Kind, Path: path}
	}
	return resp
}

func respondJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondMessage sends a {"message": ...} error response
func respondMessage(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, MessageResponse{Message: message}, statusCode)
}

// respondNull answers a lookup that matched nothing
func respondNull(w http.ResponseWriter) {
	respondJSON(w, nil, http.StatusOK)
}

// respondPassthrough reports a failed lookup with a 200 status, the way
// existing clients expect it.
func respondPassthrough(w http.ResponseWriter, r *http.Request, err error, msg string) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Msg(msg)
	respondError(w, err.Error(), http.StatusOK)
}

// respondWriteError maps create and update failures to responses.
func respondWriteError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger := zerolog.Ctx(r.Context())
	if subject := middleware.GetSubject(r.Context()); subject != "" {
		l := logger.With().Str("subject", subject).Logger()
		logger = &l
	}

	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrMissingImage):
		logger.Warn().Err(err).Msg(msg)
		respondError(w, "No image file uploaded", http.StatusBadRequest)
	case errors.Is(err, services.ErrImageIO):
		logger.Error().Err(err).Msg(msg)
		respondError(w, "Error reading and encoding image", http.StatusInternalServerError)
	case errors.As(err, &verr):
		logger.Warn().Err(err).Msg(msg)
		respondJSON(w, newValidationResponse(verr), http.StatusInternalServerError)
	case errors.Is(err, repository.ErrNotFound):
		respondNull(w)
	default:
		logger.Error().Err(err).Msg(msg)
		respondError(w, err.Error(), http.StatusInternalServerError)
	}
}

// respondServerError sends the generic read failure response
func respondServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
	respondMessage(w, serverErrorMessage, http.StatusInternalServerError)
}
