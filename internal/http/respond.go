package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"moncash/internal/core"
)

const maxBodyBytes = 1 << 20

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(r.Context(), "encode response failed", "error", err, "path", r.URL.Path)
	}
}

func respondSuccess(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, successResponse{Success: true})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, errorResponse{Error: message})
}

// respondServiceError maps the error taxonomy to status codes. Unrecognized
// errors become an opaque 500; the detail stays in the log.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrDuplicateEmail):
		respondError(w, r, http.StatusConflict, core.ErrDuplicateEmail.Error())
	case errors.Is(err, core.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, core.ErrUserNotFound.Error())
	case errors.Is(err, core.ErrInvalidCredentials):
		respondError(w, r, http.StatusUnauthorized, core.ErrInvalidCredentials.Error())
	case errors.Is(err, core.ErrInvalidToken):
		respondError(w, r, http.StatusUnauthorized, core.ErrInvalidToken.Error())
	case errors.Is(err, core.ErrUnauthenticated):
		respondError(w, r, http.StatusUnauthorized, core.ErrUnauthenticated.Error())
	case errors.Is(err, core.ErrNotFound):
		respondError(w, r, http.StatusNotFound, core.ErrNotFound.Error())
	case errors.Is(err, core.ErrInvalidStatus):
		respondError(w, r, http.StatusUnprocessableEntity, core.ErrInvalidStatus.Error())
	case errors.Is(err, core.ErrDelivery):
		respondError(w, r, http.StatusBadGateway, core.ErrDelivery.Error())
	case errors.Is(err, core.ErrStoreUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, core.ErrStoreUnavailable.Error())
	default:
		slog.ErrorContext(r.Context(), "unhandled service error", "error", err, "path", r.URL.Path)
		respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads the request body into dst, capping the body size.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", core.ErrInvalidInput)
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(r.PathValue("id"), "%d", &id); err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid id", core.ErrInvalidInput)
	}
	return id, nil
}

// parseRange reads optional ?start and ?end query parameters. Both must be
// present to form a range; one without the other is invalid input.
func parseRange(r *http.Request) (*core.DateRange, error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" && endStr == "" {
		return nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, fmt.Errorf("%w: start and end must be provided together", core.ErrInvalidInput)
	}
	start, err := core.ParseDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date", core.ErrInvalidInput)
	}
	end, err := core.ParseDate(endStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date", core.ErrInvalidInput)
	}
	return &core.DateRange{Start: start, End: end}, nil
}
