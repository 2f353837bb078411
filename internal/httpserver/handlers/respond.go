package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/logger"
)

const defaultMaxBodyBytes = 1 << 20

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps a domain error onto an HTTP status and a client-safe message.
// Server-side failures never leak their cause.
func errorStatus(err error) (status int, code, message string) {
	code = domain.ErrorCode(err)
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound, code, err.Error()
	case domain.CodeValidation:
		return http.StatusBadRequest, code, err.Error()
	case domain.CodeStore:
		return http.StatusInternalServerError, code, "storage unavailable"
	default:
		return http.StatusInternalServerError, code, "internal error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, code, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", loggerFields(r, err)...)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func loggerFields(r *http.Request, err error) []logger.Field {
	return []logger.Field{
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Error(err),
	}
}

// decodeJSON reads a single JSON document of at most limit bytes into dst.
// Malformed or empty bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is empty", domain.ErrValidation)
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrValidation, tooLarge.Limit)
		default:
			return fmt.Errorf("%w: malformed JSON: %v", domain.ErrValidation, err)
		}
	}
	return nil
}
