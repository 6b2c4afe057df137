package api

import (
	"encoding/json"
	"net/http"

	apperrors "watchstream/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidParameter, apperrors.ErrCodeInsufficientData, apperrors.ErrCodeConflict:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
