package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"weekly-quiz-service/internal/auth"
	"weekly-quiz-service/internal/domain"
)

// envelope is the uniform response body. Callers branch on Success.
type envelope map[string]any

func respondJSON(w http.ResponseWriter, code int, payload envelope) {
	payload["success"] = code < http.StatusBadRequest
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondData(w http.ResponseWriter, code int, data any) {
	respondJSON(w, code, envelope{"data": data})
}

func respondMessage(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, envelope{"error": message})
}

func respondError(w http.ResponseWriter, err error) {
	body := envelope{"error": err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body["errors"] = ve.Errors
	}
	respondJSON(w, statusFromError(err), body)
}

// statusFromError maps domain errors to HTTP status codes.
func statusFromError(err error) int {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve),
		errors.Is(err, domain.ErrInvalidSubmission),
		errors.Is(err, domain.ErrNoQuestions):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrLeaderboardNotFound),
		errors.Is(err, domain.ErrPrizePoolNotFound),
		errors.Is(err, domain.ErrUserNotRanked):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyAttempted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
