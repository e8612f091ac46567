package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

const defaultTopPlayers = 10

type QuizHandler struct {
	service    *app.QuizService
	topPlayers int
}

func NewQuizHandler(service *app.QuizService, topPlayers int) *QuizHandler {
	if topPlayers <= 0 {
		topPlayers = defaultTopPlayers
	}
	return &QuizHandler{service: service, topPlayers: topPlayers}
}

func (h *QuizHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.createQuiz)
	r.Get("/current", h.getCurrentQuiz) // ?subject=math
	r.Route("/{quizID}", func(r chi.Router) {
		r.Get("/", h.getQuizStatus)
		r.Post("/attempts", h.submitAttempt)
		r.Get("/attempts/{userID}", h.getUserAttempt)
		r.Get("/attempts/{userID}/exists", h.hasUserAttempted)
		r.Get("/leaderboard", h.getLeaderboard)
		r.Get("/leaderboard/{userID}", h.getUserRank)
		r.Get("/top", h.getTopPlayers)
		r.Get("/prize-pool", h.getPrizePool)
		r.Put("/prize-pool", h.setPrizePool)
	})
}

// quizView is a quiz together with its schedule-derived status.
type quizView struct {
	domain.Quiz
	TimeStatus domain.TimeStatus `json:"timeStatus"`
}

func (h *QuizHandler) view(quiz domain.Quiz) quizView {
	return quizView{Quiz: quiz, TimeStatus: h.service.TimeStatus(quiz)}
}

func (h *QuizHandler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var draft domain.QuizDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if err := draft.Validate(); err != nil {
		respondError(w, err)
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), draft)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{"quizId": quiz.ID, "data": quiz})
}

func (h *QuizHandler) getCurrentQuiz(w http.ResponseWriter, r *http.Request) {
	subject := domain.Subject(r.URL.Query().Get("subject"))
	if !subject.Valid() {
		respondMessage(w, http.StatusBadRequest, "Please select a valid subject")
		return
	}

	quiz, err := h.service.GetCurrentQuiz(r.Context(), subject)
	if err != nil {
		respondError(w, err)
		return
	}
	if quiz == nil {
		respondData(w, http.StatusOK, nil)
		return
	}
	respondData(w, http.StatusOK, h.view(*quiz))
}

func (h *QuizHandler) getQuizStatus(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, h.view(quiz))
}

func (h *QuizHandler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	var sub domain.AttemptSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	sub.QuizID = chi.URLParam(r, "quizID")
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		sub.UserID = claims.UserID
		if claims.DisplayName != "" {
			sub.DisplayName = claims.DisplayName
		}
	}

	attempt, err := h.service.SubmitQuizAttempt(r.Context(), sub)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{"attemptId": attempt.ID, "data": attempt})
}

func (h *QuizHandler) getUserAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.service.GetUserAttempt(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "quizID"))
	if err != nil {
		respondError(w, err)
		return
	}
	if attempt == nil {
		respondData(w, http.StatusOK, nil)
		return
	}
	respondData(w, http.StatusOK, attempt)
}

func (h *QuizHandler) hasUserAttempted(w http.ResponseWriter, r *http.Request) {
	attempted, err := h.service.HasUserAttempted(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "quizID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{"hasAttempted": attempted})
}

func (h *QuizHandler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.GetLeaderboard(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		respondError(w, err)
		return
	}
	if lb == nil {
		respondData(w, http.StatusOK, nil)
		return
	}
	respondData(w, http.StatusOK, lb)
}

func (h *QuizHandler) getUserRank(w http.ResponseWriter, r *http.Request) {
	rank, err := h.service.GetUserRank(r.Context(), chi.URLParam(r, "quizID"), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, rank)
}

func (h *QuizHandler) getTopPlayers(w http.ResponseWriter, r *http.Request) {
	n := h.topPlayers
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondMessage(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = parsed
	}

	players, err := h.service.GetTopPlayers(r.Context(), chi.URLParam(r, "quizID"), n)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, players)
}

func (h *QuizHandler) getPrizePool(w http.ResponseWriter, r *http.Request) {
	pool, err := h.service.GetQuizPrizePool(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, pool)
}

func (h *QuizHandler) setPrizePool(w http.ResponseWriter, r *http.Request) {
	var pool domain.PrizePool
	if err := json.NewDecoder(r.Body).Decode(&pool); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	pool.QuizID = chi.URLParam(r, "quizID")

	if _, err := h.service.GetQuiz(r.Context(), pool.QuizID); err != nil {
		respondError(w, err)
		return
	}
	saved, err := h.service.SetQuizPrizePool(r.Context(), pool)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, saved)
}
