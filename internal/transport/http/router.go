package http

import (
	"log/slog"
	"net/http"
	"time"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/auth"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 30 * time.Second

// RouterConfig collects what the HTTP surface needs. JWT is optional; when
// nil the API trusts identity fields sent in request bodies.
type RouterConfig struct {
	Service         *app.QuizService
	JWT             *auth.JWTService
	TopPlayersLimit int
	Logger          *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Websockets outlive the request timeout, so they sit outside that group.
	r.Get("/ws/leaderboard", NewWSHandler(cfg.Service, cfg.Logger).ServeWS)

	r.Group(func(api chi.Router) {
		api.Use(chiMiddleware.Timeout(requestTimeout))
		if cfg.JWT != nil {
			api.Use(Authenticator(cfg.JWT))
		}
		quizHandler := NewQuizHandler(cfg.Service, cfg.TopPlayersLimit)
		api.Route("/api/v1/quizzes", quizHandler.RegisterRoutes)
	})

	return r
}
