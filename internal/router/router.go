package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"blogstream-backend/internal/handlers"
	"blogstream-backend/internal/middleware"
)

func New(
	generateHandler *handlers.GenerateHandler,
	streamHandler *handlers.StreamHandler,
	generateLimiter *middleware.RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PeerAddr)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS())

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Generation Routes ────
	r.Group(func(r chi.Router) {
		r.Use(generateLimiter.Middleware)
		r.Post("/generate", generateHandler.Generate)
		r.Get("/ws/generate", streamHandler.HandleWebSocket)
	})

	return r
}
