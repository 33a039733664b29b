package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/easel-labs/easel/pkg/usecase"
	"github.com/easel-labs/easel/pkg/utils/logging"
)

// Server exposes the agent pipeline over a JSON/SSE REST surface
type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

// New creates the HTTP server
func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/history", s.getHistory)
			r.Post("/prompts", s.postPrompt)
			r.Post("/cancel", s.cancelSession)
			r.Post("/items/{index}/accept", s.acceptItem)
			r.Post("/items/{index}/reject", s.rejectItem)
			r.Post("/groups/{index}/accept", s.acceptGroup)
			r.Post("/groups/{index}/reject", s.rejectGroup)
		})
		r.Get("/board", s.getBoard)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
