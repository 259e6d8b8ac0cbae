package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes classifies the HTTP surface: public endpoints, the
// guest-only auth surface, and the authenticated group. Gates run
// before any handler logic; CSRF validation applies to every
// state-changing method under /api.
func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.verifyCSRF)

		r.Get("/csrf", s.issueCSRFHandler)

		// Token in the link is the credential; no session needed.
		r.Get("/verify-email", s.verifyEmailHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.redirectIfAuthenticated)
			r.Use(httprate.LimitByIP(20, time.Minute))
			r.Post("/auth/register", s.registerHandler)
			r.Post("/auth/login", s.loginHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/logout", s.logoutHandler)
			r.Get("/auth/session", s.sessionHandler)

			r.Post("/profile/name", s.updateNameHandler)
			r.Post("/profile/email", s.initiateEmailChangeHandler)
			r.Post("/profile/delete", s.deleteAccountHandler)

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", s.listTodosHandler)
				r.Post("/", s.createTodoHandler)
				r.Patch("/{id}", s.updateTodoHandler)
				r.Post("/{id}/toggle", s.toggleTodoHandler)
				r.Post("/{id}/priority", s.updateTodoPriorityHandler)
				r.Delete("/{id}", s.deleteTodoHandler)
			})
		})
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
