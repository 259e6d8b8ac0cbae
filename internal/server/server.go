package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkurosawa/todoapp-backend/internal/auth"
	"github.com/mkurosawa/todoapp-backend/internal/config"
	"github.com/mkurosawa/todoapp-backend/internal/database"
	"github.com/mkurosawa/todoapp-backend/internal/repository"
	"github.com/mkurosawa/todoapp-backend/internal/service"
)

// Server holds the HTTP surface's dependencies.
type Server struct {
	db       database.Service
	sessions *auth.SessionManager
	csrf     *auth.CSRFService
	users    repository.UserRepository

	authService    service.AuthService
	profileService service.ProfileService
	todoService    service.TodoService

	allowedOrigins []string
	cookieSecure   bool
	log            zerolog.Logger
}

// NewServer wires the application server and returns the configured
// *http.Server ready for ListenAndServe.
func NewServer(
	cfg config.Config,
	db database.Service,
	sessions *auth.SessionManager,
	csrf *auth.CSRFService,
	users repository.UserRepository,
	authService service.AuthService,
	profileService service.ProfileService,
	todoService service.TodoService,
	log zerolog.Logger,
) *http.Server {
	appServer := &Server{
		db:             db,
		sessions:       sessions,
		csrf:           csrf,
		users:          users,
		authService:    authService,
		profileService: profileService,
		todoService:    todoService,
		allowedOrigins: cfg.AllowedOrigins,
		cookieSecure:   cfg.CookieSecure,
		log:            log,
	}

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
