package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/mkurosawa/todoapp-backend/internal/auth"
	"github.com/mkurosawa/todoapp-backend/internal/config"
	"github.com/mkurosawa/todoapp-backend/internal/database"
	"github.com/mkurosawa/todoapp-backend/internal/mailer"
	"github.com/mkurosawa/todoapp-backend/internal/repository"
	"github.com/mkurosawa/todoapp-backend/internal/server"
	"github.com/mkurosawa/todoapp-backend/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, log zerolog.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if dbService != nil {
		if err := dbService.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database connection pool")
		}
	}

	done <- true
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	dbService, err := database.New(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	gormDB := dbService.GetDB()
	if err := database.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	userRepo := repository.NewGormUserRepository(gormDB)
	sessionRepo := repository.NewGormSessionRepository(gormDB)
	tokenRepo := repository.NewGormEmailChangeTokenRepository(gormDB)
	todoRepo := repository.NewGormTodoRepository(gormDB)

	codec := auth.NewTokenCodec([]byte(cfg.SessionSecret))
	cache := auth.NewSessionCache(time.Minute, 500)
	sessions := auth.NewSessionManager(sessionRepo, codec, cache, cfg.SessionTTL)
	csrf := auth.NewCSRFService(cfg.CSRFTTL, cfg.CookieSecure)
	hasher := auth.NewArgon2Hasher()
	smtp := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)

	authService := service.NewAuthService(userRepo, sessions, hasher, log)
	profileService := service.NewProfileService(userRepo, tokenRepo, sessions, hasher, smtp, cfg.AppBaseURL, log)
	todoService := service.NewTodoService(todoRepo, log)

	apiServer := server.NewServer(cfg, dbService, sessions, csrf, userRepo,
		authService, profileService, todoService, log)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, log, done)

	log.Info().Str("addr", apiServer.Addr).Msg("starting todoapp-backend")
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server")
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}
