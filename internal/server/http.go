package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkurosawa/todoapp-backend/internal/auth"
	"github.com/mkurosawa/todoapp-backend/internal/domain"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]any{"success": false, "error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// decodeJSON strictly decodes a request body into dst with
// human-readable messages for the usual malformed-body cases.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			return fmt.Errorf("request body contains an invalid value for the %q field", unmarshalTypeError.Field)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("request body contains unknown field %s", field)
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		default:
			return errors.New("request body could not be processed")
		}
	}
	return nil
}

// writeServiceError maps workflow errors to structured responses.
// Store and notification failures are logged in full but surfaced as
// generic messages.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	if verr, ok := domain.AsValidationError(err); ok {
		respondWithJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "validation failed",
			"fields":  verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		respondWithError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	case errors.Is(err, domain.ErrInvalidCredential):
		respondWithError(w, http.StatusUnauthorized, domain.ErrInvalidCredential.Error())
	case errors.Is(err, domain.ErrCsrfFailure):
		respondWithError(w, http.StatusForbidden, domain.ErrCsrfFailure.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, domain.ErrEmailTaken.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrNoOpChange):
		respondWithError(w, http.StatusBadRequest, domain.ErrNoOpChange.Error())
	case errors.Is(err, domain.ErrNoPasswordSet):
		respondWithError(w, http.StatusBadRequest, domain.ErrNoPasswordSet.Error())
	case errors.Is(err, domain.ErrInvalidToken):
		respondWithError(w, http.StatusBadRequest, domain.ErrInvalidToken.Error())
	case errors.Is(err, domain.ErrTokenExpired):
		respondWithError(w, http.StatusBadRequest, domain.ErrTokenExpired.Error())
	case errors.Is(err, domain.ErrNotificationFailure):
		log.Error().Err(err).Msg("notification failure")
		respondWithError(w, http.StatusBadGateway, "the confirmation email could not be sent, please try again later")
	default:
		log.Error().Err(err).Msg("unexpected service error")
		respondWithError(w, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
