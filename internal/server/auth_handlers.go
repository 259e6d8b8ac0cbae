package server

import (
	"net/http"

	"github.com/mkurosawa/todoapp-backend/internal/service"
)

func (s *Server) issueCSRFHandler(w http.ResponseWriter, r *http.Request) {
	token, err := s.csrf.Issue(w)
	if err != nil {
		s.log.Error().Err(err).Msg("csrf issuance failed")
		respondWithError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "csrfToken": token})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "registration complete, you can now log in",
		"user":    user,
	})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.authService.Login(r.Context(), req, r.RemoteAddr, r.UserAgent())
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}

	s.setSessionCookie(w, result.Token, s.sessions.TTL())
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    result.User,
		"session": result.Session,
	})
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if err := s.authService.Logout(r.Context(), identity); err != nil {
		writeServiceError(w, s.log, err)
		return
	}

	s.clearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "logged out"})
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())

	user, err := s.users.FindByID(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}
