package server

import (
	"net/http"

	"github.com/mkurosawa/todoapp-backend/internal/service"
)

func (s *Server) updateNameHandler(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateNameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.profileService.UpdateName(r.Context(), identityFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "profile name updated",
		"user":    user,
	})
}

func (s *Server) initiateEmailChangeHandler(w http.ResponseWriter, r *http.Request) {
	var req service.EmailChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := s.profileService.InitiateEmailChange(r.Context(), identityFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

func (s *Server) verifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.profileService.VerifyEmailChange(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}

	// All sessions of the user were just revoked; drop the caller's
	// cookie too so they are sent through login cleanly.
	s.clearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  result.Message,
		"newEmail": result.NewEmail,
	})
}

func (s *Server) deleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req service.DeleteAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.profileService.DeleteAccount(r.Context(), identityFromContext(r.Context()), req); err != nil {
		writeServiceError(w, s.log, err)
		return
	}

	s.clearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "your account and all related data have been deleted",
		"redirect": "/",
	})
}
