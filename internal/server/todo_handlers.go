package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkurosawa/todoapp-backend/internal/domain"
	"github.com/mkurosawa/todoapp-backend/internal/repository"
	"github.com/mkurosawa/todoapp-backend/internal/service"
)

func todoIDFromRequest(r *http.Request) (uint, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func todoFilterFromQuery(r *http.Request) repository.TodoFilter {
	q := r.URL.Query()
	filter := repository.TodoFilter{
		Search: q.Get("search"),
		SortBy: q.Get("sortBy"),
	}
	if raw := q.Get("completed"); raw != "" {
		if completed, err := strconv.ParseBool(raw); err == nil {
			filter.Completed = &completed
		}
	}
	if raw := q.Get("priority"); raw != "" {
		p := domain.Priority(raw)
		if p.Valid() {
			filter.Priority = &p
		}
	}
	return filter
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todoService.ListTodos(r.Context(), identityFromContext(r.Context()), todoFilterFromQuery(r))
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "todos": todos})
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := s.todoService.CreateTodo(r.Context(), identityFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "todo": todo})
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoIDFromRequest(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid todo ID provided")
		return
	}

	var req service.UpdateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := s.todoService.UpdateTodo(r.Context(), identityFromContext(r.Context()), id, req)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "todo": todo})
}

func (s *Server) toggleTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoIDFromRequest(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid todo ID provided")
		return
	}

	todo, err := s.todoService.ToggleComplete(r.Context(), identityFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "todo": todo})
}

func (s *Server) updateTodoPriorityHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoIDFromRequest(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid todo ID provided")
		return
	}

	var req struct {
		Priority string `json:"priority"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := s.todoService.UpdateTodoPriority(r.Context(), identityFromContext(r.Context()), id, req.Priority)
	if err != nil {
		writeServiceError(w, s.log, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "todo": todo})
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := todoIDFromRequest(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid todo ID provided")
		return
	}

	if err := s.todoService.DeleteTodo(r.Context(), identityFromContext(r.Context()), id); err != nil {
		writeServiceError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
