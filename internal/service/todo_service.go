package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mkurosawa/todoapp-backend/internal/auth"
	"github.com/mkurosawa/todoapp-backend/internal/domain"
	"github.com/mkurosawa/todoapp-backend/internal/repository"
)

// CreateTodoRequest holds the data needed to create a new todo.
type CreateTodoRequest struct {
	Content  string  `json:"content"`
	DueDate  *string `json:"dueDate"`
	Priority *string `json:"priority"`
}

// UpdateTodoRequest holds the data for updating an existing todo.
// Pointer fields distinguish omitted from zero-valued input.
type UpdateTodoRequest struct {
	Content   *string `json:"content"`
	Completed *bool   `json:"completed"`
	DueDate   *string `json:"dueDate"`
	Priority  *string `json:"priority"`
}

// TodoService defines user-scoped operations for managing todos.
// Every operation acts only on rows owned by the given identity; a
// todo owned by someone else reads as NotFound.
type TodoService interface {
	CreateTodo(ctx context.Context, identity *auth.Identity, req CreateTodoRequest) (*domain.Todo, error)
	ListTodos(ctx context.Context, identity *auth.Identity, filter repository.TodoFilter) ([]domain.Todo, error)
	UpdateTodo(ctx context.Context, identity *auth.Identity, id uint, req UpdateTodoRequest) (*domain.Todo, error)
	ToggleComplete(ctx context.Context, identity *auth.Identity, id uint) (*domain.Todo, error)
	UpdateTodoPriority(ctx context.Context, identity *auth.Identity, id uint, priority string) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, identity *auth.Identity, id uint) error
}

type todoService struct {
	repo repository.TodoRepository
	log  zerolog.Logger
}

// NewTodoService creates a new todo service.
func NewTodoService(repo repository.TodoRepository, log zerolog.Logger) TodoService {
	return &todoService{repo: repo, log: log}
}

func validateContent(content string) *domain.ValidationError {
	n := utf8.RuneCountInString(content)
	if n < 1 {
		return domain.NewValidationError("content", "content is required")
	}
	if n > 255 {
		return domain.NewValidationError("content", "content must be at most 255 characters")
	}
	return nil
}

func parseDueDate(raw *string) (*time.Time, *domain.ValidationError) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, domain.NewValidationError("dueDate", "dueDate must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func parsePriority(raw *string) (domain.Priority, *domain.ValidationError) {
	if raw == nil || *raw == "" {
		return domain.PriorityNone, nil
	}
	p := domain.Priority(strings.ToUpper(*raw))
	if !p.Valid() {
		return "", domain.NewValidationError("priority", "priority must be one of NONE, LOW, MEDIUM, HIGH, URGENT")
	}
	return p, nil
}

func (s *todoService) CreateTodo(ctx context.Context, identity *auth.Identity, req CreateTodoRequest) (*domain.Todo, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}

	content := strings.TrimSpace(req.Content)
	if verr := validateContent(content); verr != nil {
		return nil, verr
	}
	dueDate, verr := parseDueDate(req.DueDate)
	if verr != nil {
		return nil, verr
	}
	priority, verr := parsePriority(req.Priority)
	if verr != nil {
		return nil, verr
	}

	todo := &domain.Todo{
		Content:  content,
		DueDate:  dueDate,
		Priority: priority,
		UserID:   identity.UserID,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

func (s *todoService) ListTodos(ctx context.Context, identity *auth.Identity, filter repository.TodoFilter) ([]domain.Todo, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	todos, err := s.repo.ListForUser(ctx, identity.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, identity *auth.Identity, id uint, req UpdateTodoRequest) (*domain.Todo, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}

	todo, err := s.repo.FindForUser(ctx, id, identity.UserID)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if verr := validateContent(content); verr != nil {
			return nil, verr
		}
		todo.Content = content
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	if req.DueDate != nil {
		dueDate, verr := parseDueDate(req.DueDate)
		if verr != nil {
			return nil, verr
		}
		todo.DueDate = dueDate
	}
	if req.Priority != nil {
		priority, verr := parsePriority(req.Priority)
		if verr != nil {
			return nil, verr
		}
		todo.Priority = priority
	}

	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return todo, nil
}

func (s *todoService) ToggleComplete(ctx context.Context, identity *auth.Identity, id uint) (*domain.Todo, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}

	todo, err := s.repo.FindForUser(ctx, id, identity.UserID)
	if err != nil {
		return nil, err
	}

	todo.Completed = !todo.Completed
	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to toggle todo: %w", err)
	}
	return todo, nil
}

func (s *todoService) UpdateTodoPriority(ctx context.Context, identity *auth.Identity, id uint, priority string) (*domain.Todo, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}

	p, verr := parsePriority(&priority)
	if verr != nil {
		return nil, verr
	}

	todo, err := s.repo.FindForUser(ctx, id, identity.UserID)
	if err != nil {
		return nil, err
	}

	todo.Priority = p
	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to update priority: %w", err)
	}
	return todo, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, identity *auth.Identity, id uint) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	return s.repo.DeleteForUser(ctx, id, identity.UserID)
}
