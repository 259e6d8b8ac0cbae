package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkurosawa/todoapp-backend/internal/domain"
)

// TodoFilter narrows and orders a user's todo listing.
type TodoFilter struct {
	Completed *bool
	Priority  *domain.Priority
	Search    string
	SortBy    string // "createdAt", "dueDate" or "priority"
}

// TodoRepository defines the interface for todo data operations. Every
// lookup and mutation is scoped to an owning user; a todo belonging to
// someone else is indistinguishable from a missing one.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindForUser(ctx context.Context, id uint, userID uuid.UUID) (*domain.Todo, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter TodoFilter) ([]domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) error
	DeleteForUser(ctx context.Context, id uint, userID uuid.UUID) error
}

type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a new GORM todo repository.
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

func (r *gormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *gormTodoRepository) FindForUser(ctx context.Context, id uint, userID uuid.UUID) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &todo, nil
}

func (r *gormTodoRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter TodoFilter) ([]domain.Todo, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("content ILIKE ?", "%"+s+"%")
	}

	switch filter.SortBy {
	case "dueDate":
		q = q.Order("due_date ASC NULLS LAST")
	case "priority":
		q = q.Order(prioritySortExpr + " DESC")
	default:
		q = q.Order("created_at DESC")
	}

	var todos []domain.Todo
	if err := q.Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// prioritySortExpr maps the enum to its weight so priority ordering is
// done in the database rather than post-hoc.
const prioritySortExpr = `CASE priority
	WHEN 'URGENT' THEN 4
	WHEN 'HIGH' THEN 3
	WHEN 'MEDIUM' THEN 2
	WHEN 'LOW' THEN 1
	ELSE 0 END`

func (r *gormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

func (r *gormTodoRepository) DeleteForUser(ctx context.Context, id uint, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
