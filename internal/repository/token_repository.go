package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkurosawa/todoapp-backend/internal/domain"
)

// EmailChangeTokenRepository defines the interface for pending
// email-change requests. Replace enforces the at-most-one-row-per-user
// invariant by deleting prior tokens in the same transaction that
// inserts the new one.
type EmailChangeTokenRepository interface {
	Replace(ctx context.Context, token *domain.EmailChangeToken) error
	FindByToken(ctx context.Context, raw string) (*domain.EmailChangeToken, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
	CountForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type gormEmailChangeTokenRepository struct {
	db *gorm.DB
}

// NewGormEmailChangeTokenRepository creates a new GORM token repository.
func NewGormEmailChangeTokenRepository(db *gorm.DB) EmailChangeTokenRepository {
	return &gormEmailChangeTokenRepository{db: db}
}

func (r *gormEmailChangeTokenRepository) Replace(ctx context.Context, token *domain.EmailChangeToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&domain.EmailChangeToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

func (r *gormEmailChangeTokenRepository) FindByToken(ctx context.Context, raw string) (*domain.EmailChangeToken, error) {
	var token domain.EmailChangeToken
	err := r.db.WithContext(ctx).Where("token = ?", raw).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *gormEmailChangeTokenRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.EmailChangeToken{}).Error
}

func (r *gormEmailChangeTokenRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.EmailChangeToken{}).Error
}

func (r *gormEmailChangeTokenRepository) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.EmailChangeToken{}).
		Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
