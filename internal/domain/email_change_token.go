package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmailChangeToken is a pending, single-use request to move a user to
// a new email address. At most one row exists per user: issuing a new
// request replaces any prior one. The row is deleted on successful
// verification and on expiry detection.
type EmailChangeToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	OldEmail  string    `gorm:"type:text;not null" json:"oldEmail"`
	NewEmail  string    `gorm:"type:text;not null" json:"newEmail"`
	Token     string    `gorm:"type:text;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	User User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
}

// Expired reports whether the token is past its 24h window.
func (t *EmailChangeToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
