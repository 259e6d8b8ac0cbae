package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record behind a login. The cookie holds a
// signed token carrying this row's ID; deleting the row revokes the
// login even before the signed token expires.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	IPAddress string    `gorm:"type:text" json:"ipAddress"`
	UserAgent string    `gorm:"type:text" json:"userAgent"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	User User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
}

// Expired reports whether the session row is past its lifetime.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
