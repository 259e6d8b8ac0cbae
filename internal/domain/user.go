package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an end user of the todo application. Password is
// nullable: accounts created through an external provider carry no
// local credential.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string     `gorm:"type:text;not null" json:"name"`
	Email         string     `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Password      *string    `gorm:"type:text" json:"-"`
	Image         *string    `gorm:"type:text" json:"image,omitempty"`
	EmailVerified *time.Time `json:"emailVerified,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	Todos             []Todo             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Sessions          []Session          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Accounts          []Account          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	EmailChangeTokens []EmailChangeToken `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// HasPassword reports whether the user has a local credential set.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}
