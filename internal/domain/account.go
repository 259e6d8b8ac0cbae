package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account links a user to an external identity provider. No provider
// flows are implemented here; the rows exist so that federated-only
// users are representable and so account deletion can sweep them.
type Account struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Provider          string    `gorm:"type:text;not null" json:"provider"`
	ProviderAccountID string    `gorm:"type:text;not null" json:"providerAccountId"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`

	User User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
}
