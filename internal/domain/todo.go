package domain

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks a todo item.
type Priority string

const (
	PriorityNone   Priority = "NONE"
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Valid reports whether p is one of the five known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Weight orders priorities for sorting, URGENT highest.
func (p Priority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Todo is a task item owned by exactly one user.
type Todo struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Content   string     `gorm:"type:varchar(255);not null" json:"content"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Priority  Priority   `gorm:"type:text;not null;default:'NONE'" json:"priority"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	User User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
}
