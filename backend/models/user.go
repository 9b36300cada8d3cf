package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name         string
	Email        string `gorm:"unique;not null"`
	PasswordHash string // empty for OAuth-only accounts
	Provider     string `gorm:"default:local"` // local, oauth
	Role         string `gorm:"default:agent"` // agent, admin
}

// UserSession backs a signed JWT: the token carries the session's TokenID as
// jti, and sign-out deletes the row so the token stops working.
type UserSession struct {
	gorm.Model
	UserID    uint   `gorm:"index;not null"`
	TokenID   string `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time
}
