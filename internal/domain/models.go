// Package domain defines the persistence models for user accounts and chat
// transcripts. These types are mapped with GORM and form the core data layer
// of the assistant backend.
package domain

import (
	"time"
)

// Message roles. The chat_history table constrains the role column to
// exactly these two values.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Account represents a registered user. Accounts are created only after the
// signup passcode has been verified, and are never hard-deleted.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username: globally unique display name.
//   - Email: globally unique address; the login identifier.
//   - PasswordHash: bcrypt hash of the password. Never serialized to JSON
//     and never logged; the plaintext is hashed before any persistence.
//   - CreatedAt: creation timestamp (UTC).
type Account struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username"   gorm:"type:varchar(64);not null;uniqueIndex"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for Account.
func (Account) TableName() string { return "accounts" }

// ChatMessage is one turn of an account's conversation transcript. Messages
// are append-only: they are never mutated, and they are deleted only en masse
// by an explicit clear-history action scoped to one account.
//
// Retrieval must preserve creation order, so listings sort on
// (created_at, id) and the pair is covered by a composite index.
type ChatMessage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index:idx_user_msgs,priority:1"`
	Role      string    `json:"role"       gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_user_msgs,priority:2"`

	// Account is the owning account. Messages are cascade-deleted if the
	// account row is ever removed.
	Account Account `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_history" }
