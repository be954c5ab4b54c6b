package models

import "time"

// Role represents a guild role. Every role carries a base permission bit
// field; a member's guild-level permissions are the union of the @everyone
// role and every role assigned to the member.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique display name of the role (e.g., "moderator").
	Name string `gorm:"unique;size:100;not null"`
	// Permissions is the raw permission bit field granted by this role.
	Permissions uint64 `gorm:"not null;default:0"`
	// Position orders roles in the guild's role list (higher sits above).
	Position int `gorm:"not null;default:0"`
	// IsEveryone marks the implicit @everyone role. Exactly one such role
	// exists and it cannot be deleted.
	IsEveryone bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
