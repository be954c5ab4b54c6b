package models

import "time"

// Member represents a guild member. Members hold zero or more roles via
// MemberRole rows; the implicit @everyone role always applies and is not
// stored per member.
type Member struct {
	// ID is the unique identifier for the member.
	ID uint64 `gorm:"primaryKey"`
	// Username is the unique account name of the member.
	Username string `gorm:"unique;size:100;not null"`
	// Nickname is the per-guild display name, empty when unset.
	Nickname string `gorm:"size:100"`
	// Bot marks automated accounts authenticated through API tokens.
	Bot bool `gorm:"default:false"`
	// Roles are the roles assigned to this member (loaded via the
	// member_roles join table).
	Roles []Role `gorm:"many2many:member_roles"`
	// CreatedAt is the timestamp when the member was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the member was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Member model.
// This overrides GORM's default pluralized table naming.
func (Member) TableName() string {
	return "members"
}
