package models

import "time"

// ThreadMember represents a member's participation in a thread. For private
// threads this is the access list; for public threads it tracks who joined.
type ThreadMember struct {
	// ThreadID is the ID of the thread.
	ThreadID uint64 `gorm:"primaryKey;column:thread_id"`
	// MemberID is the ID of the participating member.
	MemberID uint64 `gorm:"primaryKey;column:member_id"`
	// Thread is the associated thread (loaded via foreign key).
	Thread Thread `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE"`
	// Member is the associated member (loaded via foreign key).
	Member Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE"`
	// JoinedAt is when the member joined the thread.
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the database table name for the ThreadMember model.
// This overrides GORM's default pluralized table naming.
func (ThreadMember) TableName() string {
	return "thread_members"
}
