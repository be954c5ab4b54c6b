package models

// MemberRole represents the many-to-many relationship between members and
// roles. Deleting either side removes the assignment (CASCADE).
type MemberRole struct {
	// MemberID is the ID of the member in this assignment.
	MemberID uint64 `gorm:"primaryKey;column:member_id"`
	// RoleID is the ID of the assigned role.
	RoleID uint64 `gorm:"primaryKey;column:role_id"`
	// Member is the associated member (loaded via foreign key).
	Member Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE"`
	// Role is the associated role (loaded via foreign key).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the MemberRole model.
// This overrides GORM's default pluralized table naming.
func (MemberRole) TableName() string {
	return "member_roles"
}
