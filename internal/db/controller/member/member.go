// Package member provides CRUD operations for guild members and their role
// assignments.
package member

import (
	"errors"

	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/controller/role"
	"github.com/parley-chat/parley/internal/db/models"
)

var (
	// ErrMemberNotFound is returned when a member is not found.
	ErrMemberNotFound = errors.New("member not found")
	// ErrMemberUsernameEmpty is returned when attempting to create a member with an empty username.
	ErrMemberUsernameEmpty = errors.New("member username cannot be empty")
	// ErrMemberAlreadyExists is returned when attempting to create a member whose username is taken.
	ErrMemberAlreadyExists = errors.New("member already exists")
	// ErrRoleNotAssigned is returned when removing a role the member does not hold.
	ErrRoleNotAssigned = errors.New("role is not assigned to member")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetByID retrieves a member by ID, with assigned roles preloaded.
func GetByID(db *gorm.DB, id uint64) (*models.Member, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var m models.Member
	result := db.Preload("Roles").First(&m, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, result.Error
	}

	return &m, nil
}

// GetAll retrieves all members with their roles preloaded.
func GetAll(db *gorm.DB) ([]models.Member, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var members []models.Member
	result := db.Preload("Roles").Find(&members)
	if result.Error != nil {
		return nil, result.Error
	}

	return members, nil
}

// Create creates a new member.
func Create(db *gorm.DB, username, nickname string, bot bool) (*models.Member, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if username == "" {
		return nil, ErrMemberUsernameEmpty
	}

	var existing models.Member
	result := db.Where("username = ?", username).First(&existing)
	if result.Error == nil {
		return nil, ErrMemberAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	m := &models.Member{
		Username: username,
		Nickname: nickname,
		Bot:      bot,
	}

	result = db.Create(m)
	if result.Error != nil {
		return nil, result.Error
	}

	return m, nil
}

// Delete removes a member by ID. Role assignments and thread memberships
// are removed by cascade.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	m, err := GetByID(db, id)
	if err != nil {
		return err
	}

	return db.Select("Roles").Delete(m).Error
}

// AssignRole assigns a role to a member. Assigning an already-held role is
// a no-op.
func AssignRole(db *gorm.DB, memberID, roleID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := GetByID(db, memberID); err != nil {
		return err
	}

	if _, err := role.GetByID(db, roleID); err != nil {
		return err
	}

	var existing models.MemberRole
	result := db.Where("member_id = ? AND role_id = ?", memberID, roleID).First(&existing)
	if result.Error == nil {
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return db.Create(&models.MemberRole{MemberID: memberID, RoleID: roleID}).Error
}

// RemoveRole removes a role assignment from a member.
func RemoveRole(db *gorm.DB, memberID, roleID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("member_id = ? AND role_id = ?", memberID, roleID).
		Delete(&models.MemberRole{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRoleNotAssigned
	}

	return nil
}

// GetRoles retrieves the roles assigned to a member.
func GetRoles(db *gorm.DB, memberID uint64) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	m, err := GetByID(db, memberID)
	if err != nil {
		return nil, err
	}

	return m.Roles, nil
}
