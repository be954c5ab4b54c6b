// Package role provides CRUD operations for guild roles.
package role

import (
	"errors"

	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when attempting to create/update a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleAlreadyExists is returned when attempting to create a role that already exists.
	ErrRoleAlreadyExists = errors.New("role already exists")
	// ErrEveryoneRoleImmutable is returned when attempting to delete the @everyone role.
	ErrEveryoneRoleImmutable = errors.New("the everyone role cannot be deleted")
	// ErrEveryoneRoleMissing is returned when the @everyone role has not been seeded.
	ErrEveryoneRoleMissing = errors.New("everyone role is missing")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a role by its name.
func Get(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var role models.Role
	result := db.Where(nameQueryPattern, name).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &role, nil
}

// GetByID retrieves a role by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role
	result := db.First(&role, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &role, nil
}

// GetAll retrieves all roles ordered by position (highest first).
func GetAll(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	result := db.Order("position DESC, id ASC").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// GetEveryone retrieves the implicit @everyone role.
func GetEveryone(db *gorm.DB) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role
	result := db.Where("is_everyone = ?", true).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEveryoneRoleMissing
		}
		return nil, result.Error
	}

	return &role, nil
}

// Create creates a new role with the given name, permission bit field and
// position. Permission bits outside the registered flag space are rejected.
func Create(db *gorm.DB, name string, perms uint64, position int) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	if _, err := permissions.New(perms); err != nil {
		return nil, err
	}

	// Check if role already exists
	var existing models.Role
	result := db.Where(nameQueryPattern, name).First(&existing)
	if result.Error == nil {
		return nil, ErrRoleAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	role := &models.Role{
		Name:        name,
		Permissions: perms,
		Position:    position,
	}

	result = db.Create(role)
	if result.Error != nil {
		return nil, result.Error
	}

	return role, nil
}

// Update updates a role's name, permission bit field and position.
func Update(db *gorm.DB, id uint64, name string, perms uint64, position int) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	if _, err := permissions.New(perms); err != nil {
		return nil, err
	}

	role, err := GetByID(db, id)
	if err != nil {
		return nil, err
	}

	role.Name = name
	role.Permissions = perms
	role.Position = position

	result := db.Save(role)
	if result.Error != nil {
		return nil, result.Error
	}

	return role, nil
}

// Delete removes a role by its ID. The @everyone role cannot be deleted.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	role, err := GetByID(db, id)
	if err != nil {
		return err
	}

	if role.IsEveryone {
		return ErrEveryoneRoleImmutable
	}

	return db.Delete(role).Error
}
