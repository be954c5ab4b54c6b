package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/db/controller/apitoken"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
)

// seed creates the implicit @everyone role, an admin role, an admin member
// and their API token on first start. The token credential is logged once
// and cannot be recovered later.
func seed(db *gorm.DB) {
	var count int64
	db.Model(&models.Role{}).Count(&count)

	if count > 0 {
		return
	}

	everyone := &models.Role{
		Name:        "@everyone",
		Permissions: uint64(permissions.DefaultEveryone),
		Position:    0,
		IsEveryone:  true,
	}
	if err := db.Create(everyone).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to seed everyone role")
	}

	admins := &models.Role{
		Name:        "admins",
		Permissions: uint64(permissions.FlagAdministrator),
		Position:    1,
	}
	if err := db.Create(admins).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin role")
	}

	admin := &models.Member{Username: "admin"}
	if err := db.Create(admin).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin member")
	}

	if err := db.Create(&models.MemberRole{MemberID: admin.ID, RoleID: admins.ID}).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to assign admin role")
	}

	_, credential, err := apitoken.Create(db, "bootstrap", admin.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed bootstrap token")
	}

	log.Info().Str("token", credential).
		Msg("seeded admin member and bootstrap API token, store the token now: it is shown only once")
}
