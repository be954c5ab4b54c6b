package access

import (
	"fmt"

	"gorm.io/gorm"

	channelctl "github.com/parley-chat/parley/internal/db/controller/channel"
	memberctl "github.com/parley-chat/parley/internal/db/controller/member"
	overwritectl "github.com/parley-chat/parley/internal/db/controller/overwrite"
	rolectl "github.com/parley-chat/parley/internal/db/controller/role"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
)

// Service resolves member permissions against the database. Resolutions are
// computed on demand and never cached: a result is only valid for the call
// that requested it.
type Service struct {
	db *gorm.DB
}

// NewService creates a new access service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// BasePermissions computes a member's guild-level permissions: the union of
// the @everyone role and every role the member holds. ADMINISTRATOR in the
// union collapses the result to the full flag set.
func (s *Service) BasePermissions(memberID uint64) (permissions.Set, error) {
	everyone, err := rolectl.GetEveryone(s.db)
	if err != nil {
		return 0, fmt.Errorf("failed to load everyone role: %w", err)
	}

	roles, err := memberctl.GetRoles(s.db, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to load member roles: %w", err)
	}

	roleSets := make([]permissions.Set, 0, len(roles))
	for _, r := range roles {
		roleSets = append(roleSets, permissions.Sanitize(r.Permissions))
	}

	return permissions.BasePermissions(permissions.Sanitize(everyone.Permissions), roleSets...), nil
}

// EffectivePermissions computes the final permission set for a member in a
// channel. A synchronized channel resolves against its parent category's
// overwrites; requesting synchronization without a parent surfaces
// channel.ErrNoParentChannel from the channel lookup path.
func (s *Service) EffectivePermissions(memberID, channelID uint64) (permissions.Set, error) {
	base, err := s.BasePermissions(memberID)
	if err != nil {
		return 0, err
	}

	ch, err := channelctl.GetByID(s.db, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to load channel: %w", err)
	}

	// Overwrites are not consulted when the base grants ADMINISTRATOR.
	if base.HasStrict(permissions.FlagAdministrator) {
		observeResolution()
		return permissions.All, nil
	}

	sourceID := ch.ID
	if ch.PermissionsSynced {
		if ch.ParentID == nil {
			return 0, channelctl.ErrNoParentChannel
		}

		sourceID = *ch.ParentID
	}

	rows, err := overwritectl.GetForChannel(s.db, sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to load channel overwrites: %w", err)
	}

	ow, err := s.partitionOverwrites(memberID, rows)
	if err != nil {
		return 0, err
	}

	observeResolution()

	return permissions.ChannelPermissions(base, ow), nil
}

// Has checks a member's guild-level permissions for the given flags.
func (s *Service) Has(memberID uint64, flags ...permissions.Flag) (bool, error) {
	base, err := s.BasePermissions(memberID)
	if err != nil {
		return false, err
	}

	return base.Has(flags...), nil
}

// HasInChannel checks a member's effective channel permissions for the
// given flags.
func (s *Service) HasInChannel(memberID, channelID uint64, flags ...permissions.Flag) (bool, error) {
	effective, err := s.EffectivePermissions(memberID, channelID)
	if err != nil {
		return false, err
	}

	return effective.Has(flags...), nil
}

// partitionOverwrites splits raw overwrite rows into the layers the resolver
// applies: the @everyone overwrite, overwrites for roles the member holds,
// and the member-specific overwrite.
func (s *Service) partitionOverwrites(memberID uint64, rows []models.Overwrite) (permissions.ChannelOverwrites, error) {
	var ow permissions.ChannelOverwrites

	everyone, err := rolectl.GetEveryone(s.db)
	if err != nil {
		return ow, fmt.Errorf("failed to load everyone role: %w", err)
	}

	roles, err := memberctl.GetRoles(s.db, memberID)
	if err != nil {
		return ow, fmt.Errorf("failed to load member roles: %w", err)
	}

	heldRoles := make(map[uint64]bool, len(roles))
	for _, r := range roles {
		heldRoles[r.ID] = true
	}

	for _, row := range rows {
		o := permissions.Overwrite{
			Target: row.TargetID,
			Kind:   permissions.OverwriteKind(row.TargetKind),
			Allow:  permissions.Sanitize(row.Allow),
			Deny:   permissions.Sanitize(row.Deny),
		}

		switch {
		case row.TargetKind == models.OverwriteTargetRole && row.TargetID == everyone.ID:
			everyoneOw := o
			ow.Everyone = &everyoneOw
		case row.TargetKind == models.OverwriteTargetRole && heldRoles[row.TargetID]:
			ow.Roles = append(ow.Roles, o)
		case row.TargetKind == models.OverwriteTargetMember && row.TargetID == memberID:
			memberOw := o
			ow.Member = &memberOw
		}
	}

	return ow, nil
}
