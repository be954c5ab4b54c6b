package permissions

import (
	"github.com/pkg/errors"
)

// OverwriteKind distinguishes the target of a channel overwrite.
type OverwriteKind string

const (
	// OverwriteRole targets a role (including the @everyone role).
	OverwriteRole OverwriteKind = "role"
	// OverwriteMember targets a single member.
	OverwriteMember OverwriteKind = "member"
)

// Overwrite refines base permissions inside one channel for one target.
// A flag set in Allow is granted, a flag set in Deny is revoked, and a flag
// in neither mask is inherited from the layer below.
type Overwrite struct {
	// Target is the role or member ID the overwrite applies to.
	Target uint64
	// Kind says whether Target is a role or a member.
	Kind OverwriteKind
	// Allow is the mask of granted flags.
	Allow Set
	// Deny is the mask of revoked flags.
	Deny Set
}

// Validate rejects overwrites whose allow and deny masks overlap. The
// tri-state semantics (allow / deny / inherit) are per flag, so one flag
// cannot be both granted and revoked by the same overwrite.
func (o Overwrite) Validate() error {
	if overlap := o.Allow & o.Deny; overlap != 0 {
		return errors.Wrap(ErrOverlappingOverwrite, overlap.String())
	}

	return nil
}

// ChannelOverwrites groups the overwrites relevant to one member in one
// channel, already filtered to the roles the member holds.
type ChannelOverwrites struct {
	// Everyone is the channel's @everyone overwrite, if any.
	Everyone *Overwrite
	// Roles are the overwrites for roles the member holds.
	Roles []Overwrite
	// Member is the member-specific overwrite, if any.
	Member *Overwrite
}

// BasePermissions computes guild-level permissions for a member:
// the union of the @everyone base set and every held role's set. A result
// containing ADMINISTRATOR collapses to All.
func BasePermissions(everyone Set, roles ...Set) Set {
	base := everyone
	for _, r := range roles {
		base |= r
	}

	if base.HasStrict(FlagAdministrator) {
		return All
	}

	return base
}

// ChannelPermissions computes the effective permissions for a member in a
// channel. A base containing ADMINISTRATOR short-circuits to All and the
// overwrites are never consulted. Otherwise overwrites apply lowest
// precedence first via ApplyOverwrites.
func ChannelPermissions(base Set, ow ChannelOverwrites) Set {
	if base.HasStrict(FlagAdministrator) {
		return All
	}

	return ApplyOverwrites(base, ow)
}

// ApplyOverwrites layers channel overwrites onto a base set without any
// administrator special-casing:
//
//  1. @everyone overwrite: clear denied bits, then set allowed bits.
//  2. Role overwrites as one batch: all denies merged, all allows merged,
//     deny applied before allow. Across distinct roles allow therefore wins
//     over deny on the same flag, and ordering among roles cannot matter.
//  3. Member overwrite last: it wins over every role decision.
func ApplyOverwrites(base Set, ow ChannelOverwrites) Set {
	perms := base

	if ow.Everyone != nil {
		perms = (perms &^ ow.Everyone.Deny) | ow.Everyone.Allow
	}

	var allow, deny Set
	for _, o := range ow.Roles {
		allow |= o.Allow
		deny |= o.Deny
	}

	perms = (perms &^ deny) | allow

	if ow.Member != nil {
		perms = (perms &^ ow.Member.Deny) | ow.Member.Allow
	}

	return perms
}
