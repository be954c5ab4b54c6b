package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverwriteValidate(t *testing.T) {
	valid := Overwrite{Kind: OverwriteRole, Allow: Set(FlagSpeak), Deny: Set(FlagConnect)}
	require.NoError(t, valid.Validate())

	overlapping := Overwrite{Kind: OverwriteMember, Allow: Set(FlagSpeak), Deny: Set(FlagSpeak)}
	err := overlapping.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverlappingOverwrite)
}

func TestBasePermissions(t *testing.T) {
	everyone := Set(FlagViewChannel) | Set(FlagSendMessages)

	testCases := []struct {
		name     string
		roles    []Set
		expected Set
	}{
		{
			name:     "no roles keeps the everyone base",
			roles:    nil,
			expected: everyone,
		},
		{
			name:     "role sets are unioned",
			roles:    []Set{Set(FlagKickMembers), Set(FlagBanMembers)},
			expected: everyone | Set(FlagKickMembers) | Set(FlagBanMembers),
		},
		{
			name:     "administrator collapses to all",
			roles:    []Set{Set(FlagAdministrator)},
			expected: All,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, BasePermissions(everyone, tc.roles...))
		})
	}
}

func TestChannelPermissions(t *testing.T) {
	base := Set(FlagViewChannel) | Set(FlagSendMessages) | Set(FlagReadMessageHistory)

	testCases := []struct {
		name       string
		base       Set
		overwrites ChannelOverwrites
		check      func(t *testing.T, effective Set)
	}{
		{
			name:       "no overwrites keeps base",
			base:       base,
			overwrites: ChannelOverwrites{},
			check: func(t *testing.T, effective Set) {
				assert.Equal(t, base, effective)
			},
		},
		{
			name: "everyone deny removes a flag",
			base: base,
			overwrites: ChannelOverwrites{
				Everyone: &Overwrite{Kind: OverwriteRole, Deny: Set(FlagSendMessages)},
			},
			check: func(t *testing.T, effective Set) {
				assert.False(t, effective.HasStrict(FlagSendMessages))
				assert.True(t, effective.HasStrict(FlagViewChannel))
			},
		},
		{
			name: "member allow beats everyone deny",
			base: base,
			overwrites: ChannelOverwrites{
				Everyone: &Overwrite{Kind: OverwriteRole, Deny: Set(FlagViewChannel)},
				Member:   &Overwrite{Kind: OverwriteMember, Allow: Set(FlagViewChannel)},
			},
			check: func(t *testing.T, effective Set) {
				assert.True(t, effective.HasStrict(FlagViewChannel))
			},
		},
		{
			name: "allow wins over deny across roles",
			base: base,
			overwrites: ChannelOverwrites{
				Roles: []Overwrite{
					{Kind: OverwriteRole, Target: 10, Deny: Set(FlagSendMessages)},
					{Kind: OverwriteRole, Target: 11, Allow: Set(FlagSendMessages)},
				},
			},
			check: func(t *testing.T, effective Set) {
				assert.True(t, effective.HasStrict(FlagSendMessages))
			},
		},
		{
			name: "member deny beats role allow",
			base: base,
			overwrites: ChannelOverwrites{
				Roles: []Overwrite{
					{Kind: OverwriteRole, Target: 10, Allow: Set(FlagMentionEveryone)},
				},
				Member: &Overwrite{Kind: OverwriteMember, Deny: Set(FlagMentionEveryone)},
			},
			check: func(t *testing.T, effective Set) {
				assert.False(t, effective.HasStrict(FlagMentionEveryone))
			},
		},
		{
			name: "administrator base ignores overwrites",
			base: All,
			overwrites: ChannelOverwrites{
				Everyone: &Overwrite{Kind: OverwriteRole, Deny: Set(FlagViewChannel)},
				Member:   &Overwrite{Kind: OverwriteMember, Deny: Set(FlagSendMessages)},
			},
			check: func(t *testing.T, effective Set) {
				assert.Equal(t, All, effective)
				assert.True(t, effective.HasStrict(FlagViewChannel, FlagSendMessages))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, ChannelPermissions(tc.base, tc.overwrites))
		})
	}
}

func TestChannelPermissionsRoleOrderDoesNotMatter(t *testing.T) {
	base := Set(FlagViewChannel)

	a := Overwrite{Kind: OverwriteRole, Target: 10, Allow: Set(FlagSendMessages), Deny: Set(FlagAttachFiles)}
	b := Overwrite{Kind: OverwriteRole, Target: 11, Allow: Set(FlagAttachFiles), Deny: Set(FlagSendMessages)}

	forward := ChannelPermissions(base, ChannelOverwrites{Roles: []Overwrite{a, b}})
	backward := ChannelPermissions(base, ChannelOverwrites{Roles: []Overwrite{b, a}})

	assert.Equal(t, forward, backward)
	// Both contested flags end up allowed.
	assert.True(t, forward.HasStrict(FlagSendMessages, FlagAttachFiles))
}

func TestApplyOverwritesHasNoAdminShortCircuit(t *testing.T) {
	base := Set(FlagAdministrator) | Set(FlagViewChannel)
	ow := ChannelOverwrites{
		Everyone: &Overwrite{Kind: OverwriteRole, Deny: Set(FlagViewChannel)},
	}

	effective := ApplyOverwrites(base, ow)
	assert.False(t, effective.HasStrict(FlagViewChannel))
	assert.True(t, effective.HasStrict(FlagAdministrator))
}
