package permissions

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 268550160 is the canonical sample bit field from the upstream API docs:
// MANAGE_CHANNELS, EMBED_LINKS, ATTACH_FILES, READ_MESSAGE_HISTORY and
// MANAGE_ROLES are set; KICK_MEMBERS and ADMINISTRATOR are not.
const samplePermissions = uint64(268550160)

func TestNew(t *testing.T) {
	testCases := []struct {
		name          string
		inputs        []any
		expected      Set
		expectedError error
	}{
		{
			name:     "no input is the empty set",
			inputs:   nil,
			expected: 0,
		},
		{
			name:     "raw integer",
			inputs:   []any{samplePermissions},
			expected: Set(samplePermissions),
		},
		{
			name:     "single flag",
			inputs:   []any{FlagKickMembers},
			expected: Set(FlagKickMembers),
		},
		{
			name:     "flag name string",
			inputs:   []any{"BAN_MEMBERS"},
			expected: Set(FlagBanMembers),
		},
		{
			name:     "another set",
			inputs:   []any{Set(FlagSpeak)},
			expected: Set(FlagSpeak),
		},
		{
			name:     "mixed inputs are unioned",
			inputs:   []any{FlagConnect, "SPEAK", uint64(FlagViewChannel)},
			expected: Set(FlagConnect) | Set(FlagSpeak) | Set(FlagViewChannel),
		},
		{
			name:     "slice of flags",
			inputs:   []any{[]Flag{FlagConnect, FlagSpeak}},
			expected: Set(FlagConnect) | Set(FlagSpeak),
		},
		{
			name:     "slice of names",
			inputs:   []any{[]string{"CONNECT", "SPEAK"}},
			expected: Set(FlagConnect) | Set(FlagSpeak),
		},
		{
			name:     "slice of raw integers",
			inputs:   []any{[]uint64{uint64(FlagConnect), uint64(FlagSpeak)}},
			expected: Set(FlagConnect) | Set(FlagSpeak),
		},
		{
			name:     "slice of signed integers",
			inputs:   []any{[]int64{int64(FlagConnect)}, []int{int(FlagSpeak)}},
			expected: Set(FlagConnect) | Set(FlagSpeak),
		},
		{
			name:          "slice with a negative integer",
			inputs:        []any{[]int{-1}},
			expectedError: ErrInvalidFlag,
		},
		{
			name:          "slice of raw integers with unregistered bits",
			inputs:        []any{[]uint64{uint64(1) << 63}},
			expectedError: ErrInvalidFlag,
		},
		{
			name:          "unknown flag name",
			inputs:        []any{"FLY_HELICOPTERS"},
			expectedError: ErrUnknownFlag,
		},
		{
			name:          "raw integer with unregistered bits",
			inputs:        []any{uint64(1) << 63},
			expectedError: ErrInvalidFlag,
		},
		{
			name:          "negative integer",
			inputs:        []any{int64(-1)},
			expectedError: ErrInvalidFlag,
		},
		{
			name:          "unsupported shape",
			inputs:        []any{3.14},
			expectedError: ErrInvalidPermissionInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(tc.inputs...)

			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, s)
			}
		})
	}
}

func TestHas(t *testing.T) {
	s := Set(samplePermissions)

	assert.True(t, s.Has(FlagManageChannels))
	assert.False(t, s.Has(FlagManageChannels, FlagKickMembers))
	assert.False(t, s.Has(FlagKickMembers))

	// ADMINISTRATOR overrides every check unless the strict variant is used.
	admin := Set(FlagAdministrator)
	assert.True(t, admin.Has(FlagKickMembers))
	assert.True(t, admin.Has(FlagManageChannels, FlagBanMembers))
	assert.False(t, admin.HasStrict(FlagKickMembers))
	assert.True(t, admin.HasStrict(FlagAdministrator))
}

func TestHasStrictEmptyFlagList(t *testing.T) {
	// Vacuously true, mirroring "every requested flag is set".
	assert.True(t, Set(0).HasStrict())
}

func TestAddRemoveRoundTrip(t *testing.T) {
	original := Set(FlagViewChannel) | Set(FlagSendMessages)

	added, err := original.Add(FlagKickMembers, "BAN_MEMBERS")
	require.NoError(t, err)
	assert.True(t, added.HasStrict(FlagKickMembers, FlagBanMembers))

	// The original value is untouched.
	assert.False(t, original.HasStrict(FlagKickMembers))

	removed, err := added.Remove(FlagKickMembers, FlagBanMembers)
	require.NoError(t, err)
	assert.Equal(t, original, removed)
}

func TestAddInvalidInput(t *testing.T) {
	_, err := Set(0).Add("NOT_A_FLAG")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFlag)

	_, err = Set(0).Remove(struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPermissionInput)
}

func TestSerialize(t *testing.T) {
	s := Set(samplePermissions)
	serialized := s.Serialize()

	// Exactly one entry per registered flag.
	require.Len(t, serialized, len(Flags()))

	trueCount := 0
	for _, set := range serialized {
		if set {
			trueCount++
		}
	}

	assert.Equal(t, bits.OnesCount64(s.Raw()), trueCount)
	assert.True(t, serialized["MANAGE_CHANNELS"])
	assert.False(t, serialized["KICK_MEMBERS"])
}

func TestNames(t *testing.T) {
	s := Set(FlagManageRoles) | Set(FlagKickMembers)

	// Registry order: KICK_MEMBERS is bit 1, MANAGE_ROLES bit 28.
	assert.Equal(t, []string{"KICK_MEMBERS", "MANAGE_ROLES"}, s.Names())
	assert.Nil(t, Set(0).Names())
}

func TestSanitize(t *testing.T) {
	raw := samplePermissions | uint64(1)<<63

	assert.Equal(t, Set(samplePermissions), Sanitize(raw))
	assert.Equal(t, Set(samplePermissions), Sanitize(samplePermissions))
}

func TestString(t *testing.T) {
	assert.Equal(t, "NONE", Set(0).String())
	assert.Equal(t, "KICK_MEMBERS | BAN_MEMBERS", (Set(FlagKickMembers) | Set(FlagBanMembers)).String())
}
