package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRoundTrip(t *testing.T) {
	// Every registered flag must resolve back to itself by name.
	for _, flag := range Flags() {
		name := flag.Name()
		require.NotEmpty(t, name, "flag %#x has no name", uint64(flag))

		resolved, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, flag, resolved, "name %s resolved to a different bit", name)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("FLY_HELICOPTERS")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFlag)
}

func TestFlagsOrderIsStable(t *testing.T) {
	first := Flags()
	second := Flags()

	require.Equal(t, first, second)

	// Ascending bit order, no duplicates.
	for i := 1; i < len(first); i++ {
		assert.Less(t, uint64(first[i-1]), uint64(first[i]))
	}
}

func TestFlagsReturnsCopy(t *testing.T) {
	flags := Flags()
	flags[0] = Flag(0)

	assert.Equal(t, FlagCreateInstantInvite, Flags()[0])
}

func TestAllCoversEveryFlag(t *testing.T) {
	for _, flag := range Flags() {
		assert.True(t, All.HasStrict(flag), "All is missing %s", flag.Name())
	}
}

func TestRegistered(t *testing.T) {
	assert.True(t, FlagManageThreads.Registered())
	assert.False(t, Flag(1<<63).Registered())
	// A combination of two valid bits is not itself a registered flag.
	assert.False(t, (FlagSpeak | FlagConnect).Registered())
}
