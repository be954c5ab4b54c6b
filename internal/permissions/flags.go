package permissions

import (
	"github.com/pkg/errors"
)

// Flag is a single permission bit. The bit layout matches the wire format of
// the upstream chat platform, so raw integers taken from deserialized API
// payloads resolve to the same flags here.
type Flag uint64

const (
	// FlagCreateInstantInvite allows creating invites to the guild.
	FlagCreateInstantInvite Flag = 1 << 0
	// FlagKickMembers allows removing members from the guild.
	FlagKickMembers Flag = 1 << 1
	// FlagBanMembers allows banning members from the guild.
	FlagBanMembers Flag = 1 << 2
	// FlagAdministrator grants every permission and bypasses channel
	// overwrites entirely. Checked as an explicit short-circuit, never as a
	// generic rule.
	FlagAdministrator Flag = 1 << 3
	// FlagManageChannels allows creating, editing and deleting channels.
	FlagManageChannels Flag = 1 << 4
	// FlagManageGuild allows editing guild-wide settings.
	FlagManageGuild Flag = 1 << 5
	// FlagAddReactions allows adding reactions to messages.
	FlagAddReactions Flag = 1 << 6
	// FlagViewAuditLog allows reading the guild audit log.
	FlagViewAuditLog Flag = 1 << 7
	// FlagPrioritySpeaker allows priority speaking in voice channels.
	FlagPrioritySpeaker Flag = 1 << 8
	// FlagStream allows streaming video in voice channels.
	FlagStream Flag = 1 << 9
	// FlagViewChannel allows seeing a channel and reading its messages.
	FlagViewChannel Flag = 1 << 10
	// FlagSendMessages allows sending messages in text channels.
	FlagSendMessages Flag = 1 << 11
	// FlagSendTTSMessages allows sending text-to-speech messages.
	FlagSendTTSMessages Flag = 1 << 12
	// FlagManageMessages allows deleting and pinning other members' messages.
	FlagManageMessages Flag = 1 << 13
	// FlagEmbedLinks allows links to render embedded previews.
	FlagEmbedLinks Flag = 1 << 14
	// FlagAttachFiles allows uploading file attachments.
	FlagAttachFiles Flag = 1 << 15
	// FlagReadMessageHistory allows reading messages sent before joining.
	FlagReadMessageHistory Flag = 1 << 16
	// FlagMentionEveryone allows @everyone and @here mentions.
	FlagMentionEveryone Flag = 1 << 17
	// FlagUseExternalEmojis allows using emojis from other guilds.
	FlagUseExternalEmojis Flag = 1 << 18
	// FlagViewGuildInsights allows viewing guild analytics.
	FlagViewGuildInsights Flag = 1 << 19
	// FlagConnect allows joining voice channels.
	FlagConnect Flag = 1 << 20
	// FlagSpeak allows speaking in voice channels.
	FlagSpeak Flag = 1 << 21
	// FlagMuteMembers allows server-muting other members.
	FlagMuteMembers Flag = 1 << 22
	// FlagDeafenMembers allows server-deafening other members.
	FlagDeafenMembers Flag = 1 << 23
	// FlagMoveMembers allows moving members between voice channels.
	FlagMoveMembers Flag = 1 << 24
	// FlagUseVAD allows using voice activity detection instead of push-to-talk.
	FlagUseVAD Flag = 1 << 25
	// FlagChangeNickname allows changing one's own nickname.
	FlagChangeNickname Flag = 1 << 26
	// FlagManageNicknames allows changing other members' nicknames.
	FlagManageNicknames Flag = 1 << 27
	// FlagManageRoles allows creating and editing roles and overwrites.
	FlagManageRoles Flag = 1 << 28
	// FlagManageWebhooks allows managing channel webhooks.
	FlagManageWebhooks Flag = 1 << 29
	// FlagManageEmojisAndStickers allows managing custom emojis and stickers.
	FlagManageEmojisAndStickers Flag = 1 << 30
	// FlagUseApplicationCommands allows using slash commands.
	FlagUseApplicationCommands Flag = 1 << 31
	// FlagRequestToSpeak allows requesting to speak in stage channels.
	FlagRequestToSpeak Flag = 1 << 32
	// FlagManageEvents allows managing scheduled events.
	FlagManageEvents Flag = 1 << 33
	// FlagManageThreads allows archiving, locking and deleting any thread.
	FlagManageThreads Flag = 1 << 34
	// FlagCreatePublicThreads allows creating threads visible to everyone
	// who can view the parent channel.
	FlagCreatePublicThreads Flag = 1 << 35
	// FlagCreatePrivateThreads allows creating invite-only threads.
	FlagCreatePrivateThreads Flag = 1 << 36
	// FlagUseExternalStickers allows using stickers from other guilds.
	FlagUseExternalStickers Flag = 1 << 37
	// FlagSendMessagesInThreads allows sending messages inside threads.
	FlagSendMessagesInThreads Flag = 1 << 38
	// FlagUseEmbeddedActivities allows launching activities in voice channels.
	FlagUseEmbeddedActivities Flag = 1 << 39
	// FlagModerateMembers allows timing out other members.
	FlagModerateMembers Flag = 1 << 40
)

// flagOrder enumerates every registered flag in ascending bit order. This is
// the stable order used by Set.Names and for iterating Set.Serialize output.
var flagOrder = []Flag{
	FlagCreateInstantInvite,
	FlagKickMembers,
	FlagBanMembers,
	FlagAdministrator,
	FlagManageChannels,
	FlagManageGuild,
	FlagAddReactions,
	FlagViewAuditLog,
	FlagPrioritySpeaker,
	FlagStream,
	FlagViewChannel,
	FlagSendMessages,
	FlagSendTTSMessages,
	FlagManageMessages,
	FlagEmbedLinks,
	FlagAttachFiles,
	FlagReadMessageHistory,
	FlagMentionEveryone,
	FlagUseExternalEmojis,
	FlagViewGuildInsights,
	FlagConnect,
	FlagSpeak,
	FlagMuteMembers,
	FlagDeafenMembers,
	FlagMoveMembers,
	FlagUseVAD,
	FlagChangeNickname,
	FlagManageNicknames,
	FlagManageRoles,
	FlagManageWebhooks,
	FlagManageEmojisAndStickers,
	FlagUseApplicationCommands,
	FlagRequestToSpeak,
	FlagManageEvents,
	FlagManageThreads,
	FlagCreatePublicThreads,
	FlagCreatePrivateThreads,
	FlagUseExternalStickers,
	FlagSendMessagesInThreads,
	FlagUseEmbeddedActivities,
	FlagModerateMembers,
}

// flagNames maps each flag to its symbolic name as used on the wire.
var flagNames = map[Flag]string{
	FlagCreateInstantInvite:     "CREATE_INSTANT_INVITE",
	FlagKickMembers:             "KICK_MEMBERS",
	FlagBanMembers:              "BAN_MEMBERS",
	FlagAdministrator:           "ADMINISTRATOR",
	FlagManageChannels:          "MANAGE_CHANNELS",
	FlagManageGuild:             "MANAGE_GUILD",
	FlagAddReactions:            "ADD_REACTIONS",
	FlagViewAuditLog:            "VIEW_AUDIT_LOG",
	FlagPrioritySpeaker:         "PRIORITY_SPEAKER",
	FlagStream:                  "STREAM",
	FlagViewChannel:             "VIEW_CHANNEL",
	FlagSendMessages:            "SEND_MESSAGES",
	FlagSendTTSMessages:         "SEND_TTS_MESSAGES",
	FlagManageMessages:          "MANAGE_MESSAGES",
	FlagEmbedLinks:              "EMBED_LINKS",
	FlagAttachFiles:             "ATTACH_FILES",
	FlagReadMessageHistory:      "READ_MESSAGE_HISTORY",
	FlagMentionEveryone:         "MENTION_EVERYONE",
	FlagUseExternalEmojis:       "USE_EXTERNAL_EMOJIS",
	FlagViewGuildInsights:       "VIEW_GUILD_INSIGHTS",
	FlagConnect:                 "CONNECT",
	FlagSpeak:                   "SPEAK",
	FlagMuteMembers:             "MUTE_MEMBERS",
	FlagDeafenMembers:           "DEAFEN_MEMBERS",
	FlagMoveMembers:             "MOVE_MEMBERS",
	FlagUseVAD:                  "USE_VAD",
	FlagChangeNickname:          "CHANGE_NICKNAME",
	FlagManageNicknames:         "MANAGE_NICKNAMES",
	FlagManageRoles:             "MANAGE_ROLES",
	FlagManageWebhooks:          "MANAGE_WEBHOOKS",
	FlagManageEmojisAndStickers: "MANAGE_EMOJIS_AND_STICKERS",
	FlagUseApplicationCommands:  "USE_APPLICATION_COMMANDS",
	FlagRequestToSpeak:          "REQUEST_TO_SPEAK",
	FlagManageEvents:            "MANAGE_EVENTS",
	FlagManageThreads:           "MANAGE_THREADS",
	FlagCreatePublicThreads:     "CREATE_PUBLIC_THREADS",
	FlagCreatePrivateThreads:    "CREATE_PRIVATE_THREADS",
	FlagUseExternalStickers:     "USE_EXTERNAL_STICKERS",
	FlagSendMessagesInThreads:   "SEND_MESSAGES_IN_THREADS",
	FlagUseEmbeddedActivities:   "USE_EMBEDDED_ACTIVITIES",
	FlagModerateMembers:         "MODERATE_MEMBERS",
}

// flagsByName is the reverse index of flagNames, built once at init.
var flagsByName = func() map[string]Flag {
	m := make(map[string]Flag, len(flagNames))
	for flag, name := range flagNames {
		m[name] = flag
	}

	return m
}()

// All is the union of every registered flag. This is the value an
// administrator effectively holds, and the upper bound for valid raw input.
var All = func() Set {
	var s Set
	for _, f := range flagOrder {
		s |= Set(f)
	}

	return s
}()

// DefaultEveryone is the base permission set seeded onto the implicit
// @everyone role of a new guild.
const DefaultEveryone = Set(uint64(FlagCreateInstantInvite) |
	uint64(FlagAddReactions) |
	uint64(FlagStream) |
	uint64(FlagViewChannel) |
	uint64(FlagSendMessages) |
	uint64(FlagEmbedLinks) |
	uint64(FlagAttachFiles) |
	uint64(FlagReadMessageHistory) |
	uint64(FlagUseExternalEmojis) |
	uint64(FlagConnect) |
	uint64(FlagSpeak) |
	uint64(FlagUseVAD) |
	uint64(FlagChangeNickname) |
	uint64(FlagUseApplicationCommands) |
	uint64(FlagRequestToSpeak) |
	uint64(FlagCreatePublicThreads) |
	uint64(FlagCreatePrivateThreads) |
	uint64(FlagUseExternalStickers) |
	uint64(FlagSendMessagesInThreads) |
	uint64(FlagUseEmbeddedActivities))

// Lookup resolves a symbolic name to its flag. It returns ErrUnknownFlag
// (wrapped with the offending name) when the name is not registered.
func Lookup(name string) (Flag, error) {
	flag, ok := flagsByName[name]
	if !ok {
		return 0, errors.Wrap(ErrUnknownFlag, name)
	}

	return flag, nil
}

// Flags returns every registered flag in ascending bit order. The result is
// a fresh copy; callers may reorder it freely.
func Flags() []Flag {
	out := make([]Flag, len(flagOrder))
	copy(out, flagOrder)

	return out
}

// Name returns the symbolic name of the flag, or an empty string if the flag
// is not a single registered bit.
func (f Flag) Name() string {
	return flagNames[f]
}

// Registered reports whether the flag is exactly one registered bit.
func (f Flag) Registered() bool {
	_, ok := flagNames[f]
	return ok
}
