package riemann

import (
	"github.com/bwmarrin/discordgo"
)

// RequireRole only lets members holding the role run the command. The
// role reference is a snowflake ID or a literal role name. Using the
// command outside a guild fails with NoPrivateMessageError.
func RequireRole(role string) Check {
	return func(b *Bot, ic *discordgo.InteractionCreate) error {
		if ic.Member == nil {
			return &NoPrivateMessageError{}
		}
		if memberHasRole(b, ic, role) {
			return nil
		}
		return &MissingRoleError{Role: role}
	}
}

// RequireAnyRole only lets members holding at least one of the roles
// run the command.
func RequireAnyRole(roles ...string) Check {
	return func(b *Bot, ic *discordgo.InteractionCreate) error {
		if ic.Member == nil {
			return &NoPrivateMessageError{}
		}
		for _, role := range roles {
			if memberHasRole(b, ic, role) {
				return nil
			}
		}
		return &MissingAnyRoleError{Roles: roles}
	}
}

func memberHasRole(b *Bot, ic *discordgo.InteractionCreate, ref string) bool {
	guild, _ := b.Session.State.Guild(ic.GuildID)
	for _, roleID := range ic.Member.Roles {
		if roleID == ref {
			return true
		}
		if guild == nil {
			continue
		}
		for _, role := range guild.Roles {
			if role.ID == roleID && role.Name == ref {
				return true
			}
		}
	}
	return false
}

// RequirePermissions only lets members whose channel permissions
// include perms run the command.
func RequirePermissions(perms int64) Check {
	return func(_ *Bot, ic *discordgo.InteractionCreate) error {
		if ic.Member == nil {
			return &NoPrivateMessageError{}
		}
		if missing := perms &^ ic.Member.Permissions; missing != 0 {
			return &MissingPermissionsError{Missing: PermissionNames(missing)}
		}
		return nil
	}
}

// RequireBotPermissions only runs the command when the bot itself has
// perms in the channel.
func RequireBotPermissions(perms int64) Check {
	return func(_ *Bot, ic *discordgo.InteractionCreate) error {
		if missing := perms &^ ic.AppPermissions; missing != 0 {
			return &BotMissingPermissionsError{Missing: PermissionNames(missing)}
		}
		return nil
	}
}

// NoPrivateMessage rejects command use outside guilds.
func NoPrivateMessage() Check {
	return func(_ *Bot, ic *discordgo.InteractionCreate) error {
		if ic.Member == nil || ic.GuildID == "" {
			return &NoPrivateMessageError{}
		}
		return nil
	}
}

var permissionNames = []struct {
	bit  int64
	name string
}{
	{discordgo.PermissionAdministrator, "Administrator"},
	{discordgo.PermissionManageServer, "Manage Server"},
	{discordgo.PermissionManageChannels, "Manage Channels"},
	{discordgo.PermissionManageRoles, "Manage Roles"},
	{discordgo.PermissionManageMessages, "Manage Messages"},
	{discordgo.PermissionManageWebhooks, "Manage Webhooks"},
	{discordgo.PermissionKickMembers, "Kick Members"},
	{discordgo.PermissionBanMembers, "Ban Members"},
	{discordgo.PermissionModerateMembers, "Timeout Members"},
	{discordgo.PermissionViewChannel, "View Channel"},
	{discordgo.PermissionSendMessages, "Send Messages"},
	{discordgo.PermissionSendMessagesInThreads, "Send Messages in Threads"},
	{discordgo.PermissionEmbedLinks, "Embed Links"},
	{discordgo.PermissionAttachFiles, "Attach Files"},
	{discordgo.PermissionAddReactions, "Add Reactions"},
	{discordgo.PermissionUseExternalEmojis, "Use External Emojis"},
	{discordgo.PermissionMentionEveryone, "Mention Everyone"},
	{discordgo.PermissionReadMessageHistory, "Read Message History"},
	{discordgo.PermissionVoiceConnect, "Connect"},
	{discordgo.PermissionVoiceSpeak, "Speak"},
	{discordgo.PermissionVoiceMuteMembers, "Mute Members"},
	{discordgo.PermissionVoiceDeafenMembers, "Deafen Members"},
	{discordgo.PermissionVoiceMoveMembers, "Move Members"},
}

// PermissionNames expands a permission bitfield into readable names,
// in a stable order.
func PermissionNames(perms int64) []string {
	var names []string
	for _, p := range permissionNames {
		if perms&p.bit != 0 {
			names = append(names, p.name)
			perms &^= p.bit
		}
	}
	if perms != 0 {
		names = append(names, "unknown permissions")
	}
	return names
}
