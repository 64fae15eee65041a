package riemann

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// InteractionUser returns the user behind an interaction, whether it
// came from a guild or a direct message.
func InteractionUser(ic *discordgo.InteractionCreate) *discordgo.User {
	if ic.Member != nil {
		return ic.Member.User
	}
	return ic.User
}

// RoleName resolves a role reference to a display name. A snowflake
// reference is looked up in the guild, falling back to def when the
// role no longer exists; anything else is already a name and is
// returned as-is.
func RoleName(guild *discordgo.Guild, ref, def string) string {
	if !isSnowflake(ref) {
		return ref
	}
	if guild != nil {
		for _, role := range guild.Roles {
			if role.ID == ref {
				return role.Name
			}
		}
	}
	return def
}

// RoleNames resolves several role references, dropping the ones that
// cannot be resolved.
func RoleNames(guild *discordgo.Guild, refs []string) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if name := RoleName(guild, ref, ""); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RespondOrFollowup sends data as the interaction response, or as a
// followup message when the interaction was already acknowledged.
func RespondOrFollowup(s *discordgo.Session, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeInteractionHasAlreadyBeenAcknowledged {
		_, ferr := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
			Content:    data.Content,
			Embeds:     data.Embeds,
			Components: data.Components,
			Flags:      data.Flags,
		})
		return ferr
	}
	return err
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}
