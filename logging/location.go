package logging

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Location describes where something happened, one hop per line
// (guild, parent channel, thread). The session is used to resolve
// names from state and may be nil.
func Location(s *discordgo.Session, ch *discordgo.Channel) string {
	if ch == nil {
		return "in an unknown place"
	}

	var loc []string
	if ch.GuildID != "" {
		loc = append(loc, guildLine(s, ch.GuildID))
	}

	switch ch.Type {
	case discordgo.ChannelTypeDM:
		if len(ch.Recipients) > 0 {
			loc = append(loc, fmt.Sprintf("in a Private Channel with %s (%s)", ch.Recipients[0].String(), ch.ID))
		} else {
			loc = append(loc, fmt.Sprintf("in a Private Channel (%s)", ch.ID))
		}
	case discordgo.ChannelTypeGroupDM:
		if ch.Name != "" {
			loc = append(loc, fmt.Sprintf("in a Group Channel named %s (%s)", ch.Name, ch.ID))
		} else {
			loc = append(loc, fmt.Sprintf("in a Group Channel (%s)", ch.ID))
		}
	case discordgo.ChannelTypeGuildText:
		loc = append(loc, fmt.Sprintf("in the Text Channel %s (%s)", ch.Name, ch.ID))
	case discordgo.ChannelTypeGuildVoice:
		loc = append(loc, fmt.Sprintf("in the Voice Channel %s (%s)", ch.Name, ch.ID))
	case discordgo.ChannelTypeGuildStageVoice:
		loc = append(loc, fmt.Sprintf("in the Stage Channel %s (%s)", ch.Name, ch.ID))
	case discordgo.ChannelTypeGuildCategory:
		loc = append(loc, fmt.Sprintf("in the Category Channel %s (%s)", ch.Name, ch.ID))
	case discordgo.ChannelTypeGuildForum:
		loc = append(loc, fmt.Sprintf("in the Forum Channel %s (%s)", ch.Name, ch.ID))
	case discordgo.ChannelTypeGuildNews:
		loc = append(loc, fmt.Sprintf("in the News Channel %s (%s)", ch.Name, ch.ID))
	case discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		if parent := stateChannel(s, ch.ParentID); parent != nil {
			loc = append(loc, fmt.Sprintf("in the Channel %s (%s)", parent.Name, parent.ID))
		} else if ch.ParentID != "" {
			loc = append(loc, fmt.Sprintf("in a Channel with ID %s", ch.ParentID))
		}
		loc = append(loc, fmt.Sprintf("in the Thread %s (%s)", ch.Name, ch.ID))
	default:
		loc = append(loc, fmt.Sprintf("in a channel (%s)", ch.ID))
	}

	return strings.Join(loc, "\n")
}

func guildLine(s *discordgo.Session, guildID string) string {
	if s != nil && s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return fmt.Sprintf("in the Guild %s (%s)", g.Name, g.ID)
		}
	}
	return fmt.Sprintf("in the Guild with ID %s", guildID)
}

func stateChannel(s *discordgo.Session, channelID string) *discordgo.Channel {
	if s == nil || s.State == nil || channelID == "" {
		return nil
	}
	ch, err := s.State.Channel(channelID)
	if err != nil {
		return nil
	}
	return ch
}
