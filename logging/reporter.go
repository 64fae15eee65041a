package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// embedDescriptionLimit is Discord's cap on embed descriptions. The
// code block wrapping the stack costs another 7 characters.
const embedDescriptionLimit = 4096

// Incident is one reported command failure with the context it
// happened in.
type Incident struct {
	User    *discordgo.User    // user that triggered the failure
	Source  string             // command or event name
	Channel *discordgo.Channel // where it happened, may be nil
	Err     error
	Stack   []byte // captured goroutine stack, may be empty
	TraceID string
}

// Reporter forwards incidents somewhere a bot operator will see them.
type Reporter interface {
	Report(ctx context.Context, inc Incident) error
}

// NewReporter builds the reporter selected by cfg.Type. The session is
// only used by the discord reporter and must already be connected.
func NewReporter(s *discordgo.Session, cfg Config) (Reporter, error) {
	switch cfg.Type {
	case "", "stderr":
		return &StderrReporter{}, nil
	case "discord":
		return NewDiscordReporter(s, cfg.Discord.ChannelID)
	default:
		return nil, fmt.Errorf("logging: unknown reporter type: %s", cfg.Type)
	}
}

// StderrReporter writes incidents as plain text blocks.
type StderrReporter struct {
	Out io.Writer // defaults to os.Stderr
}

func (r *StderrReporter) Report(_ context.Context, inc Incident) error {
	out := r.Out
	if out == nil {
		out = os.Stderr
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s UTC\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Error in %s\n", inc.Source)
	if inc.User != nil {
		fmt.Fprintf(&b, "Caused by %s (%s)\n", inc.User.String(), inc.User.ID)
	}
	if inc.TraceID != "" {
		fmt.Fprintf(&b, "Trace %s\n", inc.TraceID)
	}
	fmt.Fprintf(&b, "\n%v\n%s\n", inc.Err, Location(nil, inc.Channel))
	if len(inc.Stack) > 0 {
		fmt.Fprintf(&b, "\n%s\n", inc.Stack)
	}
	b.WriteString("\n")

	_, err := io.WriteString(out, b.String())
	return err
}

// DiscordReporter posts incidents to a guild text channel.
//
// Session and Channel are exposed in case the Reporter API is
// insufficient.
type DiscordReporter struct {
	Session *discordgo.Session
	Channel *discordgo.Channel
}

// NewDiscordReporter validates that channelID names a reachable guild
// text channel and returns a reporter posting there.
func NewDiscordReporter(s *discordgo.Session, channelID string) (*DiscordReporter, error) {
	if channelID == "" {
		return nil, fmt.Errorf("logging: discord reporter needs a channel-id")
	}
	channel, err := s.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("logging: retrieve logging channel %s: %w", channelID, err)
	}
	if channel.Type != discordgo.ChannelTypeGuildText {
		return nil, fmt.Errorf("logging: channel %s is not a guild text channel", channelID)
	}
	return &DiscordReporter{Session: s, Channel: channel}, nil
}

func (r *DiscordReporter) Report(_ context.Context, inc Incident) error {
	title := fmt.Sprintf("Error in %s", inc.Source)
	description := fmt.Sprintf("%v\n%s", inc.Err, Location(r.Session, inc.Channel))
	stack := string(inc.Stack)

	if len(description)+len(stack) > embedDescriptionLimit-7 {
		return r.reportFile(inc, title, description, stack)
	}

	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Color:       0xFF0000,
		Title:       title,
		Description: description,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if stack != "" {
		embed.Description += "```\n" + stack + "```"
	}
	if inc.User != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("%s (%s)", inc.User.String(), inc.User.ID),
			IconURL: inc.User.AvatarURL(""),
		}
	}
	if bot := r.Session.State.User; bot != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("%s Logging", bot.Username),
			IconURL: bot.AvatarURL(""),
		}
	}

	_, err := r.Session.ChannelMessageSendEmbed(r.Channel.ID, embed)
	return err
}

// reportFile uploads incidents too long for an embed as a text file.
func (r *DiscordReporter) reportFile(inc Incident, title, description, stack string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	if inc.User != nil {
		fmt.Fprintf(&b, "Caused by %s (%s)\n", inc.User.String(), inc.User.ID)
	}
	fmt.Fprintf(&b, "\n%s\n\n%s", description, stack)

	_, err := r.Session.ChannelMessageSendComplex(r.Channel.ID, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        "error.txt",
			ContentType: "text/plain",
			Reader:      strings.NewReader(b.String()),
		}},
	})
	return err
}
