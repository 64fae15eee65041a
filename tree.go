package riemann

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/zeta-labs/riemann/logging"
)

// HandlerFunc runs one application command invocation.
type HandlerFunc func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate) error

// Check guards a command. A non-nil return aborts dispatch and is
// routed to the tree's error handler.
type Check func(b *Bot, ic *discordgo.InteractionCreate) error

// ErrorHandler receives every dispatch failure: unknown commands,
// failed checks and handler errors.
type ErrorHandler func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, err error)

// Command pairs an application command definition with its handler and
// checks.
type Command struct {
	*discordgo.ApplicationCommand
	Checks  []Check
	Handler HandlerFunc
}

// Tree registers application commands and dispatches their
// interactions.
type Tree struct {
	bot *Bot

	mu       sync.RWMutex
	commands map[string]*Command

	// OnError handles dispatch failures. It defaults to notifying the
	// user ephemerally and forwarding the incident to the bot's
	// reporter.
	OnError ErrorHandler
}

// NewTree builds a tree listening on the bot's gateway events. A Bot
// builds its own tree; this is exported for bots that want several.
func NewTree(b *Bot) *Tree {
	t := &Tree{
		bot:      b,
		commands: make(map[string]*Command),
		OnError:  defaultOnError,
	}
	b.Session.AddHandler(t.handleInteraction)
	return t
}

// Add registers a command. The name must be unique within the tree.
func (t *Tree) Add(cmd *Command) error {
	if cmd == nil || cmd.ApplicationCommand == nil || cmd.Name == "" {
		return errors.New("riemann: command needs a name")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("riemann: command %q needs a handler", cmd.Name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.commands[cmd.Name]; exists {
		return fmt.Errorf("riemann: command %q already registered", cmd.Name)
	}
	t.commands[cmd.Name] = cmd
	return nil
}

// Commands returns the registered commands in no particular order.
func (t *Tree) Commands() []*Command {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Command, 0, len(t.commands))
	for _, cmd := range t.commands {
		out = append(out, cmd)
	}
	return out
}

// Sync overwrites the application's commands on Discord with the
// tree's. An empty guildID syncs globally (propagation can take up to
// an hour); a guild ID syncs instantly for that guild. The session
// must be connected.
func (t *Tree) Sync(guildID string) error {
	state := t.bot.Session.State
	if state == nil || state.User == nil {
		return errors.New("riemann: cannot sync before the session is connected")
	}

	defs := make([]*discordgo.ApplicationCommand, 0, len(t.commands))
	t.mu.RLock()
	for _, cmd := range t.commands {
		defs = append(defs, cmd.ApplicationCommand)
	}
	t.mu.RUnlock()

	_, err := t.bot.Session.ApplicationCommandBulkOverwrite(state.User.ID, guildID, defs)
	if err != nil {
		return fmt.Errorf("riemann: sync commands: %w", err)
	}
	return nil
}

func (t *Tree) handleInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return
	}
	name := ic.ApplicationCommandData().Name

	ctx := withTrace(context.Background(), uuid.NewString())
	log := logging.Base().With().
		Str("trace", TraceID(ctx)).
		Str("command", name).
		Logger()
	if user := InteractionUser(ic); user != nil {
		log = log.With().Str("user", user.ID).Logger()
	}

	t.mu.RLock()
	cmd := t.commands[name]
	t.mu.RUnlock()
	if cmd == nil {
		t.fail(ctx, ic, &CommandNotFoundError{Name: name})
		return
	}

	for _, check := range cmd.Checks {
		if err := check(t.bot, ic); err != nil {
			log.Debug().Err(err).Msg("check rejected command")
			t.fail(ctx, ic, err)
			return
		}
	}

	log.Debug().Msg("command invoked")
	if err := t.invoke(ctx, cmd, ic); err != nil {
		log.Error().Err(err).Msg("command failed")
		t.fail(ctx, ic, err)
	}
}

// invoke runs the handler, converting a panic into an InvokeError that
// carries the goroutine stack.
func (t *Tree) invoke(ctx context.Context, cmd *Command, ic *discordgo.InteractionCreate) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &InvokeError{
				Command: cmd.Name,
				Err:     fmt.Errorf("panic: %v", r),
				Stack:   debug.Stack(),
			}
		}
	}()

	if herr := cmd.Handler(ctx, t.bot, ic); herr != nil {
		return &InvokeError{Command: cmd.Name, Err: herr}
	}
	return nil
}

func (t *Tree) fail(ctx context.Context, ic *discordgo.InteractionCreate, err error) {
	if t.OnError != nil {
		t.OnError(ctx, t.bot, ic, err)
	}
}

// defaultOnError tells the invoking user what went wrong (ephemeral)
// and forwards the incident to the bot's reporter.
func defaultOnError(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, err error) {
	if rerr := RespondOrFollowup(b.Session, ic.Interaction, &discordgo.InteractionResponseData{
		Content: userMessage(err),
		Flags:   discordgo.MessageFlagsEphemeral,
	}); rerr != nil {
		log := logging.Base()
		log.Warn().Err(rerr).Msg("could not notify user of command failure")
	}

	if b.Reporter == nil {
		return
	}

	inc := logging.Incident{
		User:    InteractionUser(ic),
		Source:  ic.ApplicationCommandData().Name,
		Err:     err,
		TraceID: TraceID(ctx),
	}
	var invokeErr *InvokeError
	if errors.As(err, &invokeErr) {
		inc.Stack = invokeErr.Stack
	}
	if ch, cerr := b.Session.State.Channel(ic.ChannelID); cerr == nil {
		inc.Channel = ch
	}

	if rerr := b.Reporter.Report(ctx, inc); rerr != nil {
		log := logging.Base()
		log.Error().Err(rerr).Msg("incident report failed")
	}
}

// userMessage maps a dispatch error to the message shown to the
// invoking user.
func userMessage(err error) string {
	var (
		notFound    *CommandNotFoundError
		cooldown    *CommandOnCooldownError
		missingRole *MissingRoleError
		missingAny  *MissingAnyRoleError
		missingPerm *MissingPermissionsError
		botMissing  *BotMissingPermissionsError
		noDM        *NoPrivateMessageError
	)
	switch {
	case errors.As(err, &notFound):
		return "Unknown command."
	case errors.As(err, &cooldown):
		return fmt.Sprintf("You are on cooldown. Retry in %s.", cooldown.RetryAfter.Round(time.Millisecond))
	case errors.As(err, &missingRole):
		return fmt.Sprintf("You need the %s role to use this command.", missingRole.Role)
	case errors.As(err, &missingAny):
		return fmt.Sprintf("You need one of these roles to use this command: %s.", joinList(missingAny.Roles))
	case errors.As(err, &missingPerm):
		return fmt.Sprintf("You are missing the permissions: %s.", joinList(missingPerm.Missing))
	case errors.As(err, &botMissing):
		return fmt.Sprintf("I am missing the permissions: %s.", joinList(botMissing.Missing))
	case errors.As(err, &noDM):
		return "This command cannot be used in private messages."
	default:
		return "Something went wrong while running this command."
	}
}

type traceKey struct{}

func withTrace(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// TraceID returns the dispatch trace ID carried by a handler context,
// or an empty string.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
