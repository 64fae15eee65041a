package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/zeta-labs/riemann"
)

var syncGuild string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		bot, err := riemann.New(cfgFile)
		if err != nil {
			return err
		}
		if err := registerCommands(bot); err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := bot.Start(ctx); err != nil {
			return err
		}
		if err := bot.Tree.Sync(syncGuild); err != nil {
			bot.Close(ctx)
			return err
		}

		// Rotate the presence so the status line stays fresh.
		err = bot.Scheduler.Add("presence", "@every 10m", func(context.Context) {
			uptime := bot.Uptime().Round(time.Minute)
			bot.Session.UpdateGameStatus(0, fmt.Sprintf("up for %s", uptime))
		})
		if err != nil {
			bot.Close(ctx)
			return err
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return bot.Close(shutdownCtx)
	},
}

func init() {
	runCmd.Flags().StringVar(&syncGuild, "guild", "", "guild ID to sync commands to (empty syncs globally)")
}

func registerCommands(bot *riemann.Bot) error {
	commands := []*riemann.Command{
		{
			ApplicationCommand: &discordgo.ApplicationCommand{
				Name:        "ping",
				Description: "Check the bot is alive",
			},
			Checks: []riemann.Check{riemann.Cooldown(2, 10 * time.Second)},
			Handler: func(_ context.Context, b *riemann.Bot, ic *discordgo.InteractionCreate) error {
				latency := b.GatewayLatency().Round(time.Millisecond)
				return riemann.RespondOrFollowup(b.Session, ic.Interaction, &discordgo.InteractionResponseData{
					Content: fmt.Sprintf("Pong! Gateway latency: %s", latency),
				})
			},
		},
		{
			ApplicationCommand: &discordgo.ApplicationCommand{
				Name:        "uptime",
				Description: "How long the bot has been connected",
			},
			Handler: func(_ context.Context, b *riemann.Bot, ic *discordgo.InteractionCreate) error {
				return riemann.RespondOrFollowup(b.Session, ic.Interaction, &discordgo.InteractionResponseData{
					Content: fmt.Sprintf("Up for %s.", b.Uptime().Round(time.Second)),
				})
			},
		},
	}

	for _, cmd := range commands {
		if err := bot.Tree.Add(cmd); err != nil {
			return err
		}
	}
	return nil
}
