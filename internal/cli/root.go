// Package cli implements the example bot's command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/zeta-labs/riemann/config"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Example Discord bot built on riemann",
	Long: `An example Discord bot built on the riemann library.

It reads a TOML configuration file, connects to the Discord gateway and
serves a couple of demo slash commands. Run 'bot init' to create a
starter configuration.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "path to the TOML configuration file")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
}
