package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roomly-dev/roomly/internal/cli/commands"
	"github.com/roomly-dev/roomly/internal/logger"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "roomly",
	Short: "Roomly - Book and host rooms from your terminal",
	Long: `Roomly CLI - Browse listings and manage your Roomly account.

Point it at a Roomly API server with 'roomly init', then log in with a
password or a social provider and start browsing rooms.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Quiet by default; ROOMLY_LOG_LEVEL=debug surfaces the API trace
		level := os.Getenv("ROOMLY_LOG_LEVEL")
		if level == "" {
			level = "warn"
		}
		logger.Init(level, "console")
	},
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("roomly version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewSignupCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewRoomsCmd())
	rootCmd.AddCommand(commands.NewCategoriesCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
