package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/dsatutor/internal/app"
	"github.com/abhisek/dsatutor/internal/chatlog"
	"github.com/abhisek/dsatutor/internal/tutor"
)

var rootCmd = &cobra.Command{
	Use:   "dsatutor",
	Short: "Terminal client for the DSA tutoring service",
	Long:  "dsatutor — a terminal chat client for an adaptive data-structures-and-algorithms tutor.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	// Optional .env in the working directory; real env wins.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("api-base", "", "Tutor service base URL (overrides DSATUTOR_API_BASE)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite transcript database (overrides DSATUTOR_DB)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetDataCmd)
}

// runApp opens the transcript store, builds the service client, and
// launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg := resolveConfig(cmd)

	store, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open transcript store: %w", err)
	}
	defer store.Close()

	return app.Run(app.Options{
		Service:    tutor.New(cfg),
		Transcript: store,
	})
}

// resolveConfig returns the service config using the --api-base flag
// (highest priority), then DSATUTOR_API_BASE, then the default.
func resolveConfig(cmd *cobra.Command) tutor.Config {
	if base, _ := cmd.Flags().GetString("api-base"); base != "" {
		return tutor.Config{BaseURL: base}
	}
	return tutor.ConfigFromEnv()
}

// resolveDBPath returns the database path using the --db flag (highest
// priority), then DSATUTOR_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, chatlog.EnsureDir(p)
	}
	return chatlog.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*chatlog.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	return chatlog.Open(dbPath)
}
