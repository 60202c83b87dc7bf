package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent tutoring sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open transcript store: %w", err)
		}
		defer store.Close()

		sessions, err := store.RecentSessions(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		for _, s := range sessions {
			fmt.Printf("%s  %s  %d turns\n",
				s.StartedAt.Format("2006-01-02 15:04"), s.SessionID, s.TurnCount)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of sessions to list")
}
