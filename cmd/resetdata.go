package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetDataYes bool

var resetDataCmd = &cobra.Command{
	Use:   "reset-data",
	Short: "Delete all locally recorded transcripts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetDataYes {
			fmt.Println("This deletes all locally recorded transcripts. Re-run with --yes to confirm.")
			return nil
		}

		store, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open transcript store: %w", err)
		}
		defer store.Close()

		if err := store.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear transcripts: %w", err)
		}
		fmt.Println("Local transcripts cleared.")
		return nil
	},
}

func init() {
	resetDataCmd.Flags().BoolVar(&resetDataYes, "yes", false, "Confirm deletion")
}
