package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Throw away the saved in-progress session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		saved, err := e.store.HasSession()
		if err != nil {
			return err
		}
		if !saved {
			fmt.Println("No saved session.")
			return nil
		}
		if err := e.store.ClearSession(); err != nil {
			return err
		}
		e.log.Info().Msg("Saved session discarded")
		fmt.Println("Saved session discarded.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discardCmd)
}
