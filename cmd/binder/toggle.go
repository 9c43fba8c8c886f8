package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <card-id>",
		Short: "Flip the owned flag of a card",
		Long: `Flips the owned flag of a card by Scryfall id without loading the
catalog. The change is saved before the command returns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			store := openOwnership(ctx, svc)
			owned, err := store.Toggle(ctx, args[0])
			if err != nil {
				return err
			}

			state := "no la tengo"
			if owned {
				state = "la tengo"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], state)
			return nil
		},
	}
}
