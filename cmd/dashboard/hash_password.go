package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"impactdash/internal/auth"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\nPasswort-Hash erfolgreich generiert:")
			fmt.Fprintln(out)
			fmt.Fprintln(out, hash)
			fmt.Fprintln(out, "\nFügen Sie diesen Hash in Ihre .env.local Datei ein:")
			fmt.Fprintf(out, "ADMIN_PASSWORD_HASH=%q\n", hash)
			return nil
		},
	}
}
