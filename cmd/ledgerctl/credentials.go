package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weforyou/ledger/internal/infra/credentials"
)

func credentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Store integration secrets in the database",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <provider> <token>",
		Short: "Save a secret used when the environment does not provide one",
		Long: "Providers: " + strings.Join(credentials.Providers, ", ") + `

Environment values always take precedence over stored secrets.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), "credentials")
			if err != nil {
				return err
			}
			defer s.Close()

			provider := strings.ToLower(strings.TrimSpace(args[0]))
			if err := credentials.NewStore(s.runner).Set(cmd.Context(), provider, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", provider)
			return nil
		},
	})
	return cmd
}
