package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weforyou/ledger/internal/account"
	"github.com/weforyou/ledger/internal/adapter/repo"
	"github.com/weforyou/ledger/internal/domain"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "grant-role <email> <role>",
		Short: "Add admin, volunteer or donor to a user's roles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), "users")
			if err != nil {
				return err
			}
			defer s.Close()

			svc := account.NewService(repo.NewUserRepository(s.runner), s.cfg.JWTSecret, s.cfg.TokenTTL)
			role := domain.Role(strings.ToLower(strings.TrimSpace(args[1])))
			user, err := svc.GrantRole(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			roles := make([]string, 0, len(user.Roles))
			for _, r := range user.Roles {
				roles = append(roles, string(r))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) roles: %s\n", user.Email, user.ID, strings.Join(roles, ","))
			return nil
		},
	})
	return cmd
}
