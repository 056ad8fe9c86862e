package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weforyou/ledger/internal/bootstrap"
)

func pledgesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pledges",
		Short: "Recurring pledge operations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "charge-due",
		Short: "Run one scheduler pass over due pledges and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig("pledges")
			if err != nil {
				return err
			}
			svc, err := bootstrap.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			sum, err := svc.Scheduler.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "claimed %d, settled %d, pending %d, failed %d\n",
				sum.Claimed, sum.Settled, sum.Pending, sum.Failed)
			return nil
		},
	})
	return cmd
}
