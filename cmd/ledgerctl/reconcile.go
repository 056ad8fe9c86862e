package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/weforyou/ledger/internal/adapter/repo"
	"github.com/weforyou/ledger/internal/ledger"
)

func reconcileCmd() *cobra.Command {
	var (
		campaignID string
		repair     bool
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare campaign totals with settled donations",
		Long: `Recompute every campaign's raised amount and donor count from settled
donations and report the campaigns whose stored aggregates drifted.

Examples:
  ledgerctl reconcile
  ledgerctl reconcile --campaign 6f1c... --repair`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), "reconcile")
			if err != nil {
				return err
			}
			defer s.Close()

			svc := ledger.NewService(ledger.Options{
				Ledger:    repo.NewLedgerRepository(s.runner),
				Campaigns: repo.NewCampaignRepository(s.runner),
				Logger:    s.logger,
			})
			audits, err := svc.Reconcile(cmd.Context(), campaignID, repair)
			if err != nil {
				return err
			}

			drift := 0
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CAMPAIGN\tSTORED\tCOMPUTED\tDONORS\tSTATE")
			for _, a := range audits {
				state := "ok"
				if !a.Consistent() {
					drift++
					state = "drift"
					if a.Repaired {
						state = "repaired"
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n",
					a.CampaignID, a.StoredAmount, a.ComputedAmount, a.StoredDonors, a.ComputedDonors, state)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d campaigns checked, %d drifted\n", len(audits), drift)
			if drift > 0 && !repair {
				return fmt.Errorf("%d campaigns need repair; rerun with --repair", drift)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&campaignID, "campaign", "", "only audit this campaign id")
	cmd.Flags().BoolVar(&repair, "repair", false, "rewrite drifted aggregates")
	return cmd
}
