package commands

import (
	"fmt"

	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func NewOverrideCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Manage corrected prior-year baselines",
	}
	cmd.AddCommand(newOverrideSetCmd(env))
	return cmd
}

func newOverrideSetCmd(env *Env) *cobra.Command {
	var (
		salonID    string
		supplierID string
		year       int
		turnover   string
		reason     string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the corrected turnover of a salon for a prior year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			amount, err := decimal.NewFromString(turnover)
			if err != nil {
				return fmt.Errorf("invalid turnover %q: %w", turnover, err)
			}

			ingest, err := env.Ingest(ctx)
			if err != nil {
				return err
			}

			err = ingest.PutOverride(ctx, domain.BaselineOverride{
				OverrideKey:      domain.OverrideKey{SalonID: salonID, SupplierID: supplierID, Year: year},
				OverrideTurnover: amount,
				Reason:           reason,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(env.Output, "override set for %s/%s %d: %s\n", salonID, supplierID, year, amount.StringFixed(2))
			return err
		},
	}

	cmd.Flags().StringVar(&salonID, "salon", "", "Salon id")
	cmd.Flags().StringVar(&supplierID, "supplier", "", "Growth supplier id")
	cmd.Flags().IntVar(&year, "year", env.now().Year()-1, "Year whose turnover is corrected")
	cmd.Flags().StringVar(&turnover, "turnover", "", "Corrected turnover")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the baseline was corrected")

	_ = cmd.MarkFlagRequired("salon")
	_ = cmd.MarkFlagRequired("supplier")
	_ = cmd.MarkFlagRequired("turnover")

	return cmd
}
