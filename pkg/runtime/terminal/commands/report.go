package commands

import (
	"fmt"

	"github.com/de-tools/bonus-atlas/pkg/adapters"
	"github.com/spf13/cobra"
)

func NewOverviewCmd(env *Env) *cobra.Command {
	flags := &yearFlags{}
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show loyalty and growth bonus per salon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			reports, err := env.Reports(ctx)
			if err != nil {
				return err
			}
			reporter, err := env.Reporter()
			if err != nil {
				return err
			}

			rows, err := reports.GetSalonBonusOverview(ctx, flags.year, flags.suppliers)
			if err != nil {
				return fmt.Errorf("failed to build salon bonus overview: %w", err)
			}
			return reporter.Overview(flags.year, adapters.MapSalonBonusesDomainToApi(rows))
		},
	}
	flags.register(cmd, env, true)
	return cmd
}

func NewSalonCmd(env *Env) *cobra.Command {
	flags := &yearFlags{}
	cmd := &cobra.Command{
		Use:   "salon <salon-id>",
		Short: "Show the brand breakdown and growth bonus of one salon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			reports, err := env.Reports(ctx)
			if err != nil {
				return err
			}
			reporter, err := env.Reporter()
			if err != nil {
				return err
			}

			detail, err := reports.GetSalonDetail(ctx, args[0], flags.year)
			if err != nil {
				return fmt.Errorf("failed to build salon detail for %s: %w", args[0], err)
			}
			return reporter.Detail(adapters.MapSalonDetailDomainToApi(detail))
		},
	}
	flags.register(cmd, env, false)
	return cmd
}

func NewTotalsCmd(env *Env) *cobra.Command {
	flags := &yearFlags{}
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Show chain, supplier and monthly totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			reports, err := env.Reports(ctx)
			if err != nil {
				return err
			}
			reporter, err := env.Reporter()
			if err != nil {
				return err
			}

			bundle, err := collect(ctx, reports, flags.year, flags.suppliers, false)
			if err != nil {
				return err
			}
			return reporter.Totals(bundle.Totals, bundle.BySupplier, bundle.Monthly)
		},
	}
	flags.register(cmd, env, true)
	return cmd
}
