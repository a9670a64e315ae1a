package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/de-tools/bonus-atlas/pkg/adapters"
	"github.com/de-tools/bonus-atlas/pkg/models/api"
	"github.com/de-tools/bonus-atlas/pkg/runtime/terminal/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type ExportCmd struct {
	env        *Env
	flags      yearFlags
	output     string
	bucket     string
	key        string
	awsProfile string
}

func NewExportCmd(env *Env) *cobra.Command {
	ec := &ExportCmd{env: env}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a full yearly bonus report as JSON to a file, stdout or S3",
		Args:  cobra.NoArgs,
		RunE:  ec.run,
	}

	ec.flags.register(cmd, env, true)
	cmd.Flags().StringVarP(&ec.output, "output", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVar(&ec.bucket, "s3-bucket", "", "Upload to this S3 bucket instead of writing locally")
	cmd.Flags().StringVar(&ec.key, "s3-key", "", "Object key (default bonus/<year>.json)")
	cmd.Flags().StringVar(&ec.awsProfile, "aws-profile", "", "Shared AWS config profile used for the upload")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	reports, err := ec.env.Reports(ctx)
	if err != nil {
		return err
	}

	bundle, err := collect(ctx, reports, ec.flags.year, ec.flags.suppliers, true)
	if err != nil {
		return err
	}
	bundle.GeneratedAt = ec.env.now().UTC().Format(time.RFC3339)

	body, err := export.Marshal(*bundle)
	if err != nil {
		return err
	}

	if ec.bucket != "" {
		return ec.upload(ctx, body)
	}
	return ec.write(ctx, body)
}

func (ec *ExportCmd) upload(ctx context.Context, body []byte) error {
	if ec.env.Uploader == nil {
		return fmt.Errorf("S3 export is not configured")
	}
	key := ec.key
	if key == "" {
		key = fmt.Sprintf("bonus/%d.json", ec.flags.year)
	}

	uploader, err := ec.env.Uploader(ctx, ec.awsProfile, ec.bucket)
	if err != nil {
		return fmt.Errorf("failed to create S3 uploader: %w", err)
	}
	return uploader.Upload(ctx, key, body)
}

func (ec *ExportCmd) write(ctx context.Context, body []byte) error {
	if ec.output == "-" {
		_, err := ec.env.Output.Write(body)
		return err
	}
	if err := os.WriteFile(ec.output, body, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", ec.output, err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", ec.output).Msg("report written")
	return nil
}

// collect runs the independent report queries concurrently.
func collect(ctx context.Context, reports Reports, year int, suppliers []string, withSalons bool) (*api.Report, error) {
	out := &api.Report{Year: year, Suppliers: suppliers}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		totals, err := reports.GetChainTotals(gctx, year, suppliers)
		if err != nil {
			return fmt.Errorf("failed to build chain totals: %w", err)
		}
		out.Totals = adapters.MapChainTotalsDomainToApi(totals)
		return nil
	})
	g.Go(func() error {
		bySupplier, err := reports.GetSupplierTotals(gctx, year)
		if err != nil {
			return fmt.Errorf("failed to build supplier totals: %w", err)
		}
		out.BySupplier = adapters.MapSupplierTotalsDomainToApi(bySupplier)
		return nil
	})
	g.Go(func() error {
		monthly, err := reports.GetMonthlyTotals(gctx, year, suppliers)
		if err != nil {
			return fmt.Errorf("failed to build monthly totals: %w", err)
		}
		out.Monthly = adapters.MapMonthlyTotalsDomainToApi(monthly)
		return nil
	})
	if withSalons {
		g.Go(func() error {
			rows, err := reports.GetSalonBonusOverview(gctx, year, suppliers)
			if err != nil {
				return fmt.Errorf("failed to build salon bonus overview: %w", err)
			}
			out.Salons = adapters.MapSalonBonusesDomainToApi(rows)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
