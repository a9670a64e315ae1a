package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/de-tools/bonus-atlas/pkg/adapters"
	"github.com/de-tools/bonus-atlas/pkg/models/api"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewLoadCmd(env *Env) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load salons, suppliers, facts and overrides from a JSON seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			logger := zerolog.Ctx(ctx)

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read seed file: %w", err)
			}
			var seed api.Seed
			if err := json.Unmarshal(raw, &seed); err != nil {
				return fmt.Errorf("failed to parse seed file %s: %w", path, err)
			}

			facts := make([]domain.BonusFact, 0, len(seed.Facts))
			for i, f := range seed.Facts {
				fact, quarantined, err := adapters.MapApiFactToDomain(f)
				if err != nil {
					return fmt.Errorf("fact %d: %w", i, err)
				}
				for _, q := range quarantined {
					logger.Warn().
						Str("salon_id", f.SalonID).
						Str("supplier_id", f.SupplierID).
						Str("period", f.Period).
						Int("index", q.Index).
						Str("reason", q.Reason).
						Msg("dropping malformed brand detail")
				}
				facts = append(facts, fact)
			}

			ingest, err := env.Ingest(ctx)
			if err != nil {
				return err
			}
			err = ingest.InTransaction(ctx, func(ctx context.Context) error {
				if err := ingest.AddSalons(ctx, adapters.MapApiDirectoryToSalons(seed.Salons)); err != nil {
					return err
				}
				if err := ingest.AddSuppliers(ctx, adapters.MapApiDirectoryToSuppliers(seed.Suppliers)); err != nil {
					return err
				}
				if err := ingest.AddFacts(ctx, facts); err != nil {
					return err
				}
				for _, o := range seed.Overrides {
					if err := ingest.PutOverride(ctx, adapters.MapApiOverrideToDomain(o)); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to load seed: %w", err)
			}

			_, err = fmt.Fprintf(env.Output, "loaded %d salons, %d suppliers, %d facts, %d overrides\n",
				len(seed.Salons), len(seed.Suppliers), len(facts), len(seed.Overrides))
			return err
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "Path to the seed file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
