package commands

import (
	"context"
	"io"
	"time"

	"github.com/de-tools/bonus-atlas/pkg/models/api"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/spf13/cobra"
)

const commandTimeout = 60 * time.Second

// Reports is the read side of the bonus engine.
type Reports interface {
	GetSalonBonusOverview(ctx context.Context, year int, supplierFilter []string) ([]domain.AggregatedSalonBonus, error)
	GetSalonDetail(ctx context.Context, salonID string, year int) (*domain.SalonDetail, error)
	GetChainTotals(ctx context.Context, year int, supplierFilter []string) (*domain.ChainTotals, error)
	GetSupplierTotals(ctx context.Context, year int) ([]domain.SupplierTotals, error)
	GetMonthlyTotals(ctx context.Context, year int, supplierFilter []string) ([]domain.MonthlyTotals, error)
}

// Ingest is the write side used to seed local stores.
type Ingest interface {
	AddFacts(ctx context.Context, facts []domain.BonusFact) error
	AddSalons(ctx context.Context, salons []domain.Salon) error
	AddSuppliers(ctx context.Context, suppliers []domain.Supplier) error
	PutOverride(ctx context.Context, override domain.BaselineOverride) error
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Reporter interface {
	Overview(year int, rows []api.SalonBonus) error
	Detail(d api.SalonDetail) error
	Totals(t api.ChainTotals, suppliers []api.SupplierTotals, months []api.MonthlyTotals) error
}

type Uploader interface {
	Upload(ctx context.Context, key string, body []byte) error
}

// Env carries the lazily opened dependencies shared by all commands.
type Env struct {
	Reports  func(ctx context.Context) (Reports, error)
	Ingest   func(ctx context.Context) (Ingest, error)
	Reporter func() (Reporter, error)
	Uploader func(ctx context.Context, profile, bucket string) (Uploader, error)
	Output   io.Writer
	Now      func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// yearFlags are shared by every report command.
type yearFlags struct {
	year      int
	suppliers []string
}

func (f *yearFlags) register(cmd *cobra.Command, env *Env, withSuppliers bool) {
	cmd.Flags().IntVar(&f.year, "year", env.now().Year(), "Calendar year to report on")
	if withSuppliers {
		cmd.Flags().StringSliceVar(&f.suppliers, "supplier", nil, "Restrict to these supplier ids (repeatable)")
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), commandTimeout)
}
