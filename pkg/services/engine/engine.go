package engine

import (
	"context"
	"fmt"

	"github.com/de-tools/bonus-atlas/pkg/metrics"
	"github.com/de-tools/bonus-atlas/pkg/models/domain"
	"github.com/de-tools/bonus-atlas/pkg/services/config"
	"github.com/de-tools/bonus-atlas/pkg/services/growth"
	"github.com/de-tools/bonus-atlas/pkg/services/override"
	"github.com/de-tools/bonus-atlas/pkg/services/report"
	"github.com/de-tools/bonus-atlas/pkg/services/retrieval"
	"github.com/de-tools/bonus-atlas/pkg/store/database"
	"github.com/de-tools/bonus-atlas/pkg/store/directory"
	"github.com/de-tools/bonus-atlas/pkg/store/facts"
	"github.com/de-tools/bonus-atlas/pkg/store/overrides"
	"github.com/rs/zerolog"
)

// Engine owns the data source connection and every store and service built
// on it. The embedded assembler serves the reports.
type Engine struct {
	*report.Assembler

	settings  *config.Settings
	conn      *config.Connection
	facts     facts.Store
	overrides overrides.Store
	directory directory.Store
}

// Open loads the settings file, resolves the configured profile and builds
// the engine on it.
func Open(ctx context.Context, settingsPath string, m *metrics.Registry) (*Engine, error) {
	logger := zerolog.Ctx(ctx)

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	registry, err := config.NewRegistry(settings.Store.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile registry: %w", err)
	}
	profile, err := registry.GetProfile(ctx, settings.Store.Profile)
	if err != nil {
		return nil, err
	}

	conn, err := config.Open(profile)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("profile", profile.Name).
		Str("type", string(profile.Type)).
		Str("growth_supplier", settings.Growth.SupplierID).
		Msg("bonus engine connected")

	eng, err := New(settings, conn, m)
	if err != nil {
		_ = conn.DB.Close()
		return nil, err
	}
	return eng, nil
}

// New builds the engine on an already open connection.
func New(settings *config.Settings, conn *config.Connection, m *metrics.Registry) (*Engine, error) {
	calculator, err := growth.NewCalculator(settings.Growth.SupplierID, settings.GrowthSchedule())
	if err != nil {
		return nil, fmt.Errorf("invalid growth configuration: %w", err)
	}

	factStore, err := facts.NewStore(conn.DB, facts.Options{Flavor: conn.Flavor, Metrics: m})
	if err != nil {
		return nil, fmt.Errorf("failed to create fact store: %w", err)
	}
	overrideStore, err := overrides.NewStore(conn.DB, conn.Flavor)
	if err != nil {
		return nil, fmt.Errorf("failed to create override store: %w", err)
	}
	directoryStore, err := directory.NewStore(conn.DB, conn.Flavor)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory store: %w", err)
	}

	assembler := report.NewAssembler(
		retrieval.NewRetriever(factStore, settings.Retrieval.PageSize, m),
		override.NewResolver(overrideStore, m),
		calculator,
		directoryStore,
		m,
	)

	return &Engine{
		Assembler: assembler,
		settings:  settings,
		conn:      conn,
		facts:     factStore,
		overrides: overrideStore,
		directory: directoryStore,
	}, nil
}

func (e *Engine) Settings() *config.Settings {
	return e.settings
}

func (e *Engine) Close() error {
	return e.conn.DB.Close()
}

func (e *Engine) writable() error {
	if !e.conn.Local {
		return fmt.Errorf("profile %s is read-only", e.settings.Store.Profile)
	}
	return nil
}

func (e *Engine) AddFacts(ctx context.Context, facts []domain.BonusFact) error {
	if err := e.writable(); err != nil {
		return err
	}
	return e.facts.Add(ctx, facts)
}

func (e *Engine) AddSalons(ctx context.Context, salons []domain.Salon) error {
	if err := e.writable(); err != nil {
		return err
	}
	return e.directory.AddSalons(ctx, salons)
}

func (e *Engine) AddSuppliers(ctx context.Context, suppliers []domain.Supplier) error {
	if err := e.writable(); err != nil {
		return err
	}
	return e.directory.AddSuppliers(ctx, suppliers)
}

func (e *Engine) PutOverride(ctx context.Context, o domain.BaselineOverride) error {
	if err := e.writable(); err != nil {
		return err
	}
	return e.overrides.Put(ctx, o)
}

// InTransaction runs fn with a transaction bound to its context. Stores
// called with that context join it.
func (e *Engine) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := e.conn.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(database.WithTransaction(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			zerolog.Ctx(ctx).Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
