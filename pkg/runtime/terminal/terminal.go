package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/de-tools/bonus-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/bonus-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

const (
	FormatTable = "table"
	FormatText  = "text"
	FormatJSON  = "json"
)

// Backend serves both the report and the ingest commands.
type Backend interface {
	commands.Reports
	commands.Ingest
}

// CLI represents the command-line interface
type CLI struct {
	opts       Options
	configPath string
	format     string
	backend    Backend
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	// Open connects the engine described by the settings file at configPath.
	Open          func(ctx context.Context, configPath string) (Backend, error)
	Uploader      func(ctx context.Context, profile, bucket string) (commands.Uploader, error)
	Output        io.Writer
	DefaultConfig string
	Now           func() time.Time
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cli := &CLI{opts: opts}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	if args != nil {
		cli.rootCmd.SetArgs(args)
	}
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bonus",
		Short:         "Salon loyalty and growth bonus reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(cli.opts.Output)

	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", cli.opts.DefaultConfig, "Path to the settings file")
	cmd.PersistentFlags().StringVar(&cli.format, "format", FormatTable, "Output format: table, text or json")

	env := &commands.Env{
		Reports:  func(ctx context.Context) (commands.Reports, error) { return cli.open(ctx) },
		Ingest:   func(ctx context.Context) (commands.Ingest, error) { return cli.open(ctx) },
		Reporter: cli.reporter,
		Uploader: cli.opts.Uploader,
		Output:   cli.opts.Output,
		Now:      cli.opts.Now,
	}

	cmd.AddCommand(commands.NewOverviewCmd(env))
	cmd.AddCommand(commands.NewSalonCmd(env))
	cmd.AddCommand(commands.NewTotalsCmd(env))
	cmd.AddCommand(commands.NewExportCmd(env))
	cmd.AddCommand(commands.NewLoadCmd(env))
	cmd.AddCommand(commands.NewOverrideCmd(env))

	return cmd
}

func (cli *CLI) open(ctx context.Context) (Backend, error) {
	if cli.backend != nil {
		return cli.backend, nil
	}
	if cli.opts.Open == nil {
		return nil, fmt.Errorf("no bonus engine configured")
	}

	backend, err := cli.opts.Open(ctx, cli.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bonus engine: %w", err)
	}
	cli.backend = backend
	return backend, nil
}

func (cli *CLI) reporter() (commands.Reporter, error) {
	switch cli.format {
	case FormatTable:
		return export.NewReporter(cli.opts.Output), nil
	case FormatText:
		return NewReporter(cli.opts.Output), nil
	case FormatJSON:
		return export.NewJSONReporter(cli.opts.Output), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", cli.format)
	}
}
