package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/bonus-atlas/pkg/runtime/terminal"
	"github.com/de-tools/bonus-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/bonus-atlas/pkg/services/engine"
	"github.com/de-tools/bonus-atlas/pkg/store/s3"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.WarnLevel)
	ctx := logger.WithContext(context.Background())

	var eng *engine.Engine
	cli := terminal.NewCLI(terminal.Options{
		Open: func(ctx context.Context, configPath string) (terminal.Backend, error) {
			var err error
			eng, err = engine.Open(ctx, configPath, nil)
			return eng, err
		},
		Uploader: func(ctx context.Context, profile, bucket string) (commands.Uploader, error) {
			return s3.NewExporterFromProfile(ctx, profile, bucket)
		},
		Output:        os.Stdout,
		DefaultConfig: "bonus.yaml",
	})

	err := cli.ExecuteContext(ctx)
	if eng != nil {
		if closeErr := eng.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("failed to close bonus engine")
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
