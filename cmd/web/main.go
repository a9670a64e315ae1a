package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/de-tools/bonus-atlas/pkg/metrics"
	"github.com/de-tools/bonus-atlas/pkg/server"
	"github.com/de-tools/bonus-atlas/pkg/services/engine"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for the salon bonus reports",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "bonus.yaml",
		"Path to the settings file (default is ./bonus.yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	registry := metrics.NewRegistry()
	eng, err := engine.Open(ctx, cfgPath, registry)
	if err != nil {
		return fmt.Errorf("failed to open bonus engine: %w", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close bonus engine")
		}
	}()

	settings := eng.Settings()
	logger.Info().Msgf("Configuration found at `%s` successfully loaded.", cfgPath)
	logger.Info().Msgf("Growth bonus supplier: `%s`, profile: `%s`", settings.Growth.SupplierID, settings.Store.Profile)

	addr := net.JoinHostPort(settings.Server.Host, strconv.Itoa(settings.Server.Port))
	api := server.NewWebAPI(server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Reports: eng,
			Metrics: registry,
			Logger:  logger,
		},
	})

	logger.Info().Msgf("starting server on %s", addr)
	return api.Start()
}
