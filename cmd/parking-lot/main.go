package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/base-14/examples/go/random-parking-lot/internal/config"
	"github.com/base-14/examples/go/random-parking-lot/internal/export"
	"github.com/base-14/examples/go/random-parking-lot/internal/logging"
	"github.com/base-14/examples/go/random-parking-lot/internal/parking"
	"github.com/base-14/examples/go/random-parking-lot/internal/server"
	"github.com/base-14/examples/go/random-parking-lot/internal/shell"
	"github.com/base-14/examples/go/random-parking-lot/internal/telemetry"
)

var mode = flag.String("mode", "", "Mode to run: run, cli, server, or both (overrides MODE)")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tp, err := telemetry.New(ctx, telemetry.Config{
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Options{
		ServiceName:    cfg.OTelServiceName,
		Environment:    cfg.Environment,
		Output:         os.Stderr,
		LoggerProvider: tp.LoggerProvider(),
	})

	exporter, err := buildExporter(ctx, cfg)
	if err != nil {
		logging.Error(ctx, "failed to configure export", "error", err)
		shutdownTelemetry(tp)
		os.Exit(1)
	}

	newSource := sourceFactory(cfg)

	switch cfg.Mode {
	case "run":
		err = runBatch(ctx, cfg, tp, exporter, newSource)
	case "cli":
		runCLI(ctx, tp, exporter, newSource)
	case "server":
		err = runServer(ctx, cfg, tp, exporter, newSource)
	case "both":
		err = runBoth(ctx, cancel, cfg, tp, exporter, newSource)
	default:
		err = fmt.Errorf("invalid mode: %s. Must be run, cli, server, or both", cfg.Mode)
	}

	shutdownTelemetry(tp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, cfg *config.Config, tp *telemetry.Provider, exporter export.Exporter, newSource func() parking.Source) error {
	src := newSource()
	lot, err := parking.NewInstrumentedLot(ctx, cfg.LotArea, cfg.SpotLength, cfg.SpotWidth, tp, parking.WithSource(src))
	if err != nil {
		return err
	}

	var vehicles []*parking.Vehicle
	if len(cfg.Plates) > 0 {
		vehicles, err = parking.ParseVehicles(cfg.Plates)
		if err != nil {
			return err
		}
	} else {
		count := cfg.VehicleCount
		if count == 0 {
			count = lot.TotalSpots()
		}
		vehicles = parking.RandomVehicles(count, src)
	}

	rep := lot.Run(ctx, vehicles)
	for _, p := range rep.Attempts {
		fmt.Println(parking.DescribePlacement(p))
	}
	logging.Info(ctx, "run finished", "parked", rep.Parked, "full", rep.Full, "skipped", len(rep.Skipped))

	if exporter == nil {
		logging.Info(ctx, "export not configured, mapping kept in memory", "entries", len(rep.Mapping))
		return nil
	}
	res, err := exporter.Export(ctx, rep.Mapping)
	if err != nil {
		return err
	}
	fmt.Println(res)
	return nil
}

func runCLI(ctx context.Context, tp *telemetry.Provider, exporter export.Exporter, newSource func() parking.Source) {
	sh := shell.New(shell.Config{
		In:        os.Stdin,
		Out:       os.Stdout,
		Telemetry: tp,
		Exporter:  exporter,
		Source:    newSource(),
	})
	sh.Run(ctx)
}

func runServer(ctx context.Context, cfg *config.Config, tp *telemetry.Provider, exporter export.Exporter, newSource func() parking.Source) error {
	srv := newServer(cfg, tp, exporter, newSource)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	select {
	case err := <-serverDone:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logging.Info(context.Background(), "received shutdown signal")
	}

	return shutdownServer(srv)
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, tp *telemetry.Provider, exporter export.Exporter, newSource func() parking.Source) error {
	srv := newServer(cfg, tp, exporter, newSource)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan struct{})
	go func() {
		runCLI(ctx, tp, exporter, newSource)
		close(cliDone)
	}()

	var err error
	select {
	case err = <-serverDone:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(context.Background(), "received shutdown signal")
	}

	cancel()
	return errors.Join(err, shutdownServer(srv))
}

func newServer(cfg *config.Config, tp *telemetry.Provider, exporter export.Exporter, newSource func() parking.Source) *server.Server {
	return server.NewServer(server.Options{
		Port:        cfg.Port,
		ServiceName: cfg.OTelServiceName,
		Telemetry:   tp,
		Exporter:    exporter,
		NewSource:   newSource,
	})
}

func shutdownServer(srv *server.Server) error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func buildExporter(ctx context.Context, cfg *config.Config) (export.Exporter, error) {
	var exporters export.Multi
	if cfg.ExportFile != "" {
		exporters = append(exporters, export.NewFileExporter(cfg.ExportFile))
	}

	if cfg.S3Enabled() {
		client, err := export.NewS3Client(ctx, export.S3Config{
			Bucket:    cfg.S3Bucket,
			Key:       cfg.S3Key,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		s3Exporter, err := export.NewS3Exporter(client, cfg.S3Bucket, cfg.S3Key)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, s3Exporter)
	}

	if cfg.RedisEnabled() {
		redisExporter, err := export.NewRedisExporter(
			export.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.RedisKey)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, redisExporter)
	}

	if len(exporters) == 0 {
		return nil, nil
	}
	return exporters, nil
}

// sourceFactory hands out independent sources. With RANDOM_SEED set, the
// n-th source is seeded with seed+n so a whole session is reproducible.
func sourceFactory(cfg *config.Config) func() parking.Source {
	if !cfg.Seeded {
		return parking.NewCryptoSource
	}
	var next atomic.Uint64
	next.Store(cfg.RandomSeed)
	return func() parking.Source {
		return parking.NewSeededSource(next.Add(1) - 1)
	}
}

func shutdownTelemetry(tp *telemetry.Provider) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logging.Warn(shutdownCtx, "error shutting down telemetry", "error", err)
	}
}
