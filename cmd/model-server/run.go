package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	apiserver "github.com/kubev2v/model-server/internal/api_server"
	"github.com/kubev2v/model-server/internal/config"
	"github.com/kubev2v/model-server/internal/events"
	"github.com/kubev2v/model-server/internal/fetch"
	"github.com/kubev2v/model-server/internal/importer"
	"github.com/kubev2v/model-server/internal/service"
	"github.com/kubev2v/model-server/internal/store"
	"github.com/kubev2v/model-server/pkg/metrics"
	"github.com/kubev2v/model-server/pkg/migrations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		undo := initLogger(cfg.Service.LogLevel, cfg.Service.LogFormat)
		defer undo()

		zap.S().Info("Starting model server")
		defer zap.S().Info("Model server stopped")
		zap.S().Infof("Using config: %s", cfg)

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		store := store.NewStore(db)
		defer store.Close()

		if err := migrations.MigrateStore(db, cfg.Service.MigrationFolder); err != nil {
			zap.S().Fatalw("running migrations", "error", err)
		}

		prometheus.MustRegister(metrics.NewRegistryStatsCollector(store))

		hub := newHubFetcher(cfg)
		modelSrv := service.NewModelService(store)

		importerOpts := []importer.ImporterOptions{
			importer.WithStatusBufferSize(cfg.Service.Importer.StatusBufferSize),
			importer.WithMaxConcurrentImports(cfg.Service.Importer.MaxConcurrentImports),
			importer.WithRegistrationTimeout(cfg.Service.Importer.RegistrationTimeout),
		}

		if cfg.Service.Events.Enabled {
			producer := events.NewEventProducer(&events.StdoutWriter{}, events.WithOutputTopic(cfg.Service.Events.Topic))
			defer producer.Close()
			importerOpts = append(importerOpts, importer.WithStatusObserver(producer.ObserveImportJob))
		}

		imp := importer.New(fetch.NewRouter(hub, fetch.NewDiskFetcher()), modelSrv, importerOpts...)
		// Shutdown owns the cancellation of running fetches.
		if err := imp.Start(context.Background()); err != nil {
			return err
		}

		importSrv := service.NewImportService(imp, hub)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		var servers sync.WaitGroup

		servers.Add(1)
		go func() {
			defer servers.Done()
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, listener, importSrv, modelSrv)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("Error running server", "error", err)
			}
		}()

		servers.Add(1)
		go func() {
			defer servers.Done()
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener, imp)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("Error running metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		servers.Wait()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Service.Importer.ShutdownTimeout)
		defer shutdownCancel()

		if err := imp.Shutdown(shutdownCtx); err != nil {
			zap.S().Warnw("importer did not stop cleanly", "error", err)
		}

		return nil
	},
}

// newHubFetcher builds the hub fetcher, with the S3 mirror in front of the hub
// when one is configured.
func newHubFetcher(cfg *config.Config) *fetch.HubFetcher {
	opts := []fetch.HubOpts{
		fetch.WithHubURL(cfg.Service.Hub.BaseUrl),
		fetch.WithToken(cfg.Service.Hub.Token),
		fetch.WithRevision(cfg.Service.Hub.Revision),
	}

	if cfg.Service.S3.Enabled() {
		mirror, err := fetch.NewMirror(
			fetch.WithEndpoint(cfg.Service.S3.Endpoint),
			fetch.WithBucket(cfg.Service.S3.Bucket),
			fetch.WithAccessKey(cfg.Service.S3.AccessKey),
			fetch.WithSecretKey(cfg.Service.S3.SecretKey),
			fetch.WithSSL(cfg.Service.S3.UseSSL),
		)
		if err == nil {
			opts = append(opts, fetch.WithMirror(mirror))
		} else {
			zap.S().Errorw("failed to create hub mirror", "error", err)
		}
	}

	return fetch.NewHubFetcher(cfg.Service.Hub.CacheDir, opts...)
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
