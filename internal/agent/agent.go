package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	config "github.com/mwantia/docsync/internal/config/server"
	"github.com/mwantia/docsync/pkg/api"
	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/store"
	"github.com/mwantia/docsync/pkg/log"
	"github.com/mwantia/docsync/pkg/metrics"
	"github.com/mwantia/docsync/pkg/vault"
)

type DocSyncAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	registry *prometheus.Registry
	meta     store.MetadataStore
	blobs    blob.Store
	vault    *vault.Vault
	server   *api.Server
}

func NewAgent(cfg *config.BaseServerConfig) *DocSyncAgent {
	return &DocSyncAgent{
		cfg:      cfg,
		sc:       container.NewServiceContainer(),
		log:      log.NewLoggerService("docsync", cfg.Log),
		registry: prometheus.NewRegistry(),
	}
}

// OpenMetadataStore builds, connects and migrates the metadata store
// selected by cfg.
func OpenMetadataStore(ctx context.Context, cfg config.MetadataServerConfig) (store.MetadataStore, error) {
	var (
		meta store.MetadataStore
		err  error
	)

	switch cfg.Type {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create metadata directory: %w", err)
		}
		meta, err = store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.SQLite.Path})
	case "badger":
		meta, err = store.NewBadgerStore(store.BadgerConfig{Path: cfg.Badger.Path})
	case "memory":
		meta = store.NewMemoryStore()
	default:
		err = fmt.Errorf("unknown metadata type '%s'", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := meta.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect metadata store: %w", err)
	}
	if err := meta.Migrate(ctx); err != nil {
		_ = meta.Close()
		return nil, fmt.Errorf("failed to migrate metadata store: %w", err)
	}
	return meta, nil
}

// OpenBlobStore builds the blob store selected by cfg.
func OpenBlobStore(ctx context.Context, cfg config.BlobServerConfig) (blob.Store, error) {
	switch cfg.Type {
	case "s3":
		return blob.NewS3StoreFromConfig(ctx, blob.S3Config{
			Bucket:         cfg.S3.Bucket,
			Region:         cfg.S3.Region,
			Endpoint:       cfg.S3.Endpoint,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			KeyPrefix:      cfg.S3.KeyPrefix,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
	case "memory":
		return blob.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown blob type '%s'", cfg.Type)
}

// VaultOptions maps the vault section of the configuration.
func VaultOptions(cfg config.VaultServerConfig) vault.Options {
	return vault.Options{
		BusinessDays: cfg.SLADays,
		SearchCap:    cfg.SearchCap,
		RecentDays:   cfg.RecentDays,
		SystemPrefix: cfg.SystemPrefix,
		Marker:       cfg.Marker,
		MoveWorkers:  cfg.MoveWorkers,
		Overwrite:    cfg.Overwrite,
	}
}

func (dsa *DocSyncAgent) setupServices(ctx context.Context) error {
	errs := container.Errors{}

	dsa.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](dsa.sc,
		container.With[log.LoggerService](),
		container.WithInstance(dsa.log)))
	if err := errs.Errors(); err != nil {
		return err
	}

	vaultLog, err := log.ResolveNamed(ctx, dsa.sc, "vault")
	if err != nil {
		return err
	}
	apiLog, err := log.ResolveNamed(ctx, dsa.sc, "api")
	if err != nil {
		return err
	}

	dsa.log.Debug("Opening '%s' metadata store...", dsa.cfg.Metadata.Type)
	if dsa.meta, err = OpenMetadataStore(ctx, dsa.cfg.Metadata); err != nil {
		return err
	}

	dsa.log.Debug("Opening '%s' blob store...", dsa.cfg.Blob.Type)
	if dsa.blobs, err = OpenBlobStore(ctx, dsa.cfg.Blob); err != nil {
		return err
	}

	dsa.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dsa.vault = vault.New(dsa.blobs, dsa.meta, vaultLog, metrics.New(dsa.registry), VaultOptions(dsa.cfg.Vault))
	dsa.server = api.NewServer(dsa.cfg.API, dsa.vault, apiLog, dsa.registry)

	dsa.log.Debug("Registering 'Vault'...")
	errs.Add(container.Register[vault.Vault](dsa.sc,
		container.With[api.Facade](),
		container.WithInstance(dsa.vault)))

	dsa.log.Debug("Registering 'Server'...")
	errs.Add(container.Register[api.Server](dsa.sc,
		container.WithInstance(dsa.server)))

	return errs.Errors()
}

// Serve runs the API server until an interrupt or termination signal.
func (dsa *DocSyncAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dsa.mutex.Lock()
	if err := dsa.setupServices(ctx); err != nil {
		dsa.mutex.Unlock()
		dsa.closeStores()
		return fmt.Errorf("failed to setup services: %w", err)
	}
	dsa.mutex.Unlock()

	errChan := make(chan error, 1)
	dsa.wait.Add(1)
	go func() {
		defer dsa.wait.Done()
		errChan <- dsa.server.Start(ctx)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		dsa.log.Info("Shutdown signal received")
	case serveErr = <-errChan:
		cancel()
	}

	timeout, err := time.ParseDuration(dsa.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := dsa.sc.Cleanup(shutdown); err != nil {
		dsa.log.Error("Failed to complete service container cleanup: %v", err)
	}
	if err := dsa.server.Stop(shutdown); err != nil {
		dsa.log.Warn("Failed to stop API server: %v", err)
	}

	dsa.wait.Wait()

	// Pending repairs must land before the metadata store closes.
	_ = dsa.vault.Close()
	dsa.closeStores()

	if serveErr != nil {
		return fmt.Errorf("api server failed: %w", serveErr)
	}
	return nil
}

func (dsa *DocSyncAgent) closeStores() {
	if dsa.blobs != nil {
		if err := dsa.blobs.Close(); err != nil {
			dsa.log.Warn("Failed to close blob store: %v", err)
		}
	}
	if dsa.meta != nil {
		if err := dsa.meta.Close(); err != nil {
			dsa.log.Warn("Failed to close metadata store: %v", err)
		}
	}
}
