package client

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mwantia/docsync/internal/agent"
	config "github.com/mwantia/docsync/internal/config/server"
	"github.com/mwantia/docsync/pkg/access"
	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/store"
	"github.com/mwantia/docsync/pkg/log"
	"github.com/mwantia/docsync/pkg/metrics"
	"github.com/mwantia/docsync/pkg/vault"
)

// session is a vault opened directly on the configured stores, acting as
// the identity given by the --role and --as flags.
type session struct {
	vault *vault.Vault
	vis   access.Context

	meta  store.MetadataStore
	blobs blob.Store
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server configuration: %w", err)
	}

	roleName, _ := cmd.Flags().GetString("role")
	role, err := access.ParseRole(roleName)
	if err != nil {
		return nil, err
	}
	name, _ := cmd.Flags().GetString("as")

	ctx := cmd.Context()
	meta, err := agent.OpenMetadataStore(ctx, cfg.Metadata)
	if err != nil {
		return nil, err
	}
	blobs, err := agent.OpenBlobStore(ctx, cfg.Blob)
	if err != nil {
		_ = meta.Close()
		return nil, err
	}

	logger := log.NewLoggerService("vfs", cfg.Log)
	m := metrics.New(prometheus.NewRegistry())

	return &session{
		vault: vault.New(blobs, meta, logger, m, agent.VaultOptions(cfg.Vault)),
		vis:   access.Context{Role: role, DisplayName: name},
		meta:  meta,
		blobs: blobs,
	}, nil
}

// Close waits for pending metadata repairs before closing the stores.
func (s *session) Close() error {
	_ = s.vault.Close()
	_ = s.blobs.Close()
	return s.meta.Close()
}

// withSession runs fn against an open session and closes it afterwards.
func withSession(fn func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return fn(cmd.Context(), cmd, s, args)
	}
}

func defaultDisplayName() string {
	if name := os.Getenv("DOCSYNC_DISPLAY_NAME"); name != "" {
		return name
	}
	return os.Getenv("USER")
}
