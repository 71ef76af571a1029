package agent

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/mwantia/docsync/internal/config/server"
	"github.com/mwantia/docsync/pkg/blob"
	"github.com/mwantia/docsync/pkg/db/store"
)

func TestOpenMetadataStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.MetadataServerConfig
	}{
		{name: "memory", cfg: config.MetadataServerConfig{Type: "memory"}},
		{name: "sqlite", cfg: config.MetadataServerConfig{
			Type:   "sqlite",
			SQLite: config.MetadataSQLiteConfig{Path: filepath.Join(dir, "docsync.db")},
		}},
		{name: "badger", cfg: config.MetadataServerConfig{Type: "badger"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := OpenMetadataStore(ctx, tt.cfg)
			require.NoError(t, err)
			defer meta.Close()

			assert.NoError(t, meta.Health(ctx))
			_, err = meta.Get(ctx, "missing")
			assert.Error(t, err)
		})
	}

	_, err := OpenMetadataStore(ctx, config.MetadataServerConfig{Type: "postgres"})
	assert.Error(t, err)
}

func TestOpenBlobStore(t *testing.T) {
	ctx := context.Background()

	blobs, err := OpenBlobStore(ctx, config.BlobServerConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &blob.MemoryStore{}, blobs)

	_, err = OpenBlobStore(ctx, config.BlobServerConfig{Type: "ftp"})
	assert.Error(t, err)

	_, err = OpenBlobStore(ctx, config.BlobServerConfig{Type: "s3"})
	assert.Error(t, err, "bucket is required")
}

func TestVaultOptions(t *testing.T) {
	cfg := config.GetServerDefault()

	opts := VaultOptions(cfg.Vault)
	assert.Equal(t, cfg.Vault.SLADays, opts.BusinessDays)
	assert.Equal(t, cfg.Vault.SearchCap, opts.SearchCap)
	assert.Equal(t, cfg.Vault.MoveWorkers, opts.MoveWorkers)
	assert.Equal(t, "upload_", opts.SystemPrefix)
	assert.True(t, opts.Overwrite)
}

func TestSetupServices(t *testing.T) {
	cfg := config.GetServerDefault()
	cfg.Metadata.Type = "memory"
	cfg.Log.Level = "error"

	agent := NewAgent(&cfg)
	require.NoError(t, agent.setupServices(context.Background()))
	t.Cleanup(agent.closeStores)

	assert.IsType(t, &store.MemoryStore{}, agent.meta)
	assert.NotNil(t, agent.vault)
	assert.NotNil(t, agent.server)
	assert.NoError(t, agent.vault.Health(context.Background()))
}
