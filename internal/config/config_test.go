package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/nftadm/internal/audit"
	"grimm.is/nftadm/internal/nft"
)

func TestDecodeFull(t *testing.T) {
	hclContent := `
engine = "/usr/sbin/nft"
family = "inet"
table = "custom"
chain = "incoming"
timeout_seconds = 10
log_level = "debug"

audit {
  enabled = true
  path = "/tmp/audit.db"
  retention_days = 30
}
`
	var cfg Config
	err := hclsimple.Decode("test.hcl", []byte(hclContent), nil, &cfg)
	require.NoError(t, err)

	assert.Equal(t, "/usr/sbin/nft", cfg.Engine)
	assert.Equal(t, nft.Triple{Family: "inet", Table: "custom", Chain: "incoming"}, cfg.Triple())
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Audit)
	assert.Equal(t, "/tmp/audit.db", cfg.Audit.Path)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "nft", cfg.Engine)
	assert.Equal(t, nft.DefaultTriple, cfg.Triple())
	assert.Equal(t, nft.DefaultTimeout, cfg.Timeout())
	require.NotNil(t, cfg.Audit)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, audit.DefaultRetentionDays, cfg.Audit.RetentionDays)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nftadm.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`chain = "incoming"`+"\n"), 0640))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nft", cfg.Engine)
	assert.Equal(t, "incoming", cfg.Chain)
	assert.Equal(t, "filter", cfg.Table)
	assert.Equal(t, nft.DefaultTimeout, cfg.Timeout())
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nftadm.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`engine = `), 0640))

	_, err := Load(path)
	require.Error(t, err)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.d", "nftadm.hcl")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Engine, cfg.Engine)
	assert.Equal(t, nft.DefaultTriple, cfg.Triple())
	require.NotNil(t, cfg.Audit)
	assert.Equal(t, audit.DefaultRetentionDays, cfg.Audit.RetentionDays)

	// A second write must not clobber the existing file.
	err = WriteDefault(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
