// Package config loads and writes the tool's HCL configuration: which
// engine binary to run, which table and chain it manages, and where the
// audit trail lives.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"grimm.is/nftadm/internal/audit"
	"grimm.is/nftadm/internal/brand"
	"grimm.is/nftadm/internal/nft"
)

// Config is the on-disk configuration.
type Config struct {
	Engine         string       `hcl:"engine,optional"`
	Family         string       `hcl:"family,optional"`
	Table          string       `hcl:"table,optional"`
	Chain          string       `hcl:"chain,optional"`
	TimeoutSeconds int          `hcl:"timeout_seconds,optional"`
	LogLevel       string       `hcl:"log_level,optional"`
	Audit          *AuditConfig `hcl:"audit,block"`
}

// AuditConfig controls the audit trail.
type AuditConfig struct {
	Enabled       bool   `hcl:"enabled,optional"`
	Path          string `hcl:"path,optional"`
	RetentionDays int    `hcl:"retention_days,optional"`
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		Engine:         brand.EngineBinary,
		Family:         nft.DefaultTriple.Family,
		Table:          nft.DefaultTriple.Table,
		Chain:          nft.DefaultTriple.Chain,
		TimeoutSeconds: int(nft.DefaultTimeout / time.Second),
		LogLevel:       "info",
		Audit: &AuditConfig{
			Enabled:       true,
			Path:          brand.DefaultAuditPath(),
			RetentionDays: audit.DefaultRetentionDays,
		},
	}
}

// Load reads the configuration at path. A missing file is not an
// error; the defaults apply. A present but invalid file is.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Engine == "" {
		c.Engine = def.Engine
	}
	if c.Family == "" {
		c.Family = def.Family
	}
	if c.Table == "" {
		c.Table = def.Table
	}
	if c.Chain == "" {
		c.Chain = def.Chain
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Audit == nil {
		c.Audit = def.Audit
	} else {
		if c.Audit.Path == "" {
			c.Audit.Path = def.Audit.Path
		}
		if c.Audit.RetentionDays <= 0 {
			c.Audit.RetentionDays = def.Audit.RetentionDays
		}
	}
}

// Triple returns the managed family/table/chain.
func (c *Config) Triple() nft.Triple {
	return nft.Triple{Family: c.Family, Table: c.Table, Chain: c.Chain}
}

// Timeout returns the per-command timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// WriteDefault renders the default configuration to path, creating
// parent directories. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	def := Default()
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("engine", cty.StringVal(def.Engine))
	body.SetAttributeValue("family", cty.StringVal(def.Family))
	body.SetAttributeValue("table", cty.StringVal(def.Table))
	body.SetAttributeValue("chain", cty.StringVal(def.Chain))
	body.SetAttributeValue("timeout_seconds", cty.NumberIntVal(int64(def.TimeoutSeconds)))
	body.SetAttributeValue("log_level", cty.StringVal(def.LogLevel))
	body.AppendNewline()

	audit := body.AppendNewBlock("audit", nil).Body()
	audit.SetAttributeValue("enabled", cty.BoolVal(def.Audit.Enabled))
	audit.SetAttributeValue("path", cty.StringVal(def.Audit.Path))
	audit.SetAttributeValue("retention_days", cty.NumberIntVal(int64(def.Audit.RetentionDays)))

	if err := os.WriteFile(path, f.Bytes(), 0640); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
