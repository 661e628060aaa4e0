// Package cmd implements the subcommands behind the nftadm binary.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"grimm.is/nftadm/internal/audit"
	"grimm.is/nftadm/internal/config"
	"grimm.is/nftadm/internal/logging"
	"grimm.is/nftadm/internal/nft"
	"grimm.is/nftadm/internal/ruleset"
)

// env bundles the wired-up layers a subcommand operates on.
type env struct {
	cfg     *config.Config
	applier *nft.Applier
	query   *ruleset.Service
	store   *audit.Store
}

// close releases the audit store, if one was opened.
func (e *env) close() {
	if e.store != nil {
		e.store.Close()
	}
}

// loadEnv loads configuration and wires the apply and query layers. The
// audit trail is opened best-effort; a failure downgrades to the no-op
// recorder rather than blocking the command.
func loadEnv(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	applyLogLevel(cfg.LogLevel)

	var rec nft.Recorder = nft.NopRecorder{}
	var store *audit.Store
	if cfg.Audit != nil && cfg.Audit.Enabled {
		store, err = audit.NewStore(cfg.Audit.Path, cfg.Audit.RetentionDays)
		if err != nil {
			logging.Warn("audit trail unavailable", "path", cfg.Audit.Path, "error", err)
		} else {
			rec = store
		}
	}

	return &env{
		cfg: cfg,
		applier: nft.NewApplier(nft.ApplierConfig{
			Engine:   cfg.Engine,
			Triple:   cfg.Triple(),
			Timeout:  cfg.Timeout(),
			Recorder: rec,
		}),
		query: ruleset.NewService(ruleset.ServiceConfig{
			Engine:  cfg.Engine,
			Triple:  cfg.Triple(),
			Timeout: cfg.Timeout(),
		}),
		store: store,
	}, nil
}

func applyLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logging.Default().SetLevel(logging.LevelDebug)
	case "warn":
		logging.Default().SetLevel(logging.LevelWarn)
	case "error":
		logging.Default().SetLevel(logging.LevelError)
	default:
		logging.Default().SetLevel(logging.LevelInfo)
	}
}

// requireEngine resolves the engine binary or fails with a hint at the
// setup subcommand.
func requireEngine(engine string) error {
	if _, err := nft.Detect(engine); err != nil {
		return fmt.Errorf("%w (run \"nftadm setup\" to install it)", err)
	}
	return nil
}

// requireRoot refuses to proceed without the privileges mutations need.
func requireRoot() error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("this command must run as root")
	}
	return nil
}
