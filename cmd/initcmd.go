package cmd

import (
	"context"
	"fmt"

	"grimm.is/nftadm/internal/config"
)

// RunInit writes the default configuration file.
func RunInit(configPath string) error {
	if err := config.WriteDefault(configPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", configPath)
	return nil
}

// RunProvision creates the base table and chains the tool manages.
// Provisioning is a single idempotent batch; re-running it on an
// already-provisioned host is harmless.
func RunProvision(configPath string) error {
	e, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireRoot(); err != nil {
		return err
	}
	if err := requireEngine(e.cfg.Engine); err != nil {
		return err
	}

	if err := e.applier.Provision(context.Background()); err != nil {
		return err
	}
	fmt.Printf("provisioned %s\n", e.applier.Triple().String())
	return nil
}
