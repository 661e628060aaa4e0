package cmd

import (
	"context"
	"errors"
	"fmt"

	"grimm.is/nftadm/internal/logging"
	"grimm.is/nftadm/internal/nft"
)

// RunSetup checks for the nftables engine, installs it via the distro
// package manager when absent, and provisions the base structures.
func RunSetup(configPath string, assumeYes bool) error {
	e, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireRoot(); err != nil {
		return err
	}

	ctx := context.Background()

	path, err := nft.Detect(e.cfg.Engine)
	switch {
	case err == nil:
		fmt.Printf("engine found: %s\n", path)
	case errors.Is(err, nft.ErrEngineMissing):
		if !assumeYes && !confirmInstall() {
			return fmt.Errorf("engine not installed, setup aborted")
		}
		if err := nft.InstallEngine(ctx, nft.DefaultRunner, logging.WithComponent("setup")); err != nil {
			return err
		}
		fmt.Println("engine installed")
	default:
		return err
	}

	if err := e.applier.Provision(ctx); err != nil {
		return err
	}
	fmt.Printf("provisioned %s\n", e.applier.Triple().String())
	fmt.Println("setup complete")
	return nil
}

func confirmInstall() bool {
	fmt.Print("nftables is not installed. Install it now? [y/N] ")
	var answer string
	fmt.Scanln(&answer)
	return answer == "y" || answer == "Y" || answer == "yes"
}
