package cmd

import (
	"context"

	"grimm.is/nftadm/internal/tui"
)

// RunConsole starts the interactive console.
func RunConsole(configPath string) error {
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

	return tui.NewConsole(e.applier, e.query).Run(context.Background())
}
