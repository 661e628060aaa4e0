package cmd

import (
	"context"
	"fmt"
)

// RunExport saves the raw structured ruleset dump to a timestamped file
// in dir.
func RunExport(configPath, dir string) error {
	e, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireEngine(e.cfg.Engine); err != nil {
		return err
	}

	path, err := e.query.Export(context.Background(), dir)
	if err != nil {
		return err
	}
	fmt.Printf("ruleset exported to %s\n", path)
	return nil
}
