package cmd

import (
	"context"
	"fmt"
	"strconv"
)

// RunDelete removes a rule from the managed chain, addressed either by
// its listing index or, with byHandle, by the engine handle directly.
func RunDelete(configPath, target string, byHandle bool) error {
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

	ctx := context.Background()

	handle, err := strconv.ParseUint(target, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid rule reference %q", target)
	}

	if !byHandle {
		dump, _, err := e.query.Fetch(ctx)
		if err != nil {
			return err
		}
		recs := e.query.ListManaged(dump)
		idx := int(handle)
		if idx < 1 || idx > len(recs) {
			return fmt.Errorf("no rule at index %d (have %d)", idx, len(recs))
		}
		handle = recs[idx-1].Handle
	}

	triple := e.applier.Triple()
	if err := e.applier.Delete(ctx, triple.Family, triple.Table, triple.Chain, handle); err != nil {
		return err
	}
	fmt.Printf("deleted rule with handle %d\n", handle)
	return nil
}
