package cmd

import (
	"context"
	"fmt"

	"grimm.is/nftadm/internal/ruleset"
	"grimm.is/nftadm/internal/validation"
)

// RunSearch finds rules matching a port number or free-text term across
// the whole ruleset.
func RunSearch(configPath, term string) error {
	e, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireEngine(e.cfg.Engine); err != nil {
		return err
	}

	dump, _, err := e.query.Fetch(context.Background())
	if err != nil {
		return err
	}

	var recs []ruleset.Record
	if port, perr := validation.ParsePortNumber(term); perr == nil {
		recs = e.query.FindByPort(dump, port, "")
	} else {
		recs = e.query.SearchText(dump, term)
	}

	if len(recs) == 0 {
		fmt.Printf("no rules matching %q\n", term)
		return nil
	}
	for _, r := range recs {
		fmt.Printf("%3d. [%s %s %s] %s (handle %d)\n",
			r.Index, r.Family, r.Table, r.Chain, r.Description, r.Handle)
	}
	return nil
}

// RunSummary prints rule counts for the managed chain and port-matching
// rules across the ruleset.
func RunSummary(configPath string) error {
	e, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireEngine(e.cfg.Engine); err != nil {
		return err
	}

	dump, _, err := e.query.Fetch(context.Background())
	if err != nil {
		return err
	}

	sum := e.query.Summarize(dump)
	fmt.Printf("managed chain: %s\n", e.applier.Triple().String())
	fmt.Printf("managed rules: %d\n", sum.ManagedRules)
	fmt.Printf("port rules:    %d\n", sum.PortRules)
	return nil
}
