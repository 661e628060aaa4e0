package cmd

import (
	"context"
	"errors"
	"fmt"

	"grimm.is/nftadm/internal/logging"
	"grimm.is/nftadm/internal/nft"
	"grimm.is/nftadm/internal/ruleset"
)

// RunRules lists the rules in the managed chain, one numbered line per
// rule. If the structured dump cannot be parsed the raw text listing is
// printed instead.
func RunRules(configPath string, all bool) error {
	e, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := requireEngine(e.cfg.Engine); err != nil {
		return err
	}

	ctx := context.Background()
	dump, _, err := e.query.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, nft.ErrParseFailure) {
			return err
		}
		logging.Warn("structured dump unreadable, showing raw listing")
		text, terr := e.query.FetchText(ctx)
		if terr != nil {
			return terr
		}
		fmt.Print(text)
		return nil
	}

	if all {
		for i, r := range dump.Rules {
			fmt.Printf("%3d. [%s %s %s] %s\n", i+1, r.Family, r.Table, r.Chain, ruleset.Format(r.Expr))
		}
		return nil
	}

	recs := e.query.ListManaged(dump)
	if len(recs) == 0 {
		fmt.Printf("no rules in %s\n", e.applier.Triple().String())
		return nil
	}
	for _, r := range recs {
		fmt.Printf("%3d. %s (handle %d)\n", r.Index, r.Description, r.Handle)
	}
	return nil
}
