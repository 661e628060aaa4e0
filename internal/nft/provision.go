package nft

import (
	"context"
	"fmt"
	"strings"
)

// baseScript renders the declarative snippet that defines the managed
// table with its three standard chains, default-accept at priority 0.
// The snippet is idempotent: re-adding an existing table is a no-op.
func baseScript(t Triple) string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s %s {\n", t.Family, t.Table)
	for _, chain := range []string{"input", "output", "forward"} {
		fmt.Fprintf(&b, "    chain %s {\n", chain)
		fmt.Fprintf(&b, "        type filter hook %s priority 0; policy accept;\n", chain)
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// Provision creates the managed table and its input/output/forward
// chains, submitting the whole definition to the engine as one batch
// via stdin.
func (a *Applier) Provision(ctx context.Context) error {
	script := baseScript(a.triple)
	a.log.Info("provisioning base structures", "table", a.triple.Table, "family", a.triple.Family)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res, err := a.runner.RunInput(ctx, script, a.engine, "-f", "-")
	if err != nil {
		return fmt.Errorf("provision base structures: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("provision base structures: %s", strings.TrimSpace(res.Stderr))
	}
	return nil
}
