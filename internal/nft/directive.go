// Package nft drives the nftables CLI: it models rule directives,
// executes them through a pluggable command runner, provisions the base
// table and chains, and recovers once from missing-structure failures.
package nft

import (
	"fmt"
	"strings"
)

// Triple identifies the (family, table, chain) this tool manages.
type Triple struct {
	Family string
	Table  string
	Chain  string
}

// DefaultTriple is the inbound IPv4 filter chain.
var DefaultTriple = Triple{Family: "ip", Table: "filter", Chain: "input"}

func (t Triple) String() string {
	return t.Family + " " + t.Table + " " + t.Chain
}

// Directive is one concrete engine command, held as a tokenized argv so
// it can be passed to the runner without shell interpretation. The
// tokens exclude the engine binary itself.
type Directive struct {
	Args []string
}

// String renders the directive for display and logging.
func (d Directive) String() string {
	return strings.Join(d.Args, " ")
}

// AddRule builds a rule-addition directive for the given triple. The
// tokens are the match qualifiers followed by the action.
func AddRule(t Triple, tokens ...string) Directive {
	args := make([]string, 0, 5+len(tokens))
	args = append(args, "add", "rule", t.Family, t.Table, t.Chain)
	args = append(args, tokens...)
	return Directive{Args: args}
}

// DeleteRule builds a rule-deletion directive addressing a live rule by
// its engine-assigned handle.
func DeleteRule(family, table, chain string, handle uint64) Directive {
	return Directive{Args: []string{
		"delete", "rule", family, table, chain, "handle", fmt.Sprintf("%d", handle),
	}}
}
