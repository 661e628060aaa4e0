package nft

import (
	"errors"
	"strings"
)

// Sentinel errors for the failure classes the orchestrator and query
// layers distinguish.
var (
	// ErrEngineMissing means the nft binary is not installed. Callers
	// offer an explicit setup step; the core never auto-installs.
	ErrEngineMissing = errors.New("nftables engine not found")

	// ErrResourceMissing means the managed table or chain is absent.
	// The applier remediates this once per directive.
	ErrResourceMissing = errors.New("firewall table or chain missing")

	// ErrParseFailure means the engine's structured dump did not match
	// the expected shape. Callers may fall back to the text listing.
	ErrParseFailure = errors.New("could not parse ruleset dump")
)

// DirectiveError reports a directive the engine rejected.
type DirectiveError struct {
	Directive Directive
	Stderr    string
}

func (e *DirectiveError) Error() string {
	if e.Stderr == "" {
		return "directive failed: " + e.Directive.String()
	}
	return "directive failed: " + e.Directive.String() + ": " + e.Stderr
}

// resourceMissingSignals are the stderr fragments the engine emits when
// the target table or chain does not exist.
var resourceMissingSignals = []string{
	"No such file or directory",
	"Could not process rule",
}

// isResourceMissing classifies stderr text from a failed directive.
func isResourceMissing(stderr string) bool {
	for _, sig := range resourceMissingSignals {
		if strings.Contains(stderr, sig) {
			return true
		}
	}
	return false
}
