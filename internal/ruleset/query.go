package ruleset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grimm.is/nftadm/internal/logging"
	"grimm.is/nftadm/internal/nft"
)

// Record is one rule prepared for display: its position within the
// listing scope, its identity, and the reduced description.
type Record struct {
	Index       int
	Family      string
	Table       string
	Chain       string
	Handle      uint64
	Description string
	MatchReason string
}

// Summary counts the rules in the managed chain and how many of them
// match on a port.
type Summary struct {
	ManagedRules int
	PortRules    int
}

// Service reads and interprets the live ruleset.
type Service struct {
	runner  nft.Runner
	engine  string
	triple  nft.Triple
	timeout time.Duration
	log     *logging.Logger
}

// ServiceConfig holds the query service's dependencies. Zero fields
// fall back to defaults.
type ServiceConfig struct {
	Engine  string
	Triple  nft.Triple
	Timeout time.Duration
	Runner  nft.Runner
	Logger  *logging.Logger
}

// NewService creates a query service over the managed triple.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Engine == "" {
		cfg.Engine = "nft"
	}
	if cfg.Triple == (nft.Triple{}) {
		cfg.Triple = nft.DefaultTriple
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = nft.DefaultTimeout
	}
	if cfg.Runner == nil {
		cfg.Runner = nft.DefaultRunner
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.WithComponent("ruleset")
	}
	return &Service{
		runner:  cfg.Runner,
		engine:  cfg.Engine,
		triple:  cfg.Triple,
		timeout: cfg.Timeout,
		log:     cfg.Logger,
	}
}

// Fetch retrieves and parses the structured ruleset dump. The raw dump
// bytes are returned alongside the parsed form so callers can persist
// them verbatim.
func (s *Service) Fetch(ctx context.Context) (*Dump, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.runner.Run(ctx, s.engine, "-j", "-a", "list", "ruleset")
	if err != nil {
		return nil, nil, fmt.Errorf("listing ruleset: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, nil, fmt.Errorf("listing ruleset: %s", strings.TrimSpace(res.Stderr))
	}

	raw := []byte(res.Stdout)
	d, err := ParseDump(raw)
	if err != nil {
		return nil, raw, err
	}
	return d, raw, nil
}

// FetchText retrieves the plain-text listing. Used as the fallback when
// the structured dump cannot be parsed.
func (s *Service) FetchText(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.runner.Run(ctx, s.engine, "-nn", "list", "ruleset")
	if err != nil {
		return "", fmt.Errorf("listing ruleset: %w", err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("listing ruleset: %s", strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}

// ListManaged returns the rules inside the managed triple, in dump
// order, indexed from 1.
func (s *Service) ListManaged(d *Dump) []Record {
	var recs []Record
	for _, r := range d.Rules {
		if !s.managed(r) {
			continue
		}
		recs = append(recs, Record{
			Index:       len(recs) + 1,
			Family:      r.Family,
			Table:       r.Table,
			Chain:       r.Chain,
			Handle:      r.Handle,
			Description: Format(r.Expr),
		})
	}
	return recs
}

// FindByPort returns every rule in the dump, regardless of chain, that
// matches the given port in a payload port field. A non-empty proto
// restricts matches to that header protocol.
func (s *Service) FindByPort(d *Dump, port uint16, proto string) []Record {
	var recs []Record
	for _, r := range d.Rules {
		if !matchesPort(r.Expr, int(port), proto) {
			continue
		}
		recs = append(recs, Record{
			Index:       len(recs) + 1,
			Family:      r.Family,
			Table:       r.Table,
			Chain:       r.Chain,
			Handle:      r.Handle,
			Description: Format(r.Expr),
			MatchReason: fmt.Sprintf("port %d", port),
		})
	}
	return recs
}

// SearchText returns every rule whose reduced description contains the
// term, case-insensitively.
func (s *Service) SearchText(d *Dump, term string) []Record {
	needle := strings.ToLower(term)
	var recs []Record
	for _, r := range d.Rules {
		desc := Format(r.Expr)
		if !strings.Contains(strings.ToLower(desc), needle) {
			continue
		}
		recs = append(recs, Record{
			Index:       len(recs) + 1,
			Family:      r.Family,
			Table:       r.Table,
			Chain:       r.Chain,
			Handle:      r.Handle,
			Description: desc,
			MatchReason: "text",
		})
	}
	return recs
}

// Summarize tallies the managed chain: total rules, and how many of
// them carry a port descriptor.
func (s *Service) Summarize(d *Dump) Summary {
	var sum Summary
	for _, r := range d.Rules {
		if !s.managed(r) {
			continue
		}
		sum.ManagedRules++
		if Reduce(r.Expr).HasPort() {
			sum.PortRules++
		}
	}
	return sum
}

func (s *Service) managed(r Rule) bool {
	return r.Family == s.triple.Family &&
		r.Table == s.triple.Table &&
		r.Chain == s.triple.Chain
}

// matchesPort reports whether any destination-port payload match in
// the expression list compares against the given port, optionally
// restricted to one header protocol. Source ports are not searched.
func matchesPort(exprs []Expression, port int, proto string) bool {
	for _, e := range exprs {
		switch e.Kind {
		case KindMatch, KindRelational, KindCmp:
			m := e.Match
			if m == nil || m.Left.Payload == nil || m.Left.Payload.Field != "dport" {
				continue
			}
			if proto != "" && m.Left.Payload.Protocol != proto {
				continue
			}
			if v, ok := m.Right.Int(); ok && v == port {
				return true
			}
		case KindPayload:
			p := e.Payload
			if p == nil || p.Field != "dport" {
				continue
			}
			if proto != "" && p.Protocol != proto {
				continue
			}
			if v, ok := p.Value.Int(); ok && v == port {
				return true
			}
		}
	}
	return false
}

