package nft

import (
	"context"
	"strings"
	"time"

	"grimm.is/nftadm/internal/logging"
)

// Recorder receives operation events for the audit trail. Injected so
// the core stays pure and independently testable.
type Recorder interface {
	Record(action, resource string, details map[string]any, ok bool)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) Record(string, string, map[string]any, bool) {}

// Outcome aggregates one batch of directive executions. Attempted
// always reflects the original directive list length, not retries.
type Outcome struct {
	Attempted int
	Succeeded int
	Failed    []Directive
}

// OK reports whether every directive in the batch succeeded.
func (o Outcome) OK() bool {
	return o.Succeeded == o.Attempted
}

// Applier executes directives against the engine, remediating a
// missing-structure failure once per directive.
type Applier struct {
	runner  Runner
	engine  string
	triple  Triple
	timeout time.Duration
	log     *logging.Logger
	rec     Recorder
}

// ApplierConfig holds the applier's dependencies. Zero fields fall back
// to defaults.
type ApplierConfig struct {
	Engine   string
	Triple   Triple
	Timeout  time.Duration
	Runner   Runner
	Logger   *logging.Logger
	Recorder Recorder
}

// NewApplier creates an applier for the managed triple.
func NewApplier(cfg ApplierConfig) *Applier {
	if cfg.Engine == "" {
		cfg.Engine = "nft"
	}
	if cfg.Triple == (Triple{}) {
		cfg.Triple = DefaultTriple
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Runner == nil {
		cfg.Runner = DefaultRunner
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.WithComponent("apply")
	}
	if cfg.Recorder == nil {
		cfg.Recorder = NopRecorder{}
	}
	return &Applier{
		runner:  cfg.Runner,
		engine:  cfg.Engine,
		triple:  cfg.Triple,
		timeout: cfg.Timeout,
		log:     cfg.Logger,
		rec:     cfg.Recorder,
	}
}

// Triple returns the managed triple the applier operates on.
func (a *Applier) Triple() Triple {
	return a.triple
}

// Apply runs each directive once, in order. A failure classified as
// missing base structures triggers provisioning and exactly one retry
// of the same directive; any other failure, or a second failure after
// remediation, is recorded and the batch continues.
func (a *Applier) Apply(ctx context.Context, directives []Directive) Outcome {
	out := Outcome{Attempted: len(directives)}

	for _, d := range directives {
		if a.applyOne(ctx, d) {
			out.Succeeded++
		} else {
			out.Failed = append(out.Failed, d)
		}
	}

	a.rec.Record("apply", a.triple.String(), map[string]any{
		"attempted": out.Attempted,
		"succeeded": out.Succeeded,
	}, out.OK())
	return out
}

func (a *Applier) applyOne(ctx context.Context, d Directive) bool {
	res, err := a.runOnce(ctx, d)
	if err != nil {
		// Timeouts and start failures count as plain execution failures.
		a.log.Error("directive failed", "directive", d.String(), "error", err)
		return false
	}
	if res.ExitCode == 0 {
		a.log.Info("directive applied", "directive", d.String())
		return true
	}

	stderr := strings.TrimSpace(res.Stderr)
	if !isResourceMissing(stderr) {
		a.log.Error("directive failed", "directive", d.String(), "stderr", stderr)
		return false
	}

	a.log.Warn("base structures missing, provisioning", "directive", d.String())
	if err := a.Provision(ctx); err != nil {
		a.log.Error("provisioning failed", "error", err)
		return false
	}

	res, err = a.runOnce(ctx, d)
	if err != nil || res.ExitCode != 0 {
		a.log.Error("directive failed after provisioning",
			"directive", d.String(), "stderr", strings.TrimSpace(res.Stderr))
		return false
	}
	a.log.Info("directive applied after provisioning", "directive", d.String())
	return true
}

func (a *Applier) runOnce(ctx context.Context, d Directive) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.runner.Run(ctx, a.engine, d.Args...)
}

// Delete removes a live rule by handle and records the outcome.
func (a *Applier) Delete(ctx context.Context, family, table, chain string, handle uint64) error {
	d := DeleteRule(family, table, chain, handle)

	res, err := a.runOnce(ctx, d)
	details := map[string]any{"handle": handle, "chain": chain}
	if err != nil {
		a.rec.Record("delete", family+" "+table, details, false)
		return err
	}
	if res.ExitCode != 0 {
		a.rec.Record("delete", family+" "+table, details, false)
		return &DirectiveError{Directive: d, Stderr: strings.TrimSpace(res.Stderr)}
	}
	a.rec.Record("delete", family+" "+table, details, true)
	a.log.Info("rule deleted", "handle", handle, "chain", chain)
	return nil
}
