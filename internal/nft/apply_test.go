package nft

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApplier(runner Runner) *Applier {
	return NewApplier(ApplierConfig{Runner: runner})
}

func TestApplySuccess(t *testing.T) {
	runner := &ScriptRunner{
		Responses: []Result{{}, {}},
	}
	a := testApplier(runner)

	directives := []Directive{
		AddRule(DefaultTriple, "tcp", "dport", "80", "accept"),
		AddRule(DefaultTriple, "tcp", "dport", "443", "accept"),
	}

	out := a.Apply(context.Background(), directives)
	assert.Equal(t, 2, out.Attempted)
	assert.Equal(t, 2, out.Succeeded)
	assert.True(t, out.OK())
	assert.Empty(t, out.Failed)

	require.Len(t, runner.Calls, 2)
	assert.Equal(t,
		[]string{"nft", "add", "rule", "ip", "filter", "input", "tcp", "dport", "80", "accept"},
		runner.Calls[0])
}

func TestApplyProvisionsOnMissingStructures(t *testing.T) {
	runner := &ScriptRunner{
		Responses: []Result{
			{ExitCode: 1, Stderr: `Error: Could not process rule: No such file or directory`},
			{}, // provision batch
			{}, // retry
		},
	}
	a := testApplier(runner)

	out := a.Apply(context.Background(), []Directive{
		AddRule(DefaultTriple, "tcp", "dport", "22", "accept"),
	})
	assert.Equal(t, 1, out.Attempted)
	assert.Equal(t, 1, out.Succeeded)
	assert.True(t, out.OK())

	require.Len(t, runner.Calls, 3)
	assert.Equal(t, []string{"nft", "-f", "-"}, runner.Calls[1])
	assert.Contains(t, runner.Inputs[1], "table ip filter {")
	assert.Contains(t, runner.Inputs[1], "type filter hook input priority 0; policy accept;")
	assert.Contains(t, runner.Inputs[1], "chain forward {")

	// First and third calls run the same directive.
	assert.Equal(t, runner.Calls[0], runner.Calls[2])
}

func TestApplyRetriesExactlyOnce(t *testing.T) {
	missing := Result{ExitCode: 1, Stderr: "Error: No such file or directory"}
	runner := &ScriptRunner{
		Responses: []Result{missing, {}, missing},
	}
	a := testApplier(runner)

	d := AddRule(DefaultTriple, "udp", "dport", "53", "drop")
	out := a.Apply(context.Background(), []Directive{d})

	assert.Equal(t, 1, out.Attempted)
	assert.Zero(t, out.Succeeded)
	assert.Equal(t, []Directive{d}, out.Failed)
	// Directive, provision, retry. Never a second remediation.
	assert.Len(t, runner.Calls, 3)
}

func TestApplyOtherFailureSkipsProvisioning(t *testing.T) {
	runner := &ScriptRunner{
		Responses: []Result{
			{ExitCode: 1, Stderr: "Error: syntax error, unexpected string"},
			{},
		},
	}
	a := testApplier(runner)

	bad := AddRule(DefaultTriple, "bogus")
	good := AddRule(DefaultTriple, "tcp", "dport", "80", "accept")

	out := a.Apply(context.Background(), []Directive{bad, good})
	assert.Equal(t, 2, out.Attempted)
	assert.Equal(t, 1, out.Succeeded)
	assert.Equal(t, []Directive{bad}, out.Failed)
	assert.False(t, out.OK())

	// No provision batch between the two directives.
	require.Len(t, runner.Calls, 2)
	for _, call := range runner.Calls {
		assert.NotContains(t, call, "-f")
	}
}

func TestApplyRunnerErrorSkipsProvisioning(t *testing.T) {
	runner := &ScriptRunner{
		Responses: []Result{{}, {}},
		Errs:      []error{context.DeadlineExceeded},
	}
	a := testApplier(runner)

	slow := AddRule(DefaultTriple, "tcp", "dport", "22", "accept")
	good := AddRule(DefaultTriple, "tcp", "dport", "80", "accept")

	out := a.Apply(context.Background(), []Directive{slow, good})
	assert.Equal(t, 2, out.Attempted)
	assert.Equal(t, 1, out.Succeeded)
	assert.Equal(t, []Directive{slow}, out.Failed)
	assert.False(t, out.OK())

	// The timed-out directive is neither remediated nor retried.
	require.Len(t, runner.Calls, 2)
	for _, call := range runner.Calls {
		assert.NotContains(t, call, "-f")
	}
	assert.Equal(t, []string{"nft", "add", "rule", "ip", "filter", "input", "tcp", "dport", "80", "accept"},
		runner.Calls[1])
}

func TestApplyRecordsOutcome(t *testing.T) {
	runner := &ScriptRunner{Responses: []Result{{}}}
	rec := &captureRecorder{}
	a := NewApplier(ApplierConfig{Runner: runner, Recorder: rec})

	a.Apply(context.Background(), []Directive{
		AddRule(DefaultTriple, "tcp", "dport", "80", "accept"),
	})

	require.Len(t, rec.events, 1)
	assert.Equal(t, "apply", rec.events[0].action)
	assert.Equal(t, "ip filter input", rec.events[0].resource)
	assert.True(t, rec.events[0].ok)
}

func TestDelete(t *testing.T) {
	runner := &ScriptRunner{Responses: []Result{{}}}
	rec := &captureRecorder{}
	a := NewApplier(ApplierConfig{Runner: runner, Recorder: rec})

	err := a.Delete(context.Background(), "ip", "filter", "input", 42)
	require.NoError(t, err)

	require.Len(t, runner.Calls, 1)
	assert.Equal(t,
		[]string{"nft", "delete", "rule", "ip", "filter", "input", "handle", "42"},
		runner.Calls[0])

	require.Len(t, rec.events, 1)
	assert.Equal(t, "delete", rec.events[0].action)
	assert.True(t, rec.events[0].ok)
}

func TestDeleteFailure(t *testing.T) {
	runner := &ScriptRunner{
		Responses: []Result{{ExitCode: 1, Stderr: "Error: Could not process rule: No such file or directory"}},
	}
	a := testApplier(runner)

	err := a.Delete(context.Background(), "ip", "filter", "input", 99)
	require.Error(t, err)

	var derr *DirectiveError
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Stderr, "No such file")
	// Deletion never provisions.
	assert.Len(t, runner.Calls, 1)
}

type captureRecorder struct {
	events []recordedEvent
}

type recordedEvent struct {
	action   string
	resource string
	details  map[string]any
	ok       bool
}

func (c *captureRecorder) Record(action, resource string, details map[string]any, ok bool) {
	c.events = append(c.events, recordedEvent{action, resource, details, ok})
}
