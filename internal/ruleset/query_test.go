package ruleset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/nftadm/internal/nft"
)

const sampleDump = `{"nftables": [
	{"metainfo": {"version": "1.0.9", "json_schema_version": 1}},
	{"table": {"family": "ip", "name": "filter", "handle": 1}},
	{"chain": {"family": "ip", "table": "filter", "name": "input", "handle": 1, "type": "filter", "hook": "input", "prio": 0, "policy": "accept"}},
	{"rule": {"family": "ip", "table": "filter", "chain": "input", "handle": 4, "expr": [
		{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": 22}},
		{"accept": null}
	]}},
	{"rule": {"family": "ip", "table": "filter", "chain": "input", "handle": 5, "expr": [
		{"match": {"op": "==", "left": {"payload": {"protocol": "udp", "field": "dport"}}, "right": 53}},
		{"drop": null}
	]}},
	{"rule": {"family": "ip", "table": "filter", "chain": "forward", "handle": 9, "expr": [
		{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": 22}},
		{"counter": {"packets": 3, "bytes": 180}},
		{"drop": null}
	]}},
	{"rule": {"family": "ip", "table": "filter", "chain": "forward", "handle": 10, "expr": [
		{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "sport"}}, "right": 22}},
		{"accept": null}
	]}},
	{"rule": {"family": "inet", "table": "nat", "chain": "postrouting", "handle": 12, "expr": [
		{"masquerade": null}
	]}}
]}`

func sampleService(t *testing.T) (*Service, *Dump) {
	t.Helper()
	d, err := ParseDump([]byte(sampleDump))
	require.NoError(t, err)
	return NewService(ServiceConfig{Runner: &nft.ScriptRunner{}}), d
}

func TestParseDump(t *testing.T) {
	d, err := ParseDump([]byte(sampleDump))
	require.NoError(t, err)
	require.Len(t, d.Rules, 5)
	assert.Equal(t, uint64(4), d.Rules[0].Handle)
	assert.Equal(t, "forward", d.Rules[2].Chain)
}

func TestParseDumpMalformed(t *testing.T) {
	_, err := ParseDump([]byte("not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, nft.ErrParseFailure)
}

func TestListManaged(t *testing.T) {
	s, d := sampleService(t)

	recs := s.ListManaged(d)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].Index)
	assert.Equal(t, 2, recs[1].Index)
	assert.Equal(t, "port 22 allow", recs[0].Description)
	assert.Equal(t, "port 53 deny", recs[1].Description)
	assert.Equal(t, uint64(5), recs[1].Handle)
}

func TestFindByPort(t *testing.T) {
	s, d := sampleService(t)

	// Handle 10 matches source port 22 and must not be returned.
	recs := s.FindByPort(d, 22, "")
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Contains(t, r.Description, "22")
		assert.Equal(t, "port 22", r.MatchReason)
	}
	assert.Equal(t, uint64(4), recs[0].Handle)
	assert.Equal(t, uint64(9), recs[1].Handle)

	assert.Empty(t, s.FindByPort(d, 8080, ""))

	// Protocol restriction.
	assert.Len(t, s.FindByPort(d, 53, "udp"), 1)
	assert.Empty(t, s.FindByPort(d, 53, "tcp"))
}

func TestSearchText(t *testing.T) {
	s, d := sampleService(t)

	recs := s.SearchText(d, "DENY")
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Contains(t, strings.ToLower(r.Description), "deny")
	}

	recs = s.SearchText(d, "masquerade")
	require.Len(t, recs, 1)
	assert.Equal(t, "postrouting", recs[0].Chain)

	assert.Empty(t, s.SearchText(d, "no such thing"))
}

func TestSummarize(t *testing.T) {
	s, d := sampleService(t)

	sum := s.Summarize(d)
	assert.Equal(t, 2, sum.ManagedRules)
	assert.Equal(t, 2, sum.PortRules)
}

func TestFetchParsesDump(t *testing.T) {
	runner := &nft.ScriptRunner{
		Responses: []nft.Result{{Stdout: sampleDump}},
	}
	s := NewService(ServiceConfig{Runner: runner})

	d, raw, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, d.Rules, 5)
	assert.Equal(t, sampleDump, string(raw))
	require.Len(t, runner.Calls, 1)
	assert.Equal(t, []string{"nft", "-j", "-a", "list", "ruleset"}, runner.Calls[0])
}

func TestFetchFallsBackToText(t *testing.T) {
	runner := &nft.ScriptRunner{
		Responses: []nft.Result{
			{Stdout: "garbage"},
			{Stdout: "table ip filter {\n}\n"},
		},
	}
	s := NewService(ServiceConfig{Runner: runner})

	_, raw, err := s.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, nft.ErrParseFailure)
	assert.Equal(t, "garbage", string(raw))

	text, err := s.FetchText(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "table ip filter")
	assert.Equal(t, []string{"nft", "-nn", "list", "ruleset"}, runner.Calls[1])
}

func TestFetchEngineFailure(t *testing.T) {
	runner := &nft.ScriptRunner{
		Responses: []nft.Result{{ExitCode: 1, Stderr: "internal:0:0-0: Error: cannot open netlink socket"}},
	}
	s := NewService(ServiceConfig{Runner: runner})

	_, _, err := s.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "netlink")
}

func TestExport(t *testing.T) {
	runner := &nft.ScriptRunner{
		Responses: []nft.Result{{Stdout: sampleDump}},
	}
	s := NewService(ServiceConfig{Runner: runner})

	dir := t.TempDir()
	path, err := s.Export(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "nft_rules_backup_"))
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleDump, string(data))
}
