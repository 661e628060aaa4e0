package ruleset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exprs decodes a JSON expression array the way the dump delivers it.
func exprs(t *testing.T, src string) []Expression {
	t.Helper()
	var out []Expression
	require.NoError(t, json.Unmarshal([]byte(src), &out))
	return out
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "tcp dport accept",
			src: `[
				{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": 22}},
				{"accept": null}
			]`,
			want: "port 22 allow",
		},
		{
			name: "udp dport drop",
			src: `[
				{"match": {"op": "==", "left": {"payload": {"protocol": "udp", "field": "dport"}}, "right": 53}},
				{"drop": null}
			]`,
			want: "port 53 deny",
		},
		{
			name: "reject reads as deny",
			src: `[
				{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": 23}},
				{"reject": {"type": "tcp reset"}}
			]`,
			want: "port 23 deny",
		},
		{
			name: "destination address",
			src: `[
				{"match": {"op": "==", "left": {"payload": {"protocol": "ip", "field": "daddr"}}, "right": "192.168.1.10"}},
				{"drop": null}
			]`,
			want: "ip daddr 192.168.1.10 deny",
		},
		{
			name: "prefix right value",
			src: `[
				{"match": {"op": "==", "left": {"payload": {"protocol": "ip", "field": "saddr"}}, "right": {"prefix": {"addr": "10.0.0.0", "len": 8}}}},
				{"accept": null}
			]`,
			want: "ip saddr 10.0.0.0/8 allow",
		},
		{
			name: "val wrapper unwraps",
			src: `[
				{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": {"val": 8080}}},
				{"accept": null}
			]`,
			want: "port 8080 allow",
		},
		{
			name: "negated port",
			src: `[
				{"match": {"op": "!=", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": 443, "negate": true}},
				{"drop": null}
			]`,
			want: "!port 443 deny",
		},
		{
			name: "first port match wins",
			src: `[
				{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": 80}},
				{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "sport"}}, "right": 1024}},
				{"accept": null}
			]`,
			want: "port 80 allow",
		},
		{
			name: "payload statement form",
			src: `[
				{"payload": {"protocol": "tcp", "field": "dport", "value": 25}},
				{"accept": null}
			]`,
			want: "port 25 allow",
		},
		{
			name: "meta key with value",
			src: `[
				{"match": {"op": "==", "left": {"meta": {"key": "iifname"}}, "right": "eth0"}},
				{"accept": null}
			]`,
			want: "iifname eth0 allow",
		},
		{
			name: "meta node",
			src: `[
				{"meta": {"key": "l4proto", "right": "tcp"}},
				{"accept": null}
			]`,
			want: "meta l4proto tcp allow",
		},
		{
			name: "ct state",
			src: `[
				{"ct": {"key": "state"}},
				{"accept": null}
			]`,
			want: "ct state allow",
		},
		{
			name: "ct with direction",
			src: `[
				{"ct": {"dir": "original", "key": "bytes"}},
				{"drop": null}
			]`,
			want: "ct original bytes deny",
		},
		{
			name: "counter with tallies",
			src: `[
				{"counter": {"packets": 42, "bytes": 2048}},
				{"accept": null}
			]`,
			want: "counter 42 packets 2048 bytes allow",
		},
		{
			name: "counter declaration form",
			src: `[
				{"counter": null},
				{"drop": null}
			]`,
			want: "counter 0 packets 0 bytes deny",
		},
		{
			name: "log and jump",
			src: `[
				{"log": null},
				{"jump": {"target": "mychain"}}
			]`,
			want: "log jump mychain",
		},
		{
			name: "return verdict",
			src:  `[{"return": null}]`,
			want: "return",
		},
		{
			name: "xt extension target",
			src:  `[{"xt": {"type": "target", "name": "MASQUERADE", "target": "MASQUERADE"}}, {"accept": null}]`,
			want: "[MASQUERADE] allow",
		},
		{
			name: "masquerade action",
			src:  `[{"masquerade": null}]`,
			want: "masquerade",
		},
		{
			name: "empty expression list",
			src:  `[]`,
			want: "(empty rule)",
		},
		{
			name: "only unknown nodes",
			src:  `[{"quota": {"bytes": 100}}, {"limit": {"rate": 5}}]`,
			want: "(complex rule)",
		},
		{
			name: "unknown node skipped among known ones",
			src: `[
				{"quota": {"bytes": 100}},
				{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": 22}},
				{"accept": null}
			]`,
			want: "port 22 allow",
		},
		{
			name: "generic payload qualifier",
			src: `[
				{"match": {"op": "==", "left": {"payload": {"protocol": "ip", "field": "protocol"}}, "right": "icmp"}},
				{"accept": null}
			]`,
			want: "ip protocol icmp allow",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(exprs(t, tc.src)))
		})
	}
}

func TestFormatDeterministic(t *testing.T) {
	src := `[
		{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": 443}},
		{"ct": {"key": "state"}},
		{"counter": {"packets": 1, "bytes": 64}},
		{"accept": null}
	]`

	first := Format(exprs(t, src))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Format(exprs(t, src)))
	}
}

func TestReduceSlots(t *testing.T) {
	f := Reduce(exprs(t, `[
		{"match": {"op": "==", "left": {"payload": {"protocol": "tcp", "field": "dport"}}, "right": 22}},
		{"ct": {"key": "state"}},
		{"accept": null}
	]`))

	require.True(t, f.HasPort())
	assert.Equal(t, "port 22", f.Port)
	assert.Equal(t, []string{"ct state"}, f.Qualifiers)
	assert.Equal(t, "allow", f.Action)
}
