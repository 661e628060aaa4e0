package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/nftadm/internal/nft"
)

var testTriple = nft.Triple{Family: "ip", Table: "filter", Chain: "input"}

func TestSynthesizeDNSPreset(t *testing.T) {
	dns, ok := LookupPreset("dns")
	require.True(t, ok)

	got := Synthesize(Intent{Action: ActionDeny, Preset: dns}, testTriple)

	require.Len(t, got, 2, "dns expands to exactly two directives")
	assert.Equal(t, "add rule ip filter input tcp dport 53 drop", got[0].String())
	assert.Equal(t, "add rule ip filter input udp dport 53 drop", got[1].String())
}

func TestSynthesizeWebPreset(t *testing.T) {
	web, ok := LookupPreset("web")
	require.True(t, ok)

	got := Synthesize(Intent{Action: ActionPermit, Preset: web}, testTriple)

	require.Len(t, got, 2)
	assert.Equal(t, "add rule ip filter input tcp dport 80 accept", got[0].String())
	assert.Equal(t, "add rule ip filter input tcp dport 443 accept", got[1].String())
}

func TestSynthesizeMailPresetOrder(t *testing.T) {
	mail, _ := LookupPreset("mail")

	got := Synthesize(Intent{Action: ActionPermit, Preset: mail}, testTriple)

	require.Len(t, got, 5)
	wantPorts := []string{"25", "110", "143", "993", "995"}
	for i, d := range got {
		assert.Contains(t, d.String(), "tcp dport "+wantPorts[i]+" accept")
	}
}

func TestSynthesizePortlessProtocol(t *testing.T) {
	// Supplied port and address are ignored for portless protocols.
	got := Synthesize(Intent{
		Action:   ActionPermit,
		Protocol: "icmp",
		Port:     PortSpec{Kind: PortSingle, Port: 8080},
	}, testTriple)

	require.Len(t, got, 1)
	assert.Equal(t, "add rule ip filter input icmp accept", got[0].String())
	assert.NotContains(t, got[0].String(), "dport")
}

func TestSynthesizeRange(t *testing.T) {
	got := Synthesize(Intent{
		Action:   ActionPermit,
		Protocol: "tcp",
		Port:     PortSpec{Kind: PortRange, Start: 8080, End: 8090},
	}, testTriple)

	require.Len(t, got, 1)
	// Ranges render colon-joined, not in the input's dash form.
	assert.Equal(t, "add rule ip filter input tcp dport 8080:8090 accept", got[0].String())
}

func TestSynthesizeSingleWithAddress(t *testing.T) {
	addr, err := ParseAddressSpec("192.168.1.0/24")
	require.NoError(t, err)

	got := Synthesize(Intent{
		Action:   ActionDeny,
		Protocol: "tcp",
		Port:     PortSpec{Kind: PortSingle, Port: 22},
		Address:  addr,
	}, testTriple)

	require.Len(t, got, 1)
	assert.Equal(t, "add rule ip filter input ip daddr 192.168.1.0/24 tcp dport 22 drop", got[0].String())
}

func TestSynthesizeAnyAddressOmitted(t *testing.T) {
	got := Synthesize(Intent{
		Action:   ActionPermit,
		Protocol: "udp",
		Port:     PortSpec{Kind: PortSingle, Port: 514},
	}, testTriple)

	require.Len(t, got, 1)
	assert.NotContains(t, got[0].String(), "daddr")
}

func TestSynthesizeDeterministic(t *testing.T) {
	dns, _ := LookupPreset("dns")
	intent := Intent{Action: ActionDeny, Preset: dns}

	first := Synthesize(intent, testTriple)
	second := Synthesize(intent, testTriple)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].String(), second[i].String())
	}
}

func TestSynthesizeCustomTriple(t *testing.T) {
	got := Synthesize(Intent{
		Action:   ActionPermit,
		Protocol: "tcp",
		Port:     PortSpec{Kind: PortSingle, Port: 80},
	}, nft.Triple{Family: "inet", Table: "main", Chain: "incoming"})

	require.Len(t, got, 1)
	assert.Equal(t, "add rule inet main incoming tcp dport 80 accept", got[0].String())
}
