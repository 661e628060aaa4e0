package rule

import (
	"fmt"

	"grimm.is/nftadm/internal/nft"
)

// Synthesize translates a validated intent into the ordered directive
// sequence that realizes it. It is pure: no execution, no I/O. Callers
// must not reorder the result; preset expansion (notably DNS) relies on
// the emitted order.
func Synthesize(intent Intent, triple nft.Triple) []nft.Directive {
	if intent.Preset != nil {
		return synthesizePreset(intent.Preset, intent.Action, triple)
	}

	// Portless protocols get the protocol name as the sole qualifier;
	// any supplied port or address is ignored.
	if IsPortless(intent.Protocol) {
		return []nft.Directive{
			nft.AddRule(triple, intent.Protocol, string(intent.Action)),
		}
	}

	var tokens []string
	if !intent.Address.IsAny() {
		tokens = append(tokens, "ip", "daddr", intent.Address.String())
	}

	switch intent.Port.Kind {
	case PortRange:
		// The engine wants colon-joined ranges, not the input's dash form.
		tokens = append(tokens, intent.Protocol, "dport",
			fmt.Sprintf("%d:%d", intent.Port.Start, intent.Port.End))
	case PortSet:
		// Compatibility checking rejects multi-member sets for ad-hoc
		// intents; a singleton set behaves like a single port.
		tokens = append(tokens, intent.Protocol, "dport",
			fmt.Sprintf("%d", intent.Port.Ports[0]))
	default:
		tokens = append(tokens, intent.Protocol, "dport",
			fmt.Sprintf("%d", intent.Port.Port))
	}

	tokens = append(tokens, string(intent.Action))
	return []nft.Directive{nft.AddRule(triple, tokens...)}
}

func synthesizePreset(p *Preset, action Action, triple nft.Triple) []nft.Directive {
	var out []nft.Directive
	for _, proto := range p.Protocol.names() {
		for _, port := range p.Ports {
			out = append(out, nft.AddRule(triple,
				proto, "dport", fmt.Sprintf("%d", port), string(action)))
		}
	}
	return out
}
