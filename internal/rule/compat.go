package rule

import "fmt"

// portlessProtocols are protocols whose rules carry no port qualifier.
var portlessProtocols = map[string]bool{
	"icmp":      true,
	"igmp":      true,
	"esp":       true,
	"ah":        true,
	"ip":        true,
	"ipv6-icmp": true,
}

// IsPortless reports whether the protocol takes no port qualifier.
func IsPortless(proto string) bool {
	return portlessProtocols[proto]
}

// CheckProtocolPort validates protocol/port compatibility for an ad-hoc
// (non-preset) intent. Portless protocols must carry no port; every
// other protocol requires exactly one concrete port specification. A
// range counts as one logical rule; a multi-member set does not.
func CheckProtocolPort(proto string, spec PortSpec) error {
	if IsPortless(proto) {
		if spec.Kind != PortNone {
			return fmt.Errorf("protocol %q does not take a port", proto)
		}
		return nil
	}

	switch spec.Kind {
	case PortNone:
		return fmt.Errorf("protocol %q requires a port", proto)
	case PortSet:
		if len(spec.Ports) > 1 {
			return fmt.Errorf("protocol %q requires a single port, got %d", proto, len(spec.Ports))
		}
	}
	return nil
}
