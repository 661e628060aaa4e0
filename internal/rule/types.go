// Package rule models validated filtering intents and translates them
// into nft directives. An Intent is what the operator asked for; the
// synthesizer turns it into the exact engine commands, in order.
package rule

import (
	"fmt"
	"net"
	"strings"
)

// Action is the verdict a rule applies to matching traffic.
type Action string

const (
	ActionPermit Action = "accept"
	ActionDeny   Action = "drop"
)

// Valid reports whether the action is one of the known verdicts.
func (a Action) Valid() bool {
	return a == ActionPermit || a == ActionDeny
}

// ParseAction maps user-facing verbs to actions. Both the display
// vocabulary (allow/deny) and the engine verdicts (accept/drop) are
// accepted.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow", "accept":
		return ActionPermit, nil
	case "deny", "drop":
		return ActionDeny, nil
	}
	return "", fmt.Errorf("invalid action %q (want allow or deny)", s)
}

// PortKind discriminates the shapes a port specification can take.
type PortKind int

const (
	PortNone PortKind = iota // no port supplied
	PortSingle
	PortRange
	PortSet
)

// PortSpec is a validated port specification: a single port, an
// inclusive range, or a set of ports. Set specs are only legal for
// preset-driven synthesis.
type PortSpec struct {
	Kind  PortKind
	Port  uint16   // PortSingle
	Start uint16   // PortRange
	End   uint16   // PortRange, Start <= End
	Ports []uint16 // PortSet
}

// String renders the spec in the input syntax (dash-joined range).
func (p PortSpec) String() string {
	switch p.Kind {
	case PortSingle:
		return fmt.Sprintf("%d", p.Port)
	case PortRange:
		return fmt.Sprintf("%d-%d", p.Start, p.End)
	case PortSet:
		parts := make([]string, len(p.Ports))
		for i, port := range p.Ports {
			parts[i] = fmt.Sprintf("%d", port)
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// AddrKind discriminates the shapes an address specification can take.
type AddrKind int

const (
	AddrAny AddrKind = iota // all addresses, the default
	AddrSingle
	AddrRange
	AddrCIDR
)

// AnyAddress is how the all-addresses default is encoded in directives.
const AnyAddress = "0.0.0.0/0"

// AddressSpec is a validated destination address specification.
type AddressSpec struct {
	Kind AddrKind
	IP   net.IP     // AddrSingle
	Lo   net.IP     // AddrRange
	Hi   net.IP     // AddrRange, Lo <= Hi
	Net  *net.IPNet // AddrCIDR
}

// IsAny reports whether the spec matches all addresses.
func (a AddressSpec) IsAny() bool {
	return a.Kind == AddrAny
}

// String renders the spec in nft daddr syntax.
func (a AddressSpec) String() string {
	switch a.Kind {
	case AddrSingle:
		return a.IP.String()
	case AddrRange:
		return a.Lo.String() + "-" + a.Hi.String()
	case AddrCIDR:
		return a.Net.String()
	default:
		return AnyAddress
	}
}

// Intent is a validated description of a desired filtering rule before
// translation to engine syntax. Exactly one of Preset or
// (Protocol, Port) is populated.
type Intent struct {
	Action   Action
	Protocol string
	Port     PortSpec
	Address  AddressSpec
	Preset   *Preset
}
