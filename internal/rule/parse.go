package rule

import (
	"bytes"
	"fmt"
	"net"
	"strings"

	"grimm.is/nftadm/internal/validation"
)

// ParsePortSpec parses a raw port entry: a bare port ("443"), a range
// ("8080-8090"), or a comma-separated set ("80,443"). The error names
// the offending token so interactive callers can re-prompt precisely.
func ParsePortSpec(raw string) (PortSpec, error) {
	raw = validation.SanitizeInput(raw)
	if raw == "" {
		return PortSpec{}, fmt.Errorf("port specification cannot be empty")
	}

	switch {
	case strings.Contains(raw, ","):
		tokens := strings.Split(raw, ",")
		ports := make([]uint16, 0, len(tokens))
		for _, tok := range tokens {
			p, err := validation.ParsePortNumber(tok)
			if err != nil {
				return PortSpec{}, fmt.Errorf("port %q: %w", strings.TrimSpace(tok), err)
			}
			ports = append(ports, p)
		}
		return PortSpec{Kind: PortSet, Ports: ports}, nil

	case strings.Contains(raw, "-"):
		parts := strings.Split(raw, "-")
		if len(parts) != 2 {
			return PortSpec{}, fmt.Errorf("invalid port range %q (expected start-end)", raw)
		}
		start, err := validation.ParsePortNumber(parts[0])
		if err != nil {
			return PortSpec{}, fmt.Errorf("range start: %w", err)
		}
		end, err := validation.ParsePortNumber(parts[1])
		if err != nil {
			return PortSpec{}, fmt.Errorf("range end: %w", err)
		}
		if start > end {
			return PortSpec{}, fmt.Errorf("invalid port range %q: start must not exceed end", raw)
		}
		return PortSpec{Kind: PortRange, Start: start, End: end}, nil

	default:
		p, err := validation.ParsePortNumber(raw)
		if err != nil {
			return PortSpec{}, err
		}
		return PortSpec{Kind: PortSingle, Port: p}, nil
	}
}

// ParseAddressSpec parses a raw destination address entry: empty input
// means all addresses, "lo-hi" an inclusive range, anything with "/" a
// CIDR network, otherwise a single address.
func ParseAddressSpec(raw string) (AddressSpec, error) {
	raw = validation.SanitizeInput(raw)
	if raw == "" {
		return AddressSpec{Kind: AddrAny}, nil
	}

	if strings.Contains(raw, "-") {
		parts := strings.Split(raw, "-")
		if len(parts) != 2 {
			return AddressSpec{}, fmt.Errorf("invalid address range %q (expected start-end)", raw)
		}
		lo := net.ParseIP(strings.TrimSpace(parts[0]))
		if lo == nil {
			return AddressSpec{}, fmt.Errorf("invalid range start address: %q", strings.TrimSpace(parts[0]))
		}
		hi := net.ParseIP(strings.TrimSpace(parts[1]))
		if hi == nil {
			return AddressSpec{}, fmt.Errorf("invalid range end address: %q", strings.TrimSpace(parts[1]))
		}
		if bytes.Compare(lo.To16(), hi.To16()) > 0 {
			return AddressSpec{}, fmt.Errorf("address range %q: start must not exceed end", raw)
		}
		return AddressSpec{Kind: AddrRange, Lo: lo, Hi: hi}, nil
	}

	if strings.Contains(raw, "/") {
		_, ipNet, err := net.ParseCIDR(raw)
		if err != nil {
			return AddressSpec{}, fmt.Errorf("invalid CIDR %q: %w", raw, err)
		}
		return AddressSpec{Kind: AddrCIDR, Net: ipNet}, nil
	}

	ip := net.ParseIP(raw)
	if ip == nil {
		return AddressSpec{}, fmt.Errorf("invalid address: %q", raw)
	}
	return AddressSpec{Kind: AddrSingle, IP: ip}, nil
}
