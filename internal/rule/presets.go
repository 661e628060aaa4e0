package rule

import (
	"sort"
	"strings"
)

// Protocol is a bitmask of transport protocols a preset covers.
type Protocol uint8

const (
	ProtoTCP Protocol = 1 << iota // TCP protocol
	ProtoUDP                      // UDP protocol
)

// ProtoTCPUDP covers services that listen on both transports (e.g. DNS).
const ProtoTCPUDP = ProtoTCP | ProtoUDP

// String returns a human-readable protocol name.
func (p Protocol) String() string {
	var parts []string
	if p&ProtoTCP != 0 {
		parts = append(parts, "tcp")
	}
	if p&ProtoUDP != 0 {
		parts = append(parts, "udp")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// names returns the directive qualifier tokens, tcp before udp. The
// DNS scenario relies on this ordering for deterministic output.
func (p Protocol) names() []string {
	var names []string
	if p&ProtoTCP != 0 {
		names = append(names, "tcp")
	}
	if p&ProtoUDP != 0 {
		names = append(names, "udp")
	}
	return names
}

// Preset is a named bundle of protocol and ports representing a common
// service profile.
type Preset struct {
	Name        string
	Description string
	Protocol    Protocol
	Ports       []uint16
}

// Presets is the registry of built-in service presets. It is populated
// at process start and never mutated.
var Presets = map[string]*Preset{
	"web": {
		Name:        "web",
		Description: "HTTP/HTTPS web service",
		Protocol:    ProtoTCP,
		Ports:       []uint16{80, 443},
	},
	"ssh": {
		Name:        "ssh",
		Description: "Secure Shell",
		Protocol:    ProtoTCP,
		Ports:       []uint16{22},
	},
	"mail": {
		Name:        "mail",
		Description: "SMTP/POP3/IMAP mail service",
		Protocol:    ProtoTCP,
		Ports:       []uint16{25, 110, 143, 993, 995},
	},
	"database": {
		Name:        "database",
		Description: "MySQL/PostgreSQL/MongoDB",
		Protocol:    ProtoTCP,
		Ports:       []uint16{3306, 5432, 27017},
	},
	"ftp": {
		Name:        "ftp",
		Description: "File Transfer Protocol",
		Protocol:    ProtoTCP,
		Ports:       []uint16{21},
	},
	"dns": {
		Name:        "dns",
		Description: "Domain Name System",
		Protocol:    ProtoTCPUDP,
		Ports:       []uint16{53},
	},
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (*Preset, bool) {
	p, ok := Presets[strings.ToLower(name)]
	return p, ok
}

// PresetNames returns the registry keys in sorted order for display.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
