// Package validation holds the input validation primitives shared by the
// rule synthesizer and the interactive console. All functions are pure
// validate-to-error; retry-on-failure belongs to the caller.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Port bounds for rule matching.
const (
	MinPort = 1
	MaxPort = 65535
)

var (
	// Valid protocol token: lowercase letters, digits, dash (ipv6-icmp)
	protocolRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

	// Dangerous characters that should never reach an argv element
	dangerousChars = []string{";", "|", "&", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}
)

// ValidatePortNumber validates a port number.
func ValidatePortNumber(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("invalid port number: %d (must be %d-%d)", port, MinPort, MaxPort)
	}
	return nil
}

// ParsePortNumber parses a decimal port token and validates its range.
func ParsePortNumber(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("port %q is not a number", s)
	}
	if err := ValidatePortNumber(n); err != nil {
		return 0, err
	}
	return uint16(n), nil
}

// ValidateProtocol validates a protocol name for use in a rule directive.
func ValidateProtocol(proto string) error {
	if proto == "" {
		return fmt.Errorf("protocol cannot be empty")
	}
	if !protocolRegex.MatchString(proto) {
		return fmt.Errorf("invalid protocol: %s (must be lowercase alphanumeric with -)", proto)
	}
	for _, char := range dangerousChars {
		if strings.Contains(proto, char) {
			return fmt.Errorf("protocol contains dangerous character: %s", char)
		}
	}
	return nil
}

// SanitizeInput strips control characters and surrounding whitespace from
// free-form user input before it is parsed.
func SanitizeInput(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
