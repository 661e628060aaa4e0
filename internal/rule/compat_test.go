package rule

import "testing"

func TestCheckProtocolPort(t *testing.T) {
	tests := []struct {
		name    string
		proto   string
		spec    PortSpec
		wantErr bool
	}{
		// Happy paths
		{"tcp single", "tcp", PortSpec{Kind: PortSingle, Port: 80}, false},
		{"udp range", "udp", PortSpec{Kind: PortRange, Start: 8080, End: 8090}, false},
		{"sctp single", "sctp", PortSpec{Kind: PortSingle, Port: 9999}, false},
		{"singleton set", "tcp", PortSpec{Kind: PortSet, Ports: []uint16{80}}, false},
		{"icmp no port", "icmp", PortSpec{}, false},
		{"esp no port", "esp", PortSpec{}, false},

		// Sad paths
		{"icmp with port", "icmp", PortSpec{Kind: PortSingle, Port: 80}, true},
		{"ipv6-icmp with port", "ipv6-icmp", PortSpec{Kind: PortSingle, Port: 443}, true},
		{"tcp without port", "tcp", PortSpec{}, true},
		{"tcp multi set", "tcp", PortSpec{Kind: PortSet, Ports: []uint16{80, 443}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckProtocolPort(tt.proto, tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckProtocolPort(%q, %+v) error = %v, wantErr %v",
					tt.proto, tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestIsPortless(t *testing.T) {
	for _, proto := range []string{"icmp", "igmp", "esp", "ah", "ip", "ipv6-icmp"} {
		if !IsPortless(proto) {
			t.Errorf("IsPortless(%q) = false, want true", proto)
		}
	}
	for _, proto := range []string{"tcp", "udp", "sctp", "dccp"} {
		if IsPortless(proto) {
			t.Errorf("IsPortless(%q) = true, want false", proto)
		}
	}
}
