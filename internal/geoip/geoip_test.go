package geoip

import "testing"

func TestLookupCountry_Disabled(t *testing.T) {
	g, err := NewLookup("")
	if err != nil {
		t.Fatalf("NewLookup: %v", err)
	}
	defer g.Close()

	if g.IsEnabled() {
		t.Error("lookup with no database should be disabled")
	}
	if got := g.LookupCountry("8.8.8.8"); got != "" {
		t.Errorf("LookupCountry = %q, want empty", got)
	}
}

func TestLookupCountry_PrivateAndLoopback(t *testing.T) {
	g, err := NewLookup("")
	if err != nil {
		t.Fatalf("NewLookup: %v", err)
	}
	defer g.Close()

	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", "LOCAL"},
		{"10.1.2.3", "LOCAL"},
		{"192.168.0.10", "LOCAL"},
		{"172.16.0.1", "LOCAL"},
		{"::1", "LOCAL"},
		{"not-an-ip", ""},
	}

	for _, tt := range tests {
		if got := g.LookupCountry(tt.ip); got != tt.want {
			t.Errorf("LookupCountry(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}

func TestNewLookup_MissingDatabase(t *testing.T) {
	g, err := NewLookup("/nonexistent/GeoLite2-Country.mmdb")
	if err == nil {
		t.Fatal("expected error for missing database")
	}
	// Lookup degrades to disabled rather than failing hard
	if g.IsEnabled() {
		t.Error("lookup should be disabled after load failure")
	}
}
