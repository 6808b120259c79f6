package netstat

import (
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		input     string
		wantIface string
		wantPort  int
		wantErr   bool
	}{
		// Bare ports
		{"8000", "", 8000, false},
		{":8000", "", 8000, false},
		{":80", "", 80, false},
		{":65535", "", 65535, false},

		// With interface
		{"localhost:5432", "localhost", 5432, false},
		{"0.0.0.0:80", "0.0.0.0", 80, false},
		{"127.0.0.1:8000", "127.0.0.1", 8000, false},

		// Errors
		{"", "", 0, true},
		{":", "", 0, true},
		{":0", "", 0, true},
		{":65536", "", 0, true},
		{":abc", "", 0, true},
		{"localhost:", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := ParseQuery(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseQuery(%q) expected error, got %+v", tt.input, q)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseQuery(%q) unexpected error: %v", tt.input, err)
				return
			}
			if q.Interface != tt.wantIface {
				t.Errorf("ParseQuery(%q).Interface = %q, want %q", tt.input, q.Interface, tt.wantIface)
			}
			if q.Port != tt.wantPort {
				t.Errorf("ParseQuery(%q).Port = %d, want %d", tt.input, q.Port, tt.wantPort)
			}
		})
	}
}

func TestQueryMatches(t *testing.T) {
	q := Query{Port: 8000}

	if !q.Matches(8000) {
		t.Error("expected 8000 to match")
	}
	if q.Matches(8001) {
		t.Error("expected 8001 to NOT match")
	}

	any := Query{}
	if !any.Matches(8000) || !any.Matches(22) {
		t.Error("zero-port query should match every port")
	}
}

func TestQueryMatchesAddr(t *testing.T) {
	q := Query{Interface: "127.0.0.1", Port: 8000}

	if !q.matchesAddr("127.0.0.1") {
		t.Error("expected exact interface match")
	}
	if !q.matchesAddr("0.0.0.0") {
		t.Error("wildcard bind should match any requested interface")
	}
	if !q.matchesAddr("::") {
		t.Error("v6 wildcard bind should match any requested interface")
	}
	if q.matchesAddr("192.168.1.10") {
		t.Error("unrelated interface should not match")
	}
}
