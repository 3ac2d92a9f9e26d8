package config

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	l := MapLookup{
		"good":     "https://billing.internal/api",
		"blank":    "   ",
		"relative": "/just/a/path",
		"nohost":   "https://",
		"scheme":   "ftp://billing.internal",
		"garbage":  "://nope",
	}

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid absolute", "good", nil},
		{"missing key", "absent", ErrMissingAddress},
		{"blank value", "blank", ErrMissingAddress},
		{"relative URL", "relative", ErrInvalidAddress},
		{"no host", "nohost", ErrInvalidAddress},
		{"bad scheme", "scheme", ErrInvalidAddress},
		{"unparseable", "garbage", ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Resolve(l, tt.key)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Resolve() = %v, want nil", err)
				}
				if u.Host != "billing.internal" {
					t.Errorf("Host = %q", u.Host)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolve_NilLookup(t *testing.T) {
	if _, err := Resolve(nil, "any"); !errors.Is(err, ErrMissingAddress) {
		t.Errorf("Resolve(nil) = %v, want ErrMissingAddress", err)
	}
}
