package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Sentinel errors for address resolution.
var (
	// ErrMissingAddress means the lookup key was absent or its value blank.
	ErrMissingAddress = errors.New("config: base address not configured")

	// ErrInvalidAddress means the configured value is not a usable
	// absolute http(s) URL.
	ErrInvalidAddress = errors.New("config: base address is not a valid absolute URL")
)

// Resolve looks up key and validates the value as an absolute http or
// https base address. It is called once per endpoint client at
// construction; failures here are configuration errors and are never
// retried.
func Resolve(l Lookup, key string) (*url.URL, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: no lookup supplied for key %q", ErrMissingAddress, key)
	}

	raw, ok := l.Get(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: key %q", ErrMissingAddress, key)
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: key %q: %v", ErrInvalidAddress, key, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: key %q: %q is not absolute", ErrInvalidAddress, key, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: key %q: unsupported scheme %q", ErrInvalidAddress, key, u.Scheme)
	}
	return u, nil
}
