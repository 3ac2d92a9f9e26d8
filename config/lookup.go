package config

import (
	"os"
	"strings"
)

// Lookup resolves configuration values by key.
//
// Implementations must be safe for concurrent use.
type Lookup interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)
}

// MapLookup is a static in-memory Lookup.
type MapLookup map[string]string

// Get returns the value for key.
func (m MapLookup) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvLookup resolves keys from environment variables. Dots and dashes in
// the key are replaced with underscores and the result upper-cased, so
// "billing.base_url" reads BILLING_BASE_URL. An optional prefix is
// prepended the same way.
type EnvLookup struct {
	Prefix string
}

// Get returns the environment value for key.
func (e EnvLookup) Get(key string) (string, bool) {
	name := key
	if e.Prefix != "" {
		name = e.Prefix + "_" + name
	}
	name = strings.NewReplacer(".", "_", "-", "_").Replace(name)
	return os.LookupEnv(strings.ToUpper(name))
}

// Chain consults lookups in order and returns the first present value.
type Chain []Lookup

// Get returns the first value found across the chained lookups.
func (c Chain) Get(key string) (string, bool) {
	for _, l := range c {
		if v, ok := l.Get(key); ok {
			return v, true
		}
	}
	return "", false
}
