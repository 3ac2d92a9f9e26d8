// Package config defines the configuration-lookup boundary used by
// endpoint clients to resolve base addresses.
//
// The core contract is the single-method Lookup interface: given a
// string key, return the value and whether it was present. Consumers can
// back it with anything hierarchical; the package ships a map
// implementation for tests and static wiring, an environment-variable
// implementation, and a chain that consults several lookups in order.
//
// Resolve turns a looked-up value into a validated absolute http(s) URL,
// failing with ErrMissingAddress or ErrInvalidAddress so construction-time
// configuration errors are distinguishable from call-time failures.
package config
