// Package config provides configuration handling for sourcedrift.
//
// Configuration comes from two places:
//   - CLI flags, collected into the Config struct and validated once before
//     a run starts
//   - an optional YAML config file (.sourcedrift) holding the alias table,
//     the ignore list, and the tracked repositories for market signals
//
// Design decision: The alias table is loaded once at startup into an
// immutable map and passed by value to the resolver. We deliberately avoid
// a mutable global table because canonicalization must stay a pure function
// of the reference string plus static configuration.
package config
