// Package resolve maps raw source references to canonical repository
// identities.
//
// Canonicalization is a pure function of the reference string plus a static
// alias table: it is deterministic and idempotent, so resolving a reference
// twice always yields the same canonical key. The alias table covers known
// renames and forks-of-record; unknown references pass through unchanged as
// their own canonical key.
//
// Design decision: The alias table is an explicit immutable mapping built
// once at construction, not a mutable global. Alias chains are flattened at
// build time so lookups stay single-step and idempotence holds even when a
// configured target is itself an alias key.
package resolve
