// Package verify classifies source references against fetched repository
// metadata.
//
// Classification is a pure function over already-fetched data: no network
// calls and no retries happen at this layer. A reference is verified when
// the repository exists and the reference names its canonical identity,
// redirected when the repository exists but the reference names a
// pre-rename identity, and unverified when the fetch terminally failed.
package verify
