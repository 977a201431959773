// Package model defines the core data structures used throughout sourcedrift.
//
// This package contains the following main types:
//   - TutorialDocument: A scanned corpus document and its extracted references
//   - SourceReference: A raw repository reference as it appears in a document
//   - CanonicalRepo: The alias-resolved identity of a repository
//   - RepoMetadata: Live metadata fetched for a canonical repository
//   - VerificationRecord: The classified outcome for a single reference
//   - Report: The aggregated verification report
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (extract, resolve, fetch, verify, report)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
