// Package extract scans a documentation corpus for source repository
// references.
//
// The extractor treats corpus documents as opaque text: it locates reference
// tokens and URLs without parsing markdown semantics, beyond skipping fenced
// code blocks and tracking section headings. Two reference forms are
// recognized:
//   - full URLs (https://github.com/owner/repo[/...]) anywhere in a document
//   - bare owner/repo shorthand, but only inside a "Source References"
//     section, to avoid false positives from prose mentions
//
// Documents with zero references are recorded rather than dropped, and
// malformed repository URLs are recorded with a Malformed flag rather than
// silently discarded, so the report can surface both.
package extract
