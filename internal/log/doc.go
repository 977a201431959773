// Package log provides logging helpers for sourcedrift.
//
// The only component here is RedactHandler, a slog.Handler wrapper that
// masks credential-bearing attributes before they reach the underlying
// handler. Verification runs are frequently executed in CI with a
// GITHUB_TOKEN in the environment, and a debug-level dump of request
// headers must never leak it into build logs.
package log
