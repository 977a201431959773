// Package fetch schedules metadata retrieval for unique canonical
// repositories.
//
// The fetcher guarantees that each canonical repository is fetched at most
// once per run, no matter how many references alias to it and no matter how
// concurrently it is requested:
//   - a write-once memoization cache keyed by canonical triple serves
//     repeated requests
//   - concurrent first requests for the same key are coalesced through
//     golang.org/x/sync/singleflight, so the second caller awaits the
//     in-flight result instead of issuing a duplicate external call
//
// Fan-out across distinct repositories is bounded with errgroup.SetLimit.
// Transient failures (rate limiting, network errors) are retried with
// bounded exponential backoff; a not-found answer is terminal. A fetch that
// exhausts its retries, or is cut off by the run deadline, is recorded as a
// failed metadata record rather than dropped, so report totals stay
// internally consistent.
package fetch
