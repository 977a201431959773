package fetch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/johnxie/sourcedrift/internal/config"
	"github.com/johnxie/sourcedrift/internal/github"
	"github.com/johnxie/sourcedrift/internal/model"
)

// RepoFetcher retrieves metadata for one repository.
// *github.Client satisfies this; tests substitute a mock to instrument
// call counts and inject failures.
type RepoFetcher interface {
	FetchRepo(ctx context.Context, repo model.CanonicalRepo) (*model.RepoMetadata, error)
}

// Fetcher coalesces and memoizes metadata fetches for a single run.
// It is safe for concurrent use; the memoization cache is write-once per
// key, first fetch wins.
type Fetcher struct {
	client         RepoFetcher
	concurrency    int
	retryAttempts  int
	retryBaseDelay time.Duration
	logger         *slog.Logger

	group singleflight.Group

	mu    sync.Mutex
	cache map[string]*model.RepoMetadata
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithConcurrency sets the maximum number of concurrent fetches.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithRetry sets the retry budget and initial backoff delay for transient
// failures. The delay doubles after each failed attempt.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(f *Fetcher) {
		if attempts >= 0 {
			f.retryAttempts = attempts
		}
		if baseDelay > 0 {
			f.retryBaseDelay = baseDelay
		}
	}
}

// WithLogger sets a custom logger for the fetcher.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher around the given client.
func New(client RepoFetcher, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:         client,
		concurrency:    config.DefaultBatchSize,
		retryAttempts:  config.DefaultRetryAttempts,
		retryBaseDelay: config.DefaultRetryBaseDelay,
		cache:          make(map[string]*model.RepoMetadata),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// FetchAll retrieves metadata for every given repository, fanning out up to
// the configured concurrency.
//
// The returned map always contains one entry per unique input key. When the
// context expires before all fetches complete, the unfinished repositories
// are recorded with FetchStatusError and the context error is returned so
// the caller can mark the run as timed out.
func (f *Fetcher) FetchAll(ctx context.Context, repos []model.CanonicalRepo) (map[string]*model.RepoMetadata, error) {
	f.logger.Info("fetching repository metadata",
		"repositories", len(repos),
		"concurrency", f.concurrency,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			f.Fetch(gctx, repo)
			return nil
		})
	}

	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		// All workers drained their queue, but only because the deadline
		// cut their fetches short. The caller still needs to know.
		err = ctx.Err()
	}

	// Every requested repository lands in the result, even the ones the
	// deadline cut off. Dropping them would make the report lie about the
	// attempted set.
	results := make(map[string]*model.RepoMetadata, len(repos))
	f.mu.Lock()
	for _, repo := range repos {
		key := repo.Key()
		if meta, ok := f.cache[key]; ok {
			results[key] = meta
			continue
		}
		meta := &model.RepoMetadata{
			Repo:    repo,
			Status:  model.FetchStatusError,
			Reason:  "run timeout exceeded before fetch completed",
			HTMLURL: repo.URL(),
		}
		f.cache[key] = meta
		results[key] = meta
	}
	f.mu.Unlock()

	return results, err
}

// Fetch retrieves metadata for one repository, serving repeats from the
// memoization cache and coalescing concurrent requests for the same key.
// It never returns nil: terminal failures become metadata records with a
// non-OK status.
func (f *Fetcher) Fetch(ctx context.Context, repo model.CanonicalRepo) *model.RepoMetadata {
	key := repo.Key()

	f.mu.Lock()
	if meta, ok := f.cache[key]; ok {
		f.mu.Unlock()
		return meta
	}
	f.mu.Unlock()

	v, _, _ := f.group.Do(key, func() (any, error) {
		meta := f.fetchWithRetry(ctx, repo)

		f.mu.Lock()
		// First fetch wins; a concurrent entry can only exist if the
		// caller raced the cache check, and the coalesced result is the
		// same flight anyway.
		if existing, ok := f.cache[key]; ok {
			meta = existing
		} else {
			f.cache[key] = meta
		}
		f.mu.Unlock()

		return meta, nil
	})

	return v.(*model.RepoMetadata)
}

// fetchWithRetry runs the fetch attempt loop for one repository.
//
// Only transient failure classes are retried; not-found is terminal on the
// first answer. The backoff delay doubles after each failed attempt.
func (f *Fetcher) fetchWithRetry(ctx context.Context, repo model.CanonicalRepo) *model.RepoMetadata {
	attempts := f.retryAttempts + 1
	delay := f.retryBaseDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		meta, err := f.client.FetchRepo(ctx, repo)
		if err == nil {
			f.logger.Debug("fetched repository",
				"repo", repo.String(),
				"stars", meta.Stars,
				"attempt", attempt,
			)
			return meta
		}
		lastErr = err

		if !github.Transient(err) {
			return failureRecord(repo, err)
		}

		f.logger.Warn("transient fetch failure",
			"repo", repo.String(),
			"attempt", attempt,
			"error", err,
		)

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return failureRecord(repo, ctx.Err())
			case <-time.After(delay):
				delay *= 2
			}
		}
	}

	return failureRecord(repo, lastErr)
}

// failureRecord converts a terminal fetch error into a metadata record.
func failureRecord(repo model.CanonicalRepo, err error) *model.RepoMetadata {
	status := model.FetchStatusError
	switch {
	case errors.Is(err, github.ErrNotFound):
		status = model.FetchStatusNotFound
	case errors.Is(err, github.ErrRateLimited):
		status = model.FetchStatusRateLimited
	}

	reason := ""
	if err != nil {
		reason = err.Error()
	}

	return &model.RepoMetadata{
		Repo:    repo,
		Status:  status,
		Reason:  reason,
		HTMLURL: repo.URL(),
	}
}
