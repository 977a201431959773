package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/johnxie/sourcedrift/internal/config"
	"github.com/johnxie/sourcedrift/internal/extract"
	"github.com/johnxie/sourcedrift/internal/fetch"
	"github.com/johnxie/sourcedrift/internal/model"
	"github.com/johnxie/sourcedrift/internal/resolve"
	"github.com/johnxie/sourcedrift/internal/verify"
)

// ExtractStep scans the corpus and records every document with its raw
// references.
type ExtractStep struct {
	extractor *extract.Extractor
}

// NewExtractStep creates the extraction step.
func NewExtractStep(extractor *extract.Extractor) *ExtractStep {
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string { return "extract" }

// Do scans the corpus rooted at the run's corpus root.
func (s *ExtractStep) Do(ctx context.Context, run *model.Run) error {
	docs, err := s.extractor.Extract(ctx, run.CorpusRoot)
	if err != nil {
		return err
	}
	run.Documents = docs
	return nil
}

// ResolveStep canonicalizes every distinct raw reference.
type ResolveStep struct {
	resolver *resolve.Resolver
	logger   *slog.Logger
}

// NewResolveStep creates the resolution step.
func NewResolveStep(resolver *resolve.Resolver, logger *slog.Logger) *ResolveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveStep{resolver: resolver, logger: logger}
}

// Name returns the step name.
func (s *ResolveStep) Name() string { return "resolve" }

// Do resolves references document by document. Canonicalization is pure, so
// each distinct raw string is resolved once and the result reused across
// documents. Ambiguous references are excluded from the canonical set and
// recorded per document for the report footnotes; references that fail to
// parse are downgraded to malformed.
func (s *ResolveStep) Do(_ context.Context, run *model.Run) error {
	ambiguousSeen := make(map[string]bool)

	for di := range run.Documents {
		doc := &run.Documents[di]
		for ri := range doc.References {
			ref := &doc.References[ri]
			if ref.Malformed {
				continue
			}
			if _, done := run.Resolutions[ref.Raw]; done {
				continue
			}

			res, err := s.resolver.Resolve(ref.Raw)
			switch {
			case err == nil:
				run.Resolutions[ref.Raw] = res
			case errors.Is(err, resolve.ErrAmbiguousAlias):
				key := ref.Raw + "\x00" + doc.Slug
				if !ambiguousSeen[key] {
					ambiguousSeen[key] = true
					run.Ambiguous = append(run.Ambiguous, model.AmbiguousReference{
						Raw:      ref.Raw,
						Document: doc.Slug,
						Reason:   err.Error(),
					})
				}
				s.logger.Warn("ambiguous reference excluded",
					"document", doc.Slug,
					"raw", ref.Raw,
				)
			case errors.Is(err, resolve.ErrMalformedReference):
				ref.Malformed = true
				s.logger.Warn("unparseable reference downgraded to malformed",
					"document", doc.Slug,
					"raw", ref.Raw,
				)
			default:
				return err
			}
		}
	}

	return nil
}

// FetchStep retrieves metadata for every unique canonical repository under
// a run-level deadline.
type FetchStep struct {
	fetcher    *fetch.Fetcher
	runTimeout time.Duration
	logger     *slog.Logger
}

// NewFetchStep creates the fetch step.
func NewFetchStep(fetcher *fetch.Fetcher, runTimeout time.Duration, logger *slog.Logger) *FetchStep {
	if runTimeout <= 0 {
		runTimeout = config.DefaultRunTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchStep{fetcher: fetcher, runTimeout: runTimeout, logger: logger}
}

// Name returns the step name.
func (s *FetchStep) Name() string { return "fetch" }

// Do fans out fetches for the unique canonical set. The run-level timeout
// applies only here: repositories cut off by the deadline are recorded as
// errors by the fetcher, the run is marked timed out, and the pipeline
// continues so a consistent report is still produced.
func (s *FetchStep) Do(ctx context.Context, run *model.Run) error {
	repos := run.UniqueCanonicalRepos()

	fctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	metadata, err := s.fetcher.FetchAll(fctx, repos)
	run.Metadata = metadata

	if err != nil {
		if ctx.Err() != nil {
			// The parent context was cancelled (e.g. SIGINT): abort.
			return ctx.Err()
		}
		run.TimedOut = true
		s.logger.Warn("run deadline expired before all fetches completed",
			"timeout", s.runTimeout,
			"repositories", len(repos),
		)
	}

	return nil
}

// VerifyStep classifies every resolvable reference against fetched
// metadata.
type VerifyStep struct{}

// NewVerifyStep creates the verification step.
func NewVerifyStep() *VerifyStep { return &VerifyStep{} }

// Name returns the step name.
func (s *VerifyStep) Name() string { return "verify" }

// Do runs the pure classification pass.
func (s *VerifyStep) Do(_ context.Context, run *model.Run) error {
	verify.Run(run)
	return nil
}

// SummarizeStep aggregates the run into the final report.
type SummarizeStep struct {
	topLimit int
}

// NewSummarizeStep creates the summarize step. topLimit caps the
// top-repositories table; non-positive means the model default.
func NewSummarizeStep(topLimit int) *SummarizeStep {
	return &SummarizeStep{topLimit: topLimit}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string { return "summarize" }

// Do builds the report. An accounting inconsistency here fails the whole
// run: a silently wrong report is worse than no report.
func (s *SummarizeStep) Do(_ context.Context, run *model.Run) error {
	report, err := model.NewReport(run, s.topLimit)
	if err != nil {
		return err
	}
	run.Report = report
	return nil
}

// DefaultPipeline wires the standard five-step verification pipeline.
func DefaultPipeline(
	extractor *extract.Extractor,
	resolver *resolve.Resolver,
	fetcher *fetch.Fetcher,
	runTimeout time.Duration,
	topLimit int,
	opts ...Option,
) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewExtractStep(extractor),
		NewResolveStep(resolver, p.logger),
		NewFetchStep(fetcher, runTimeout, p.logger),
		NewVerifyStep(),
		NewSummarizeStep(topLimit),
	)
	return p
}
