package resolve

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/johnxie/sourcedrift/internal/model"
)

// defaultAliases holds renames and forks-of-record observed in the tutorial
// corpus. The config file can extend this table; conflicting entries are
// detected at construction and reported as ambiguous.
var defaultAliases = map[string]string{
	"comfyanonymous/ComfyUI": "Comfy-Org/ComfyUI",
	"mendableai/firecrawl":   "firecrawl/firecrawl",
	"lobehub/lobe-chat":      "lobehub/lobehub",
}

// maxAliasDepth bounds alias chain flattening. Legitimate rename chains are
// one or two hops; anything deeper is a configuration mistake.
const maxAliasDepth = 8

// Resolver maps raw references to canonical repositories.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	logger *slog.Logger

	// aliases maps normalized owner/name keys to canonical identities.
	// Targets are fully flattened: no target is itself an alias key.
	aliases map[string]model.CanonicalRepo

	// ambiguous maps normalized keys that matched conflicting alias
	// entries to a description of the conflict.
	ambiguous map[string]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets a custom logger for the resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver from the built-in alias table merged with extra
// entries from configuration.
//
// A key present in both tables with different canonical targets is
// ambiguous: it stays in the table but resolving it fails with
// ErrAmbiguousAlias so the conflict surfaces in the report instead of
// silently picking a side. An alias cycle is a hard construction error.
func New(extra map[string]string, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		aliases:   make(map[string]model.CanonicalRepo),
		ambiguous: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	merged := make(map[string]string, len(defaultAliases)+len(extra))
	for raw, canonical := range defaultAliases {
		merged[normalizeKey(raw)] = canonical
	}
	for raw, canonical := range extra {
		key := normalizeKey(raw)
		if existing, ok := merged[key]; ok && !strings.EqualFold(existing, canonical) {
			r.ambiguous[key] = fmt.Sprintf("maps to both %s and %s", existing, canonical)
			r.logger.Warn("conflicting alias entries",
				"reference", raw,
				"targets", []string{existing, canonical},
			)
			continue
		}
		merged[key] = canonical
	}

	for key, target := range merged {
		if _, ok := r.ambiguous[key]; ok {
			continue
		}
		flattened, err := flatten(merged, target)
		if err != nil {
			return nil, fmt.Errorf("alias %q: %w", key, err)
		}
		owner, name, ok := strings.Cut(flattened, "/")
		if !ok || owner == "" || name == "" {
			return nil, fmt.Errorf("%w: alias target %q is not owner/name", ErrMalformedReference, flattened)
		}
		r.aliases[key] = model.CanonicalRepo{
			Host:  model.DefaultHost,
			Owner: owner,
			Name:  name,
		}
	}

	return r, nil
}

// flatten follows alias chains to their terminal target.
func flatten(table map[string]string, target string) (string, error) {
	for i := 0; i < maxAliasDepth; i++ {
		next, ok := table[normalizeKey(target)]
		if !ok || strings.EqualFold(next, target) {
			return target, nil
		}
		target = next
	}
	return "", ErrAliasCycle
}

// Resolve maps a raw reference to its named and canonical identities.
//
// The raw form may be a full repository URL or an owner/repo shorthand
// token. Trailing slashes and a .git suffix are stripped before keying, and
// all comparisons are case-insensitive. Unknown references pass through
// unchanged as their own canonical key.
func (r *Resolver) Resolve(raw string) (model.Resolved, error) {
	named, err := parseReference(raw)
	if err != nil {
		return model.Resolved{}, err
	}

	key := normalizeKey(named.String())
	if named.Host != model.DefaultHost {
		// The alias table only covers the default host; foreign hosts
		// pass through as their own canonical identity.
		return model.Resolved{Named: named, Canonical: named}, nil
	}

	if reason, ok := r.ambiguous[key]; ok {
		return model.Resolved{}, fmt.Errorf("%w: %s %s", ErrAmbiguousAlias, raw, reason)
	}

	if canonical, ok := r.aliases[key]; ok {
		return model.Resolved{Named: named, Canonical: canonical}, nil
	}

	return model.Resolved{Named: named, Canonical: named}, nil
}

// parseReference parses a raw reference into a repository identity.
func parseReference(raw string) (model.CanonicalRepo, error) {
	rest := strings.TrimSpace(raw)
	host := model.DefaultHost

	if scheme := strings.Index(rest, "://"); scheme >= 0 {
		rest = rest[scheme+3:]
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return model.CanonicalRepo{}, fmt.Errorf("%w: %q has no repository path", ErrMalformedReference, raw)
		}
		host = strings.ToLower(rest[:slash])
		rest = rest[slash+1:]
	}

	// Drop query and fragment suffixes a pasted link may carry.
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.Trim(rest, "/")

	parts := strings.Split(rest, "/")
	if len(parts) < 2 {
		return model.CanonicalRepo{}, fmt.Errorf("%w: %q has no owner/name pair", ErrMalformedReference, raw)
	}

	owner := parts[0]
	name := strings.TrimSuffix(parts[1], ".git")
	if owner == "" || name == "" {
		return model.CanonicalRepo{}, fmt.Errorf("%w: %q has an empty owner or name", ErrMalformedReference, raw)
	}

	return model.CanonicalRepo{Host: host, Owner: owner, Name: name}, nil
}

// normalizeKey lowercases an owner/name identity for table lookup.
func normalizeKey(ownerName string) string {
	return strings.ToLower(strings.TrimSuffix(strings.Trim(ownerName, "/"), ".git"))
}
