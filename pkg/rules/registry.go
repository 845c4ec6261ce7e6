package rules

import (
	"sort"
	"sync"

	"github.com/arthur-debert/pylon/pkg/errors"
	"github.com/arthur-debert/pylon/pkg/logging"
	"github.com/rs/zerolog"
)

// Registry stores registered pipeline rules and answers match queries.
// Registration happens before the build's resolution phase; Freeze turns
// the registry into an immutable snapshot that concurrent resolutions
// read without locking each other out.
type Registry struct {
	mu     sync.RWMutex
	frozen bool
	rules  []*Rule
	logger zerolog.Logger
}

// NewRegistry creates an empty rule registry
func NewRegistry() *Registry {
	return &Registry{
		logger: logging.GetLogger("rules.registry"),
	}
}

// Register adds a rule and returns its assigned ID. Registering after
// Freeze is an error: the build's resolution phase relies on the
// registry being a stable snapshot.
func (r *Registry) Register(rule Rule) (RuleID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return 0, errors.Newf(errors.ErrRegistryFrozen,
			"cannot register rule %q: registry is frozen", rule.Name)
	}
	if rule.TargetGlob == nil {
		return 0, errors.Newf(errors.ErrInvalidInput,
			"rule %q has no target glob", rule.Name)
	}

	rule.ID = RuleID(len(r.rules))
	stored := rule
	r.rules = append(r.rules, &stored)

	r.logger.Debug().
		Str("rule", rule.Name).
		Str("glob", rule.TargetGlob.String()).
		Str("baseDir", rule.BaseDir.String()).
		Int("ops", len(rule.Ops)).
		Msg("Registered pipeline rule")

	return stored.ID, nil
}

// Freeze marks the registry read-only. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frozen {
		r.frozen = true
		r.logger.Debug().Int("ruleCount", len(r.rules)).Msg("Registry frozen")
	}
}

// Frozen reports whether the registry has been frozen
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// FindMatches returns every rule whose target glob matches the asset URI,
// sorted by descending specificity. Among rules of equal specificity the
// earliest-registered rule sorts first; this tie-break is deliberate, so
// that registering more rules later never reorders existing resolutions.
func (r *Registry) FindMatches(uri string) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Rule
	for _, rule := range r.rules {
		if rule.Matches(uri) {
			matches = append(matches, rule)
		}
	}

	// Stable sort keeps registration order for equal specificity
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].TargetGlob.Specificity().Compare(matches[j].TargetGlob.Specificity()) > 0
	})

	r.logger.Trace().
		Str("uri", uri).
		Int("matches", len(matches)).
		Msg("Registry match query")

	return matches
}

// AutorunMatches returns every rule whose autorun glob matches the given
// path, in registration order. Used by dev-server watchers to decide
// which pipelines to re-run when a source file changes.
func (r *Registry) AutorunMatches(path string) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Rule
	for _, rule := range r.rules {
		if rule.AutorunGlob().Matches(path) {
			matches = append(matches, rule)
		}
	}
	return matches
}

// Rules returns all registered rules in registration order
func (r *Registry) Rules() []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of registered rules
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}
