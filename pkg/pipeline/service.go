package pipeline

import (
	"context"

	"github.com/arthur-debert/pylon/pkg/errors"
	"github.com/arthur-debert/pylon/pkg/executor"
	"github.com/arthur-debert/pylon/pkg/logging"
	"github.com/arthur-debert/pylon/pkg/paths"
	"github.com/arthur-debert/pylon/pkg/rules"
	"github.com/rs/zerolog"
)

// ProducedAsset records one successfully materialized asset
type ProducedAsset struct {
	// Path is the absolute output location of the asset
	Path string

	// Rule is the name of the rule that produced it
	Rule string

	// RuleID identifies the rule within the registry
	RuleID rules.RuleID
}

// Service resolves and executes asset pipelines. It holds shared,
// read-only collaborators and is safe for concurrent use once the
// registry is frozen.
type Service struct {
	registry *rules.Registry
	resolver *paths.Resolver
	executor *executor.Executor
	logger   zerolog.Logger
}

// NewService composes the engine from its collaborators
func NewService(registry *rules.Registry, resolver *paths.Resolver, exec *executor.Executor) *Service {
	return &Service{
		registry: registry,
		resolver: resolver,
		executor: exec,
		logger:   logging.GetLogger("pipeline.service"),
	}
}

// Registry returns the rule registry the service queries
func (s *Service) Registry() *rules.Registry {
	return s.registry
}

// ResolveAndRun finds the most specific matching rule for the requested
// URI, resolves its paths against the referencing document, and executes
// its operations. An asset with no matching rule is a hard failure for
// that asset, not a warning.
func (s *Service) ResolveAndRun(ctx context.Context, uri string, doc *paths.DocumentRef) (*ProducedAsset, error) {
	matches := s.registry.FindMatches(uri)
	if len(matches) == 0 {
		err := errors.Newf(errors.ErrNoMatchingRule,
			"no pipeline rule matches asset %q", uri).
			WithDetail("uri", uri)
		if doc != nil {
			err = err.WithDetail("document", doc.Path)
		}
		return nil, err
	}

	rule := matches[0]
	s.logger.Debug().
		Str("uri", uri).
		Str("rule", rule.Name).
		Int("candidates", len(matches)).
		Msg("Selected pipeline rule")

	rctx, err := s.resolver.Resolve(rule, uri, doc)
	if err != nil {
		return nil, wrapStage(err, uri, rule.Name)
	}

	if err := s.executor.Run(ctx, rctx, rule); err != nil {
		return nil, wrapStage(err, uri, rule.Name)
	}

	return &ProducedAsset{
		Path:   rctx.TargetPath,
		Rule:   rule.Name,
		RuleID: rule.ID,
	}, nil
}

// wrapStage adds request context while keeping the inner error code, so
// callers can still test for the original failure category
func wrapStage(err error, uri, rule string) error {
	return errors.Wrapf(err, errors.GetErrorCode(err),
		"failed to produce asset %q via rule %q", uri, rule).
		WithDetail("uri", uri).
		WithDetail("rule", rule)
}
