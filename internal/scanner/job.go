package scanner

import (
	"context"
	"errors"
	"fmt"

	"phishgraph/pkg/domain"
	"phishgraph/pkg/features"
	"phishgraph/pkg/lexical"
	"phishgraph/pkg/logger"
	"phishgraph/pkg/registration"

	"go.uber.org/zap"
)

// LinkJob is one discovered link waiting to be classified.
type LinkJob struct {
	// Index is the position of the link's node in the graph, root excluded.
	Index int
	URL   string
}

// classifyLink runs job and always returns a node. Any failure ends up as a
// node labeled Error carrying its cause.
func (s scanner) classifyLink(ctx context.Context, session *features.Session, job LinkJob) domain.Node {
	ctx = logger.WithFields(ctx, zap.String("link", job.URL))

	if err := s.probe(ctx, job.URL); err != nil {
		return s.errorNode(ctx, job, err)
	}

	if _, err := session.Fetch(ctx, job.URL); err != nil {
		return s.errorNode(ctx, job, fmt.Errorf("could not fetch link: %w", err))
	}

	c, err := s.classify(ctx, session, job.URL)
	if err != nil {
		return s.errorNode(ctx, job, err)
	}
	s.metrics.CountLabel(string(c.Label), false)

	return domain.Node{URL: job.URL, Label: c.Label, Features: &c.Vector}
}

// probe rejects links whose host does not exist. Probe failures other than
// NXDOMAIN are left to the fetch.
func (s scanner) probe(ctx context.Context, rawURL string) error {
	if s.prober == nil {
		return nil
	}

	u, err := lexical.Parse(rawURL)
	if err != nil {
		return err
	}

	err = s.prober.Probe(ctx, u.Host)
	if errors.Is(err, registration.ErrNoSuchHost) {
		return err
	}
	if err != nil {
		logger.Debug(ctx, "dns probe failed", zap.Error(err))
	}

	return nil
}

func (s scanner) errorNode(ctx context.Context, job LinkJob, err error) domain.Node {
	logger.Info(ctx, "link classification failed", zap.Error(err))
	s.metrics.CountLabel(string(domain.LabelError), false)

	return domain.Node{URL: job.URL, Label: domain.LabelError, Error: err.Error()}
}
