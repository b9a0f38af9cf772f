// Package features assembles the 30-slot feature vector of a URL from the
// lexical analyzer, the registration resolver and the page heuristics.
//
// Extraction never fails. Whatever goes wrong upstream only degrades the
// slots that depended on it to their default value; the reason stays
// available through the returned signals.
package features

import (
	"context"
	"fmt"
	"time"

	"phishgraph/pkg/domain"
	"phishgraph/pkg/fetcher"
	"phishgraph/pkg/heuristics"
	"phishgraph/pkg/lexical"
	"phishgraph/pkg/registration"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "phishgraph/pkg/features"

// Options configures an Extractor.
type Options struct {
	// FetchTimeout bounds the page fetch of a single extraction. A document
	// already fetched in the same session is reused regardless.
	FetchTimeout time.Duration
	// RegistrationTimeout bounds the registration lookup.
	RegistrationTimeout time.Duration
	// Now returns the current time; time.Now when nil.
	Now func() time.Time
}

// Extractor turns URLs into feature signals. It is safe for concurrent use
// and holds no per-request state.
type Extractor struct {
	fetcher  fetcher.Fetcher
	resolver registration.Resolver
	opts     Options
	tracer   trace.Tracer
}

// NewExtractor creates an Extractor on top of f and r.
func NewExtractor(f fetcher.Fetcher, r registration.Resolver, opts Options) *Extractor {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Extractor{fetcher: f, resolver: r, opts: opts, tracer: otel.Tracer(tracerName)}
}

// Extract computes the signals of rawURL without sharing anything with other calls.
func (e *Extractor) Extract(ctx context.Context, rawURL string) domain.Signals {
	return e.extract(ctx, rawURL, e.fetcher, e.resolver, e.opts.FetchTimeout)
}

// Vector is Extract flattened to the numeric vector.
func (e *Extractor) Vector(ctx context.Context, rawURL string) domain.FeatureVector {
	sigs := e.Extract(ctx, rawURL)

	return sigs.Vector()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}

// guard turns a panic of stage into onPanic(cause).
func guard(stage string, onPanic func(error)) {
	if p := recover(); p != nil {
		onPanic(fmt.Errorf("%s panicked: %v", stage, p))
	}
}

func (e *Extractor) extract(
	ctx context.Context,
	rawURL string,
	f fetcher.Fetcher,
	r registration.Resolver,
	fetchTimeout time.Duration,
) (sigs domain.Signals) {
	ctx, span := e.tracer.Start(ctx, "features.Extract", trace.WithAttributes(attribute.String("url", rawURL)))
	defer span.End()

	var (
		lex     domain.Signals
		reg     registration.Result
		content domain.Signals
	)

	var g errgroup.Group
	g.Go(func() error {
		defer guard("lexical analysis", func(err error) {
			lex = domain.Signals{}
			span.RecordError(err)
		})
		lexical.Analyze(rawURL).Fill(&lex)

		return nil
	})
	g.Go(func() error {
		defer guard("registration lookup", func(err error) { reg = registration.Derive(nil, err, e.opts.Now()) })
		reg = e.registration(ctx, rawURL, r)

		return nil
	})
	g.Go(func() error {
		defer guard("page analysis", func(err error) {
			content = domain.Signals{}
			heuristics.Unavailable(err, &content)
		})
		e.content(ctx, rawURL, f, fetchTimeout, &content)

		return nil
	})
	_ = g.Wait()

	sigs = lex
	reg.Fill(&sigs)
	for _, name := range heuristics.Names() {
		sigs.Set(name, content.Get(name))
	}
	for _, name := range domain.Placeholders {
		sigs.Set(name, domain.NotImplemented())
	}

	if diags := sigs.Diagnostics(); len(diags) > len(domain.Placeholders) {
		span.SetStatus(codes.Error, "some features are unavailable")
		span.SetAttributes(attribute.Int("features.unavailable", len(diags)-len(domain.Placeholders)))
	}

	return sigs
}

func (e *Extractor) registration(ctx context.Context, rawURL string, r registration.Resolver) registration.Result {
	ctx, span := e.tracer.Start(ctx, "features.registration")
	defer span.End()

	u, err := lexical.Parse(rawURL)
	if err != nil {
		return registration.Derive(nil, err, e.opts.Now())
	}

	ctx, cancel := withTimeout(ctx, e.opts.RegistrationTimeout)
	defer cancel()

	rec, err := r.Lookup(ctx, u.Host)
	if err != nil {
		span.RecordError(err)
	}

	return registration.Derive(rec, err, e.opts.Now())
}

func (e *Extractor) content(
	ctx context.Context,
	rawURL string,
	f fetcher.Fetcher,
	timeout time.Duration,
	sigs *domain.Signals,
) {
	ctx, span := e.tracer.Start(ctx, "features.content")
	defer span.End()

	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	doc, err := f.Fetch(ctx, rawURL)
	if err != nil {
		span.RecordError(err)
		heuristics.Unavailable(err, sigs)

		return
	}

	heuristics.Analyze(doc, sigs)
}
