package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"phishgraph/internal/config"
	"phishgraph/internal/worker"
	"phishgraph/pkg/classifier"
	"phishgraph/pkg/domain"
	"phishgraph/pkg/features"
	"phishgraph/pkg/fetcher"
	"phishgraph/pkg/heuristics"
	"phishgraph/pkg/lexical"
	"phishgraph/pkg/logger"
	"phishgraph/pkg/metrics"
	"phishgraph/pkg/registration"
	"phishgraph/pkg/serrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configure how root URLs are fetched and how large graphs may grow.
// These settings are typically derived from application configuration.
type Options struct {
	// RootTimeout bounds the fetch of the URL a request was made for, by
	// Classify, Graph and Features alike.
	RootTimeout time.Duration
	// MaxLinks caps the number of links classified per graph. Zero means no cap.
	MaxLinks int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		RootTimeout: cfg.Fetcher.RootTimeout,
		MaxLinks:    cfg.Graph.MaxLinks,
	}
}

// Deps are the collaborators of a Scanner. Prober and Metrics may be nil.
type Deps struct {
	Extractor  *features.Extractor
	Classifier classifier.Classifier
	Prober     registration.Prober
	Pool       *worker.Pool
	Metrics    *metrics.Collectors
}

// scanner is the concrete implementation of the Scanner interface.
type scanner struct {
	options    Options
	extractor  *features.Extractor
	classifier classifier.Classifier
	prober     registration.Prober
	pool       *worker.Pool
	metrics    *metrics.Collectors
}

var _ Scanner = scanner{}

// New creates a Scanner. The pool is shared by every graph build of the scanner.
func New(deps Deps, options Options) Scanner {
	return scanner{
		options:    options,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		prober:     deps.Prober,
		pool:       deps.Pool,
		metrics:    deps.Metrics,
	}
}

// validateURL accepts absolute http(s) URLs only.
func validateURL(rawURL string) (string, error) {
	u, err := lexical.Parse(rawURL)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid URL")
	}
	if !u.IsWeb() {
		return "", serrors.With(serrors.ErrBadRequest, "URL must be an absolute http or https URL")
	}

	return rawURL, nil
}

func (s scanner) Features(ctx context.Context, rawURL string) (domain.Signals, error) {
	rawURL, err := validateURL(rawURL)
	if err != nil {
		return domain.Signals{}, err
	}

	return s.extractor.NewSession().ExtractWithin(ctx, rawURL, s.options.RootTimeout), nil
}

func (s scanner) Classify(ctx context.Context, rawURL string) (*domain.Classification, error) {
	rawURL, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	c, _, err := s.classifyRoot(ctx, s.extractor.NewSession(), rawURL)
	if err != nil {
		return nil, err
	}
	s.metrics.CountLabel(string(c.Label), true)

	return c, nil
}

// Graph classifies the root URL and then every distinct link of its page
// through the worker pool. Only failures of the root are returned; a link
// that fails becomes a node labeled Error.
func (s scanner) Graph(ctx context.Context, rawURL string) (*domain.LinkGraph, error) {
	rawURL, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	id := domain.GraphID(uuid.New())
	ctx = logger.WithFields(ctx, zap.Stringer("graphID", id), zap.String("root", rawURL))
	session := s.extractor.NewSession()

	root, doc, err := s.classifyRoot(ctx, session, rawURL)
	if err != nil {
		logger.Warn(ctx, "could not classify root URL", zap.Error(err))

		return nil, err
	}
	s.metrics.CountLabel(string(root.Label), true)

	links := s.discover(ctx, rawURL, doc)
	jobs := make([]LinkJob, len(links))
	for i, link := range links {
		jobs[i] = LinkJob{Index: i, URL: link}
	}

	nodes := make([]domain.Node, len(links))
	worker.Run(ctx, s.pool, jobs,
		func(jobCtx context.Context, job LinkJob) {
			nodes[job.Index] = s.classifyLink(jobCtx, session, job)
		},
		func(job LinkJob, err error) {
			nodes[job.Index] = s.errorNode(ctx, job, fmt.Errorf("link was not classified: %w", err))
		},
	)

	graph := &domain.LinkGraph{
		ID:    id,
		Root:  rawURL,
		Nodes: make([]domain.Node, 0, len(nodes)+1),
		Edges: make([]domain.Edge, 0, len(nodes)),
	}
	graph.Nodes = append(graph.Nodes, domain.Node{URL: rawURL, Label: root.Label, Root: true, Features: &root.Vector})
	for _, n := range nodes {
		graph.Nodes = append(graph.Nodes, n)
		graph.Edges = append(graph.Edges, domain.Edge{From: rawURL, To: n.URL})
	}

	counts := graph.Counts()
	logger.Info(ctx, "link graph built",
		zap.Int("links", len(nodes)),
		zap.Int("legitimate", counts[domain.LabelLegitimate]),
		zap.Int("phishing", counts[domain.LabelPhishing]),
		zap.Int("errors", counts[domain.LabelError]))

	return graph, nil
}

// classifyRoot fetches rawURL within the root timeout before classifying it.
// The fetched document stays in the session, so extraction reuses it.
func (s scanner) classifyRoot(
	ctx context.Context,
	session *features.Session,
	rawURL string,
) (*domain.Classification, *fetcher.Document, error) {
	fetchCtx, cancel := s.rootContext(ctx)
	doc, err := session.Fetch(fetchCtx, rawURL)
	cancel()
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch root URL: %w", err)
	}

	c, err := s.classify(ctx, session, rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("could not classify root URL: %w", err)
	}

	return c, doc, nil
}

func (s scanner) rootContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.RootTimeout > 0 {
		return context.WithTimeout(ctx, s.options.RootTimeout)
	}

	return context.WithCancel(ctx)
}

func (s scanner) classify(ctx context.Context, session *features.Session, rawURL string) (*domain.Classification, error) {
	sigs := session.Extract(ctx, rawURL)
	vector := sigs.Vector()

	label, err := s.classifier.Predict(ctx, vector)
	if err != nil {
		return nil, fmt.Errorf("could not predict label: %w", err)
	}

	return &domain.Classification{URL: rawURL, Label: label, Vector: vector, Signals: sigs}, nil
}

// discover returns the normalized links of the root page in lexical order,
// without the root itself and at most MaxLinks of them.
func (s scanner) discover(ctx context.Context, rawURL string, doc *fetcher.Document) []string {
	self, err := NormalizeURL(rawURL)
	if err != nil {
		self = rawURL
	}

	seen := make(map[string]struct{})
	for _, link := range heuristics.Links(doc) {
		normalized, err := NormalizeURL(link)
		if err != nil {
			continue
		}
		if normalized == self {
			continue
		}
		seen[normalized] = struct{}{}
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	if s.options.MaxLinks > 0 && len(links) > s.options.MaxLinks {
		logger.Info(ctx, "too many links, keeping the first ones",
			zap.Int("found", len(links)), zap.Int("kept", s.options.MaxLinks))
		links = links[:s.options.MaxLinks]
	}

	return links
}
