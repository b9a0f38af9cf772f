package main

import (
	"errors"
	"fmt"

	"phishgraph/internal/config"
	"phishgraph/internal/scanner"
	"phishgraph/internal/worker"
	"phishgraph/pkg/classifier"
	"phishgraph/pkg/classifier/forest"
	"phishgraph/pkg/classifier/httpmodel"
	"phishgraph/pkg/features"
	"phishgraph/pkg/fetcher"
	"phishgraph/pkg/metrics"
	"phishgraph/pkg/registration"
)

// newClassifier loads the model once for the whole process. A local model
// file wins over a remote model service.
func newClassifier(cfg *config.Config) (classifier.Classifier, error) {
	switch {
	case cfg.Classifier.ModelPath != "":
		m, err := forest.LoadFile(cfg.Classifier.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("could not load model: %w", err)
		}

		return m, nil
	case cfg.Classifier.URL != "":
		c, err := httpmodel.New(httpmodel.Options{
			BaseURL: cfg.Classifier.URL,
			Timeout: cfg.Classifier.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create model client: %w", err)
		}

		return c, nil
	default:
		return nil, errors.New("no classifier configured, set classifier.modelPath or classifier.url")
	}
}

// newScanner wires the feature pipeline. m may be nil.
func newScanner(cfg *config.Config, m *metrics.Collectors) (scanner.Scanner, error) {
	model, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.Options{
		UserAgent:    cfg.Fetcher.UserAgent,
		MaxRedirects: cfg.Fetcher.MaxRedirects,
		MaxBodyBytes: cfg.Fetcher.MaxBodyBytes,
		Metrics:      m,
	})
	resolver := registration.NewWhoisResolver(registration.WhoisOptions{
		Timeout: cfg.Registration.Timeout,
		Metrics: m,
	})
	prober := registration.NewDNSProbe(registration.DNSProbeOptions{
		Server:  cfg.Registration.Nameserver,
		Timeout: cfg.Registration.Timeout,
	})

	extractor := features.NewExtractor(f, resolver, features.Options{
		FetchTimeout:        cfg.Fetcher.LinkTimeout,
		RegistrationTimeout: cfg.Registration.Timeout,
	})
	pool := worker.New(worker.Options{
		MaxInFlight:   cfg.Graph.MaxInFlight,
		JobTimeout:    cfg.Fetcher.LinkTimeout,
		RatePerSecond: cfg.Graph.RatePerSecond,
		Burst:         cfg.Graph.MaxInFlight,
		Metrics:       m,
	})

	return scanner.New(scanner.Deps{
		Extractor:  extractor,
		Classifier: model,
		Prober:     prober,
		Pool:       pool,
		Metrics:    m,
	}, scanner.NewOptions(cfg)), nil
}
