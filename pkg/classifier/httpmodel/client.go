// Package httpmodel provides a classifier.Classifier backed by a model
// served over HTTP.
//
// The service receives
//
//	POST {baseURL}/predict
//	{"columns": ["UsingIP", ...], "features": [1, 0, ...]}
//
// and answers {"class": 1} with the class convention of the training data
// (1 legitimate, 0 or -1 phishing).
package httpmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"phishgraph/pkg/domain"
	"phishgraph/pkg/serrors"
)

// Options configures Client.
type Options struct {
	// BaseURL is the root of the model service, e.g. http://model:8000.
	BaseURL string
	// Timeout bounds a single prediction.
	Timeout time.Duration
	// HTTPClient overrides the client used, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the model service. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("model service url is empty")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		httpClient: hc,
		endpoint:   strings.TrimRight(opts.BaseURL, "/") + "/predict",
		timeout:    opts.Timeout,
	}, nil
}

type predictReq struct {
	Columns  []string `json:"columns"`
	Features []int    `json:"features"`
}

type predictRes struct {
	Class *int `json:"class"`
}

// Predict sends vector to the model service and maps the returned class to a label.
func (c *Client) Predict(ctx context.Context, vector domain.FeatureVector) (domain.Label, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(predictReq{Columns: domain.SchemaNames(), Features: vector[:]})
	if err != nil {
		return "", fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", serrors.Wrap(serrors.ErrTimeout, err, "model prediction timed out")
		}

		return "", serrors.Wrap(serrors.ErrUnavailable, err, "could not reach model service")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrUnavailable, err, "could not read model response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", serrors.With(serrors.ErrUnavailable,
			"model service answered %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var res predictRes
	if err := json.Unmarshal(b, &res); err != nil {
		return "", serrors.Wrap(serrors.ErrUnavailable, err, "could not decode model response")
	}
	if res.Class == nil {
		return "", serrors.With(serrors.ErrUnavailable, "model response has no class")
	}

	return domain.LabelFromClass(*res.Class), nil
}
