package v1handler

import (
	"net/http"

	"phishgraph/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Classify labels the URL of the request body.
func (h Handler) Classify(w http.ResponseWriter, r *http.Request) {
	rawURL, err := decodeURLRequest(r.Body)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	c, err := h.deps.Scanner.Classify(r.Context(), rawURL)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, encodeClassification(c))
}

// Graph builds the labeled link graph of the URL of the request body.
func (h Handler) Graph(w http.ResponseWriter, r *http.Request) {
	rawURL, err := decodeURLRequest(r.Body)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	ctx := logger.WithFields(r.Context(), zap.Stringer("client", GetClientIDFromContext(r.Context())))
	g, err := h.deps.Scanner.Graph(ctx, rawURL)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	for label, n := range g.Counts() {
		h.graphNodes.Add(ctx, int64(n), metric.WithAttributes(attribute.String("label", string(label))))
	}

	writeJSON(w, http.StatusOK, encodeGraph(g))
}

// Features returns the signals of the url query parameter without classifying it.
func (h Handler) Features(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")

	sigs, err := h.deps.Scanner.Features(r.Context(), rawURL)
	if err != nil {
		h.WriteError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, encodeSignals(rawURL, &sigs))
}
