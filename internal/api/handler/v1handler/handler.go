// Package v1handler serves version 1 of the HTTP API: single URL
// classification, feature extraction and link graph builds.
package v1handler

import (
	"context"
	"errors"
	"net/http"

	"phishgraph/internal/scanner"
	"phishgraph/pkg/logger"
	"phishgraph/pkg/serrors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

const meterName = "phishgraph/internal/api/handler/v1handler"

// maxBodyBytes caps request payloads; they only ever carry a URL.
const maxBodyBytes = 64 << 10

// Deps are the services the handlers call into.
type Deps struct {
	Scanner scanner.Scanner
}

// Handler implements the v1 endpoints.
type Handler struct {
	deps Deps
	// graphNodes counts the nodes of built graphs by label.
	graphNodes metric.Int64Counter
}

// New creates the v1 handler. The graph node counter comes from the global
// meter provider and falls back to a no-op counter.
func New(deps Deps) *Handler {
	h := &Handler{deps: deps}

	var err error
	h.graphNodes, err = otel.Meter(meterName).Int64Counter("phishgraph.graph.nodes",
		metric.WithDescription("Nodes of built link graphs by label"))
	if err != nil {
		h.graphNodes = noop.Int64Counter{}
	}

	return h
}

// Routes returns the v1 endpoints, relative to the /v1 prefix.
func (h Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /classify", h.Classify)
	mux.HandleFunc("POST /graph", h.Graph)
	mux.HandleFunc("GET /features", h.Features)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		h.WriteError(w, r, serrors.With(serrors.ErrNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})

	return mux
}

// ErrorResponse is the error payload together with its status code.
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

//nolint: gochecknoglobals
var defaultMessages = map[serrors.Kind]string{
	serrors.ErrBadRequest:   "bad request",
	serrors.ErrUnauthorized: "unauthorized",
	serrors.ErrNotFound:     "resource not found",
	serrors.ErrTimeout:      "upstream timed out",
	serrors.ErrUnavailable:  "upstream unavailable",
	serrors.ErrInternal:     "internal error",
}

// NewError maps err to the payload sent to clients. Internal errors are
// logged and never expose their message.
func (h Handler) NewError(ctx context.Context, err error) *ErrorResponse {
	kind := serrors.KindOf(err)
	res := &ErrorResponse{
		StatusCode: serrors.HTTPStatus(err),
		Code:       kind.Error(),
		Message:    defaultMessages[kind],
	}

	if kind == serrors.ErrInternal {
		logger.Error(ctx, "request failed", zap.Error(err))

		return res
	}

	logger.Info(ctx, "request rejected", zap.String("code", res.Code), zap.Error(err))

	var se *serrors.Error
	if errors.As(err, &se) && se.Message() != "" {
		res.Message = se.Message()
	}

	return res
}

// WriteError writes the payload of err.
func (h Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	writeJSON(w, res.StatusCode, encodeError(res))
}
