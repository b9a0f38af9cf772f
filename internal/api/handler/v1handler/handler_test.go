package v1handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"phishgraph/internal/api/handler/v1handler"
	mockscanner "phishgraph/internal/scanner/mock"
	"phishgraph/pkg/domain"
	"phishgraph/pkg/logger"
	"phishgraph/pkg/serrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	// Initialize logger to avoid nil pointer deref during tests
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func TestNewError_InternalOnPlainError(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	res := h.NewError(ctx, errors.New("boom"))
	require.NotNil(t, res)
	require.Equal(t, 500, res.StatusCode)
	require.Equal(t, serrors.ErrInternal.Error(), res.Code)
	require.Equal(t, "internal error", res.Message)
}

func TestNewError_KindSentinelDirect_NotFound(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	// Pass the Kind sentinel directly
	res := h.NewError(ctx, serrors.ErrNotFound)
	require.Equal(t, 404, res.StatusCode)
	require.Equal(t, serrors.ErrNotFound.Error(), res.Code)
	require.Equal(t, "resource not found", res.Message)
}

func TestNewError_SemanticWithMessage_BadRequest(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	err := serrors.With(serrors.ErrBadRequest, "invalid payload: missing url")
	res := h.NewError(ctx, err)
	require.Equal(t, 400, res.StatusCode)
	require.Equal(t, serrors.ErrBadRequest.Error(), res.Code)
	require.Equal(t, "invalid payload: missing url", res.Message)
}

func TestNewError_SemanticWrap_Unauthorized(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	cause := errors.New("bad token")
	err := serrors.Wrap(serrors.ErrUnauthorized, cause, "unauthorized")
	res := h.NewError(ctx, err)
	require.Equal(t, 401, res.StatusCode)
	require.Equal(t, serrors.ErrUnauthorized.Error(), res.Code)
	// Should include provided message, not the cause
	require.Equal(t, "unauthorized", res.Message)
}

func TestNewError_InternalKind_GeneratesInternal(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	res := h.NewError(ctx, serrors.KindOnly(serrors.ErrInternal))
	require.Equal(t, 500, res.StatusCode)
	require.Equal(t, serrors.ErrInternal.Error(), res.Code)
	require.Equal(t, "internal error", res.Message)
}

func TestNewError_WrappedTimeoutKeepsInnerMessage(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})

	err := fmt.Errorf("could not fetch root URL: %w", serrors.With(serrors.ErrTimeout, "fetch of https://slow.example/ timed out"))
	res := h.NewError(context.Background(), err)
	require.Equal(t, http.StatusGatewayTimeout, res.StatusCode)
	require.Equal(t, "TIMEOUT", res.Code)
	require.Equal(t, "fetch of https://slow.example/ timed out", res.Message)
}

func newTestHandler(t *testing.T) (*mockscanner.MockScanner, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	s := mockscanner.NewMockScanner(ctrl)

	return s, v1handler.New(v1handler.Deps{Scanner: s}).Routes()
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func TestHandler_Classify(t *testing.T) {
	s, h := newTestHandler(t)

	var sigs domain.Signals
	sigs.Set(domain.HTTPS, domain.Computed(1))
	sigs.Set(domain.PageRank, domain.NotImplemented())
	c := &domain.Classification{URL: "https://example.com/", Label: domain.LabelLegitimate, Signals: sigs}
	c.Vector = sigs.Vector()
	s.EXPECT().Classify(gomock.Any(), "https://example.com/").Return(c, nil)

	rec := serve(h, http.MethodPost, "/classify", `{"url":"https://example.com/","extra":[1,2]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	out := decode(t, rec)
	require.Equal(t, "Legitimate", out["label"])
	features, ok := out["features"].(map[string]any)
	require.True(t, ok)
	require.Len(t, features, domain.FeatureCount)
	require.InDelta(t, 1, features["HTTPS"], 0)
	require.NotEmpty(t, out["diagnostics"])
}

func TestHandler_Classify_BadPayload(t *testing.T) {
	_, h := newTestHandler(t)

	for _, body := range []string{``, `[]`, `{"url": 5}`, `{"other":"x"}`, `{"url":`} {
		rec := serve(h, http.MethodPost, "/classify", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		require.Equal(t, "BAD_REQUEST", decode(t, rec)["code"], body)
	}
}

func TestHandler_Graph(t *testing.T) {
	s, h := newTestHandler(t)

	features := domain.FeatureVector{}
	g := &domain.LinkGraph{
		ID:   domain.GraphID(uuid.New()),
		Root: "https://example.com/",
		Nodes: []domain.Node{
			{URL: "https://example.com/", Label: domain.LabelPhishing, Root: true, Features: &features},
			{URL: "https://gone.invalid/", Label: domain.LabelError, Error: "host gone.invalid does not exist"},
		},
		Edges: []domain.Edge{{From: "https://example.com/", To: "https://gone.invalid/"}},
	}
	s.EXPECT().Graph(gomock.Any(), "https://example.com/").Return(g, nil)

	rec := serve(h, http.MethodPost, "/graph", `{"url":"https://example.com/"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	require.Equal(t, g.ID.String(), out["id"])
	nodes, ok := out["nodes"].([]any)
	require.True(t, ok)
	require.Len(t, nodes, 2)
	errNode, ok := nodes[1].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Error", errNode["label"])
	require.NotContains(t, errNode, "features")
	require.Len(t, out["edges"], 1)
	require.Equal(t, map[string]any{"Legitimate": 0.0, "Phishing": 1.0, "Error": 1.0}, out["counts"])
}

func TestHandler_Graph_RootFailure(t *testing.T) {
	s, h := newTestHandler(t)

	s.EXPECT().Graph(gomock.Any(), "https://down.example/").
		Return(nil, fmt.Errorf("could not fetch root URL: %w", serrors.With(serrors.ErrUnavailable, "status 503")))

	rec := serve(h, http.MethodPost, "/graph", `{"url":"https://down.example/"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, map[string]any{"code": "UNAVAILABLE", "message": "status 503"}, decode(t, rec))
}

func TestHandler_Features(t *testing.T) {
	s, h := newTestHandler(t)

	var sigs domain.Signals
	sigs.Set(domain.LongURL, domain.Computed(1))
	s.EXPECT().Features(gomock.Any(), "https://example.com/a?b=c").Return(sigs, nil)

	rec := serve(h, http.MethodGet, "/features?url="+url.QueryEscape("https://example.com/a?b=c"), "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	vector, ok := out["vector"].([]any)
	require.True(t, ok)
	require.Len(t, vector, domain.FeatureCount)
	require.InDelta(t, 1, vector[1], 0)
}

func TestHandler_UnknownRoute(t *testing.T) {
	_, h := newTestHandler(t)

	rec := serve(h, http.MethodGet, "/scans", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", decode(t, rec)["code"])
}
