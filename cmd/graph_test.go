package main

import (
	"bytes"
	"strings"
	"testing"

	"phishgraph/pkg/domain"

	"github.com/stretchr/testify/require"
)

func TestWriteDOT(t *testing.T) {
	g := &domain.LinkGraph{
		Root: "https://example.com/",
		Nodes: []domain.Node{
			{URL: "https://example.com/", Label: domain.LabelLegitimate, Root: true},
			{URL: "https://evil.example/\"x", Label: domain.LabelPhishing},
			{URL: "https://gone.invalid/", Label: domain.LabelError, Error: "no such host"},
		},
		Edges: []domain.Edge{
			{From: "https://example.com/", To: "https://evil.example/\"x"},
			{From: "https://example.com/", To: "https://gone.invalid/"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeDOT(&buf, g))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "digraph links {\n"))
	require.Contains(t, out, `"https://example.com/" [fillcolor=green, tooltip="Legitimate", shape=doubleoctagon];`)
	require.Contains(t, out, `"https://evil.example/\"x" [fillcolor=red, tooltip="Phishing"];`)
	require.Contains(t, out, `"https://gone.invalid/" [fillcolor=grey, tooltip="Error"];`)
	require.Contains(t, out, `"https://example.com/" -> "https://gone.invalid/";`)
	require.True(t, strings.HasSuffix(out, "}\n"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, bytes.ErrTooLarge }

func TestWriteDOT_WriteError(t *testing.T) {
	err := writeDOT(failingWriter{}, &domain.LinkGraph{})
	require.ErrorIs(t, err, bytes.ErrTooLarge)
}
