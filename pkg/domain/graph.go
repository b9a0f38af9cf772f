package domain

import "github.com/google/uuid"

// GraphID identifies a single link-graph build.
type GraphID uuid.UUID

// String returns the canonical UUID form.
func (id GraphID) String() string { return uuid.UUID(id).String() }

// ClientID identifies an authenticated API caller (the JWT subject).
type ClientID uuid.UUID

// String returns the canonical UUID form.
func (id ClientID) String() string { return uuid.UUID(id).String() }

// Node is a classified URL of the graph.
type Node struct {
	// URL is the absolute URL of the node.
	URL string `json:"url"`
	// Label is the verdict for the URL.
	Label Label `json:"label"`
	// Root is true for the URL the graph was built from.
	Root bool `json:"root,omitempty"`
	// Error holds the cause for nodes labeled Error.
	Error string `json:"error,omitempty"`
	// Features is the vector the label was derived from; empty for Error nodes.
	Features *FeatureVector `json:"features,omitempty"`
}

// Edge is a link discovered on the root page.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// LinkGraph is the labeled graph of a root URL and its outbound links.
// It is built fresh for every request and never persisted.
type LinkGraph struct {
	ID    GraphID `json:"id"`
	Root  string  `json:"root"`
	Nodes []Node  `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

// Counts returns how many nodes carry each label.
func (g *LinkGraph) Counts() map[Label]int {
	out := make(map[Label]int, 3)
	for _, n := range g.Nodes {
		out[n.Label]++
	}

	return out
}

// Classification is the verdict for a single URL together with the signals
// that produced it.
type Classification struct {
	URL     string        `json:"url"`
	Label   Label         `json:"label"`
	Vector  FeatureVector `json:"features"`
	Signals Signals       `json:"-"`
}
