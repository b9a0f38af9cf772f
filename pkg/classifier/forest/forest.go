// Package forest evaluates a tree ensemble exported to JSON, such as a random
// forest trained on the 30-column phishing dataset, without any external
// service.
//
// The export looks like
//
//	{
//	  "columns": ["UsingIP", ..., "StatsReport"],
//	  "trees": [
//	    {"nodes": [
//	      {"feature": 0, "threshold": 0.5, "left": 1, "right": 2},
//	      {"left": -1, "right": -1, "class": 1},
//	      {"left": -1, "right": -1, "class": -1}
//	    ]}
//	  ]
//	}
//
// Internal nodes send a sample left when its feature value is <= threshold.
// Leaves have both children set to -1. Children always come after their
// parent, so evaluation terminates.
package forest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"phishgraph/pkg/domain"
)

const leaf = -1

// Node is one node of a decision tree.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Class     int     `json:"class"`
}

// Tree is a decision tree rooted at its first node.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Model is a loaded ensemble. It is immutable and safe for concurrent use.
type Model struct {
	Columns []string `json:"columns"`
	Trees   []Tree   `json:"trees"`
}

// Load decodes and validates a model export.
func Load(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("could not decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// LoadFile loads a model export from path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open model: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return Load(f)
}

// Validate checks that the columns match the feature schema and that every
// tree is well formed.
func (m *Model) Validate() error {
	if !slices.Equal(m.Columns, domain.SchemaNames()) {
		return fmt.Errorf("model columns %v do not match the feature schema", m.Columns)
	}
	if len(m.Trees) == 0 {
		return errors.New("model has no trees")
	}

	for ti, t := range m.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.Left == leaf && n.Right == leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= domain.FeatureCount {
				return fmt.Errorf("tree %d node %d: feature %d out of range", ti, ni, n.Feature)
			}
			for _, child := range []int{n.Left, n.Right} {
				if child <= ni || child >= len(t.Nodes) {
					return fmt.Errorf("tree %d node %d: invalid child %d", ti, ni, child)
				}
			}
		}
	}

	return nil
}

func (t Tree) classify(x *domain.FeatureVector) int {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left == leaf && n.Right == leaf {
			return n.Class
		}
		if float64(x[n.Feature]) <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Class returns the majority class of the trees. Ties go to the lowest class.
func (m *Model) Class(x domain.FeatureVector) int {
	votes := make(map[int]int)
	for _, t := range m.Trees {
		votes[t.classify(&x)]++
	}

	classes := make([]int, 0, len(votes))
	for c := range votes {
		classes = append(classes, c)
	}
	slices.Sort(classes)

	best := classes[0]
	for _, c := range classes[1:] {
		if votes[c] > votes[best] {
			best = c
		}
	}

	return best
}

// Predict implements classifier.Classifier.
func (m *Model) Predict(_ context.Context, vector domain.FeatureVector) (domain.Label, error) {
	return domain.LabelFromClass(m.Class(vector)), nil
}
