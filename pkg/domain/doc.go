// Package domain contains the core types shared by the feature extractor,
// the classifier collaborators and the link-graph builder: the fixed feature
// schema, per-heuristic signals, labels, registration records and the link
// graph itself. The package has no infrastructure dependencies.
package domain
