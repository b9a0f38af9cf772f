// Package classifier defines the contract of the pre-trained phishing model.
// A Classifier is built once at process start and shared read-only by all
// requests.
package classifier

import (
	"context"

	"phishgraph/pkg/domain"
)

// Classifier labels a feature vector as Legitimate or Phishing. It never
// returns domain.LabelError; failures are reported through the error.
//
//go:generate mockgen -package mockclassifier -source=interface.go -destination=mock/mockclassifier.go *
type Classifier interface {
	Predict(ctx context.Context, vector domain.FeatureVector) (domain.Label, error)
}
