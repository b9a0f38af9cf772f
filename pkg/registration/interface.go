// Package registration looks up the registration data of a host and turns it
// into the age and record-presence features. Lookup failures never leave
// this package as anything but unavailable signals.
package registration

import (
	"context"

	"phishgraph/pkg/domain"
)

// Resolver performs one registration-data lookup for a host.
//
//go:generate mockgen -package mockregistration -source=interface.go -destination=mock/mockregistration.go *
type Resolver interface {
	Lookup(ctx context.Context, host string) (*domain.RegistrationRecord, error)
}

// Prober checks that a host exists in DNS before any heavier work is spent on it.
type Prober interface {
	Probe(ctx context.Context, host string) error
}
