package domain

import "time"

// RegistrationRecord is the parsed outcome of a registration-data lookup.
type RegistrationRecord struct {
	// Host is the host the lookup was requested for.
	Host string `json:"host"`
	// Queried is the registrable domain that was actually looked up.
	Queried string `json:"queried"`
	// DomainName is the domain-name field of the record; empty when the
	// registry returned none.
	DomainName string `json:"domainName,omitempty"`
	// CreatedAt is the first creation date found; zero when absent or unparsable.
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// HasCreationDate reports whether a creation date was resolved.
func (r *RegistrationRecord) HasCreationDate() bool {
	return r != nil && !r.CreatedAt.IsZero()
}
