package registration

import (
	"errors"
	"time"

	"phishgraph/pkg/domain"
)

// ErrNoCreationDate is the cause reported when a record has no usable creation date.
var ErrNoCreationDate = errors.New("registration record has no parsable creation date")

const (
	registeredLongDays = 365
	// ageMonths is compared against the age expressed in 30-day months.
	ageMonths = 6
)

// Result holds the registration derived features.
type Result struct {
	DomainRegLen domain.Signal
	AgeofDomain  domain.Signal
	DNSRecording domain.Signal
}

// Derive computes the registration features from a lookup outcome. A lookup
// error or a record without creation date makes all three unavailable.
func Derive(rec *domain.RegistrationRecord, lookupErr error, now time.Time) Result {
	if lookupErr == nil && !rec.HasCreationDate() {
		lookupErr = ErrNoCreationDate
	}
	if lookupErr != nil {
		u := domain.Unavailable(lookupErr)

		return Result{DomainRegLen: u, AgeofDomain: u, DNSRecording: u}
	}

	days := int(now.Sub(rec.CreatedAt).Hours() / 24)

	return Result{
		DomainRegLen: domain.ComputedBool(days >= registeredLongDays),
		AgeofDomain:  domain.ComputedBool(float64(days)/30 > ageMonths),
		DNSRecording: domain.ComputedBool(rec.DomainName != ""),
	}
}

// Fill writes the registration slots of sigs.
func (r Result) Fill(sigs *domain.Signals) {
	sigs.Set(domain.DomainRegLen, r.DomainRegLen)
	sigs.Set(domain.AgeofDomain, r.AgeofDomain)
	sigs.Set(domain.DNSRecording, r.DNSRecording)
}
