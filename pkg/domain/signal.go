package domain

import "errors"

// SignalState tells how a feature slot got its value.
type SignalState uint8

const (
	// SignalUnavailable means the heuristic failed; the slot carries the default.
	SignalUnavailable SignalState = iota
	// SignalComputed means the heuristic ran and produced a value.
	SignalComputed
	// SignalNotImplemented means no data source exists for the slot.
	SignalNotImplemented
)

// String returns a short name of the state.
func (s SignalState) String() string {
	switch s {
	case SignalUnavailable:
		return "unavailable"
	case SignalComputed:
		return "computed"
	case SignalNotImplemented:
		return "not_implemented"
	default:
		return "unknown"
	}
}

// DefaultValue is written into a slot whose signal was not computed.
const DefaultValue = 0

// ErrNotImplemented is the cause attached to placeholder signals.
var ErrNotImplemented = errors.New("no data source for this feature")

// Signal is the outcome of a single heuristic: either a computed value or an
// unavailable marker with the cause kept for diagnostics. The zero value is
// an unavailable signal without a cause.
type Signal struct {
	value int
	state SignalState
	cause error
}

// Computed wraps a value produced by a heuristic.
func Computed(v int) Signal { return Signal{value: v, state: SignalComputed} }

// ComputedBool is Computed(1) for true and Computed(0) for false.
func ComputedBool(b bool) Signal {
	if b {
		return Computed(1)
	}

	return Computed(0)
}

// Unavailable marks a heuristic that could not produce a value.
func Unavailable(cause error) Signal {
	return Signal{state: SignalUnavailable, cause: cause}
}

// NotImplemented marks a slot without any data source.
func NotImplemented() Signal {
	return Signal{state: SignalNotImplemented, cause: ErrNotImplemented}
}

// Value returns the computed value or DefaultValue.
func (s Signal) Value() int {
	if s.state == SignalComputed {
		return s.value
	}

	return DefaultValue
}

// State returns how the value was obtained.
func (s Signal) State() SignalState { return s.state }

// Cause returns why the signal is not computed, nil when it is.
func (s Signal) Cause() error { return s.cause }

// OK reports whether the signal was computed.
func (s Signal) OK() bool { return s.state == SignalComputed }

// Signals holds one signal per schema slot.
type Signals [FeatureCount]Signal

// Set stores sig in the slot of name. Unknown names are ignored.
func (s *Signals) Set(name FeatureName, sig Signal) {
	if i, ok := IndexOf(name); ok {
		s[i] = sig
	}
}

// Get returns the signal of name.
func (s *Signals) Get(name FeatureName) Signal {
	if i, ok := IndexOf(name); ok {
		return s[i]
	}

	return Unavailable(nil)
}

// Vector flattens the signals into the numeric vector.
func (s *Signals) Vector() FeatureVector {
	var v FeatureVector
	for i, sig := range s {
		v[i] = sig.Value()
	}

	return v
}

// Diagnostic describes a slot that fell back to the default value.
type Diagnostic struct {
	Feature FeatureName `json:"feature"`
	State   string      `json:"state"`
	Cause   string      `json:"cause,omitempty"`
}

// Diagnostics lists every slot that was not computed, in schema order.
func (s *Signals) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for i, sig := range s {
		if sig.OK() {
			continue
		}
		d := Diagnostic{Feature: Schema[i], State: sig.State().String()}
		if sig.Cause() != nil {
			d.Cause = sig.Cause().Error()
		}
		out = append(out, d)
	}

	return out
}
