// Package signal converts raw interview records into the canonical typed
// signals consumed by the domain agents. Detection is negation-aware
// ("we don't manufacture" must not trigger manufacturing) and
// future-intent-aware ("we plan to open a webshop" is weaker than
// "we run a webshop").
package signal

import "strconv"

// Strength classifies how a detected mention should be counted.
type Strength string

const (
	// StrengthPositive is a clearly confirmed current fact
	StrengthPositive Strength = "positive"
	// StrengthPlanned is a stated future intent
	StrengthPlanned Strength = "planned"
	// StrengthNegative is an explicit denial
	StrengthNegative Strength = "negative"
)

// Signal is a single normalized fact extracted from the interview.
// Keys are unique within a domain; signals are immutable once produced.
type Signal struct {
	Domain   string   `json:"domain"`
	Key      string   `json:"key"`
	Value    string   `json:"value"`
	Evidence []string `json:"evidence,omitempty"`
}

// Set is an immutable, ordered collection of signals with indexed lookup.
type Set struct {
	signals []Signal
	byKey   map[string]Signal
}

// NewSet builds a Set from signals. Ordering of the input is preserved;
// later duplicates of a (domain, key) pair are ignored.
func NewSet(signals []Signal) *Set {
	set := &Set{byKey: make(map[string]Signal, len(signals))}
	for _, sig := range signals {
		id := sig.Domain + "/" + sig.Key
		if _, exists := set.byKey[id]; exists {
			continue
		}
		set.byKey[id] = sig
		set.signals = append(set.signals, sig)
	}
	return set
}

// All returns the signals in normalization order.
func (s *Set) All() []Signal {
	out := make([]Signal, len(s.signals))
	copy(out, s.signals)
	return out
}

// Get returns the signal for a domain/key pair.
func (s *Set) Get(domain, key string) (Signal, bool) {
	sig, ok := s.byKey[domain+"/"+key]
	return sig, ok
}

// Count returns the integer value of a detection signal, or 0 when the
// signal is absent or non-numeric.
func (s *Set) Count(domain, key string) int {
	sig, ok := s.Get(domain, key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(sig.Value)
	if err != nil {
		return 0
	}
	return n
}

// Len returns the number of signals in the set.
func (s *Set) Len() int {
	return len(s.signals)
}
