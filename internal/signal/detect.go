package signal

import (
	"strings"
)

// detection accumulates match counts per signal key across responses.
type detection struct {
	positive map[string]int
	negative map[string]int
	planned  map[string]int
	evidence map[string][]string
}

func newDetection() *detection {
	return &detection{
		positive: make(map[string]int),
		negative: make(map[string]int),
		planned:  make(map[string]int),
		evidence: make(map[string][]string),
	}
}

// net returns the active strength of a key: positives plus planned minus
// explicit denials. Only a positive net counts as a detected signal.
func (d *detection) net(key string) int {
	return d.positive[key] - d.negative[key] + d.planned[key]
}

// scanText applies every pattern group to one response text. Each pattern
// counts at most once per text, so a rambling answer cannot outvote a
// concise one.
func (d *detection) scanText(text string) {
	lower := strings.ToLower(text)

	for _, group := range patternGroups {
		for _, pattern := range group.Patterns {
			idx := strings.Index(lower, pattern)
			if idx == -1 {
				continue
			}

			switch classifyMatch(lower, idx, group.Patterns) {
			case StrengthNegative:
				d.negative[group.Key]++
			case StrengthPlanned:
				d.planned[group.Key]++
			default:
				d.positive[group.Key]++
			}

			if len(d.evidence[group.Key]) < maxEvidencePerKey {
				d.evidence[group.Key] = append(d.evidence[group.Key], excerpt(text, idx, len(pattern)))
			}
		}
	}
}

// classifyMatch decides whether a match is negated, planned, or positive.
func classifyMatch(lower string, matchStart int, patterns []string) Strength {
	if negatedBefore(lower, matchStart) {
		return StrengthNegative
	}
	if futureNear(lower, matchStart) && !hasCurrentConfirmation(lower, patterns) {
		return StrengthPlanned
	}
	return StrengthPositive
}

// negatedBefore scans up to negationWindow words before the match for a
// negation, truncating at clause boundaries so "we don't manufacture but we
// do assemble" keeps the second clause positive.
func negatedBefore(lower string, matchStart int) bool {
	words := strings.Fields(lower[:matchStart])
	if len(words) > negationWindow {
		words = words[len(words)-negationWindow:]
	}

	for i := len(words) - 1; i >= 0; i-- {
		if clauseBoundaries[strings.Trim(words[i], ",.;:")] {
			words = words[i+1:]
			break
		}
	}

	prefix := " " + strings.Join(words, " ") + " "
	for _, neg := range negationWords {
		if strings.Contains(prefix, " "+neg+" ") {
			return true
		}
	}
	return false
}

// futureNear checks a 60-character window around the match for planning
// language.
func futureNear(lower string, matchStart int) bool {
	start := matchStart - 60
	if start < 0 {
		start = 0
	}
	end := matchStart + 60
	if end > len(lower) {
		end = len(lower)
	}
	window := lower[start:end]

	for _, fut := range futureWords {
		if strings.Contains(window, fut) {
			return true
		}
	}
	return false
}

// hasCurrentConfirmation reports whether any pattern of the group also
// appears without negation or future framing, in which case planned
// phrasing elsewhere does not downgrade the signal.
func hasCurrentConfirmation(lower string, patterns []string) bool {
	for _, pattern := range patterns {
		idx := strings.Index(lower, pattern)
		if idx == -1 {
			continue
		}
		if !futureNear(lower, idx) && !negatedBefore(lower, idx) {
			return true
		}
	}
	return false
}

// excerpt returns a short evidence snippet around the match, from the
// original (non-lowercased) text.
func excerpt(text string, idx, matchLen int) string {
	start := idx - 50
	if start < 0 {
		start = 0
	}
	end := idx + matchLen + 50
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}
