package signal

import (
	"regexp"
	"strconv"
	"strings"

	"modplan/internal/interview"
)

// employeeCountRe extracts a headcount stated in free text, e.g. "120 FTE".
var employeeCountRe = regexp.MustCompile(`(?i)(\d{1,5})\s*(fte|employees|staff)`)

// Normalize flattens an interview record into the canonical ordered signal
// set. Text responses are scanned with the negation-aware detector;
// structured profile fields become typed signals directly. Unanswered
// questions produce no signal at all, never a null-valued one.
func Normalize(record *interview.Record) *Set {
	texts := record.ResponseTexts()

	det := newDetection()
	for _, text := range texts {
		det.scanText(text)
	}

	var signals []Signal

	// Detection signals in pattern-table order for a stable artifact layout.
	for _, group := range patternGroups {
		net := det.net(group.Key)
		if net <= 0 {
			continue
		}
		signals = append(signals, Signal{
			Domain:   group.Domain,
			Key:      group.Key,
			Value:    strconv.Itoa(net),
			Evidence: det.evidence[group.Key],
		})
	}

	signals = append(signals, profileSignals(record, strings.Join(texts, "\n"))...)
	signals = append(signals, systemSignals(record)...)

	return NewSet(signals)
}

// profileSignals converts structured company facts into signals.
func profileSignals(record *interview.Record, rawText string) []Signal {
	var signals []Signal

	count := record.CompanyProfile.EmployeeCount
	if count == 0 {
		if m := employeeCountRe.FindStringSubmatch(rawText); m != nil {
			if parsed, err := strconv.Atoi(m[1]); err == nil {
				count = parsed
			}
		}
	}
	if count > 0 {
		signals = append(signals, Signal{
			Domain: DomainCompany,
			Key:    "employee_count",
			Value:  strconv.Itoa(count),
		})
	}

	if len(record.CompanyProfile.Locations) > 1 {
		signals = append(signals, Signal{
			Domain: DomainCompany,
			Key:    "multi_location",
			Value:  strconv.Itoa(len(record.CompanyProfile.Locations)),
		})
	}

	if record.CompanyProfile.Currency != "" {
		signals = append(signals, Signal{
			Domain: DomainCompany,
			Key:    "currency",
			Value:  record.CompanyProfile.Currency,
		})
	}

	for _, pain := range record.PainPoints {
		pain = strings.TrimSpace(pain)
		if pain == "" {
			continue
		}
		signals = append(signals, Signal{
			Domain:   DomainRisk,
			Key:      "pain_point",
			Value:    strconv.Itoa(len(record.PainPoints)),
			Evidence: trimmedNonEmpty(record.PainPoints),
		})
		break
	}

	return signals
}

// systemSignals surfaces third-party systems named in the interview; each
// one feeds the integration risk agent and keeps the system name as evidence.
func systemSignals(record *interview.Record) []Signal {
	systems := trimmedNonEmpty(record.SystemsMentioned)
	if len(systems) == 0 {
		return nil
	}
	return []Signal{{
		Domain:   DomainIntegrations,
		Key:      "systems_mentioned",
		Value:    strconv.Itoa(len(systems)),
		Evidence: systems,
	}}
}

func trimmedNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
