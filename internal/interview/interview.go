// Package interview defines the input contract with the interview-collection
// tool and a tolerant loader for its output records. The record shape is
// externally versioned; missing domains or fields never fail a run here,
// they simply yield fewer signals downstream.
package interview

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"modplan/internal/errors"
)

// Response is a single question/answer pair collected for a domain.
type Response struct {
	Question string `json:"question" yaml:"question"`
	Response string `json:"response" yaml:"response"`
	Evidence string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// CompanyProfile carries the structured company facts from the interview.
type CompanyProfile struct {
	EmployeeCount int      `json:"employee_count,omitempty" yaml:"employee_count,omitempty"`
	Locations     []string `json:"locations,omitempty" yaml:"locations,omitempty"`
	Currency      string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	Country       string   `json:"country,omitempty" yaml:"country,omitempty"`
}

// Record is the top-level interview output document.
type Record struct {
	ProjectID        string                `json:"project_id" yaml:"project_id"`
	ClientName       string                `json:"client_name" yaml:"client_name"`
	Industry         string                `json:"industry" yaml:"industry"`
	CompanyProfile   CompanyProfile        `json:"company_profile,omitempty" yaml:"company_profile,omitempty"`
	RawResponses     map[string][]Response `json:"raw_responses,omitempty" yaml:"raw_responses,omitempty"`
	PainPoints       []string              `json:"pain_points,omitempty" yaml:"pain_points,omitempty"`
	SystemsMentioned []string              `json:"systems_mentioned,omitempty" yaml:"systems_mentioned,omitempty"`
}

// Load reads an interview record from a JSON or YAML file. The format is
// chosen by extension; anything that is not .yaml/.yml is treated as JSON.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.InterviewInvalid, errors.StageNormalize,
			fmt.Sprintf("cannot read interview file %s", path), err)
	}

	var record Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &record)
	default:
		err = json.Unmarshal(data, &record)
	}
	if err != nil {
		return nil, errors.New(errors.InterviewInvalid, errors.StageNormalize,
			fmt.Sprintf("cannot decode interview file %s", path), err)
	}

	return &record, nil
}

// ResponseTexts returns every non-empty response in deterministic order:
// domains sorted ascending, responses in declaration order within a domain.
func (r *Record) ResponseTexts() []string {
	domains := make([]string, 0, len(r.RawResponses))
	for domain := range r.RawResponses {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	var texts []string
	for _, domain := range domains {
		for _, entry := range r.RawResponses[domain] {
			text := strings.TrimSpace(entry.Response)
			if text != "" {
				texts = append(texts, text)
			}
		}
	}
	return texts
}
