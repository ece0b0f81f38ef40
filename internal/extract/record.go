// Package extract implements the content-extraction stage: fetch each
// candidate's site and pull a structured business profile out of the
// page text, scored for confidence.
package extract

import "strings"

// BusinessRecord is the structured profile extracted for one candidate.
// Records are created once and never mutated afterwards. Confidence
// reflects how much of the profile was populated and how directly the
// source text supported it, in [0,1].
type BusinessRecord struct {
	Name            string   `json:"name"`
	Phones          []string `json:"phones,omitempty"`
	Emails          []string `json:"emails,omitempty"`
	Address         string   `json:"address,omitempty"`
	Services        []string `json:"services,omitempty"`
	YearsInBusiness int      `json:"years_in_business,omitempty"`
	Confidence      float64  `json:"confidence"`
	SourceURL       string   `json:"source_url"`
}

// normalize clamps confidence into [0,1] and deduplicates the services
// set while preserving first-seen order.
func (r *BusinessRecord) normalize() {
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}

	seen := make(map[string]struct{}, len(r.Services))
	services := r.Services[:0]
	for _, s := range r.Services {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		services = append(services, s)
	}
	r.Services = services
}
