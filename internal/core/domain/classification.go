package domain

import "time"

// The three classification dimensions are merged onto an obligation
// independently; each carries its own defaulting rules so a failed or partial
// model response never leaves an obligation in an inconsistent state.

type ClassificationResult struct {
	Type       ObligationType `json:"obligation_type"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
}

type StakeholderResult struct {
	Stakeholders    []string `json:"stakeholders"`
	ImpactedSystems []string `json:"impacted_systems"`
	Reasoning       string   `json:"reasoning"`
}

type ImplementationResult struct {
	ImplementationType   ImplementationType `json:"implementation_type"`
	EstimatedEffort      EffortEstimate     `json:"estimated_effort"`
	CommencementDate     string             `json:"commencement_date"`
	CommencementDateText string             `json:"commencement_date_text"`
	DateConfidence       DateConfidence     `json:"date_confidence"`
	Reasoning            string             `json:"reasoning"`
}

// DefaultClassification is the safe fallback for a failed classification call.
func DefaultClassification() ClassificationResult {
	return ClassificationResult{Type: ObligationGuidance, Confidence: 0.5}
}

func DefaultStakeholders() StakeholderResult {
	return StakeholderResult{Stakeholders: []string{}, ImpactedSystems: []string{}}
}

func DefaultImplementation() ImplementationResult {
	return ImplementationResult{ImplementationType: ImplNoChange, EstimatedEffort: EffortMedium}
}

// Normalize clamps a parsed result to the canonical enumeration and range,
// substituting defaults for anything the model left out or invented.
func (r ClassificationResult) Normalize() ClassificationResult {
	switch r.Type {
	case ObligationBinding, ObligationGuidance, ObligationDefinition, ObligationExample:
	default:
		r.Type = ObligationGuidance
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		r.Confidence = 0.5
	}
	return r
}

func (r StakeholderResult) Normalize() StakeholderResult {
	if r.Stakeholders == nil {
		r.Stakeholders = []string{}
	}
	if r.ImpactedSystems == nil {
		r.ImpactedSystems = []string{}
	}
	return r
}

func (r ImplementationResult) Normalize() ImplementationResult {
	switch r.ImplementationType {
	case ImplSystemChange, ImplProcessChange, ImplBoth, ImplNoChange:
	default:
		r.ImplementationType = ImplNoChange
	}
	switch r.EstimatedEffort {
	case EffortTrivial, EffortSmall, EffortMedium, EffortLarge:
	default:
		r.EstimatedEffort = EffortMedium
	}

	// A commencement date must be an explicit ISO day. Anything else is
	// treated as "no date found": a missed date beats a wrong one.
	if r.CommencementDate != "" {
		if _, err := time.Parse("2006-01-02", r.CommencementDate); err != nil {
			r.CommencementDate = ""
		}
	}
	if r.CommencementDate == "" {
		r.DateConfidence = ""
	} else {
		switch r.DateConfidence {
		case DateConfidenceHigh, DateConfidenceMedium, DateConfidenceLow:
		default:
			r.DateConfidence = DateConfidenceLow
		}
	}
	return r
}
