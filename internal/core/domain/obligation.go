package domain

import "time"

type ObligationType string

const (
	ObligationBinding    ObligationType = "binding"
	ObligationGuidance   ObligationType = "guidance"
	ObligationDefinition ObligationType = "definition"
	ObligationExample    ObligationType = "example"
)

type ImplementationType string

const (
	ImplSystemChange  ImplementationType = "system_change"
	ImplProcessChange ImplementationType = "process_change"
	ImplBoth          ImplementationType = "both"
	ImplNoChange      ImplementationType = "no_change"
)

type EffortEstimate string

const (
	EffortTrivial EffortEstimate = "trivial"
	EffortSmall   EffortEstimate = "small"
	EffortMedium  EffortEstimate = "medium"
	EffortLarge   EffortEstimate = "large"
)

// DateConfidence is empty when no commencement date was found.
type DateConfidence string

const (
	DateConfidenceHigh   DateConfidence = "high"
	DateConfidenceMedium DateConfidence = "medium"
	DateConfidenceLow    DateConfidence = "low"
)

type Obligation struct {
	ID                      string             `json:"id"`
	DocumentID              string             `json:"document_id"`
	ExtractedText           string             `json:"extracted_text"`
	Context                 string             `json:"context"`
	SectionNumber           string             `json:"section_number"`
	PageNumber              int                `json:"page_number"`
	Keywords                []string           `json:"keywords"`
	Type                    ObligationType     `json:"obligation_type"`
	Confidence              float64            `json:"confidence"`
	Stakeholders            []string           `json:"stakeholders"`
	ImpactedSystems         []string           `json:"impacted_systems"`
	ImplementationType      ImplementationType `json:"implementation_type"`
	EstimatedEffort         EffortEstimate     `json:"estimated_effort"`
	CommencementDate        string             `json:"commencement_date,omitempty"`
	CommencementDateText    string             `json:"commencement_date_text,omitempty"`
	DateConfidence          DateConfidence     `json:"date_confidence,omitempty"`
	ClassificationReasoning string             `json:"classification_reasoning,omitempty"`
	StakeholderReasoning    string             `json:"stakeholder_reasoning,omitempty"`
	ImplementationReasoning string             `json:"implementation_reasoning,omitempty"`
	CreatedAt               time.Time          `json:"created_at"`
}
