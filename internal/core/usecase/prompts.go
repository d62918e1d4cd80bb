package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oblicore/oblicore/internal/core/domain"
)

// Prompt builders for every pipeline stage. Each one pins the exact JSON
// shape the caller will parse, so repair plus unmarshal is the whole
// contract with the model.

func buildStructurePrompt() string {
	return `You are analysing the attached regulatory document.

Return a single JSON object describing its structure:
{
  "title": "official document title",
  "document_type": "regulation | standard | guidance | act | other",
  "effective_date": "YYYY-MM-DD or empty string",
  "version": "version identifier or empty string",
  "total_pages": <number>,
  "sections": [
    {
      "section_number": "e.g. 4.2",
      "title": "section heading",
      "content": "verbatim section text, ONLY when has_obligations is true, otherwise empty string",
      "page_start": <number>,
      "page_end": <number>,
      "has_obligations": true | false
    }
  ]
}

Mark has_obligations true only for sections containing regulatory obligations
(requirements, duties, prohibitions). Front matter, definitions-only sections
and appendices without requirements are false.

Respond with the JSON object only, no commentary.`
}

func buildExtractionPrompt(sectionNumber, sectionTitle, chunk string) string {
	return fmt.Sprintf(`Extract every regulatory obligation from this section of a regulatory document.

Section %s: %s

Text:
%s

Return a JSON array (possibly empty) of obligations:
[
  {
    "extracted_text": "the verbatim obligation text",
    "context": "one sentence of surrounding context",
    "keywords": ["key", "terms"],
    "confidence": 0.0-1.0
  }
]

An obligation is a statement that requires, prohibits or permits specific
conduct by a regulated entity. Do not invent obligations; quote the source
text. Respond with the JSON array only.`, sectionNumber, sectionTitle, chunk)
}

func buildClassificationPrompt(ob domain.Obligation) string {
	return fmt.Sprintf(`Classify this regulatory obligation.

Obligation: %s
Context: %s

Return a JSON object:
{
  "obligation_type": "binding | guidance | definition | example",
  "confidence": 0.0-1.0,
  "reasoning": "one or two sentences"
}

binding = mandatory requirement ("must", "shall"); guidance = recommended
practice ("should", "may wish to"); definition = defines a term; example =
illustrative only. Respond with the JSON object only.`, ob.ExtractedText, ob.Context)
}

func buildStakeholderPrompt(ob domain.Obligation) string {
	return fmt.Sprintf(`Identify who is affected by this regulatory obligation and which systems it touches.

Obligation: %s
Context: %s

Return a JSON object:
{
  "stakeholders": ["roles or business functions responsible, e.g. Compliance, Operations"],
  "impacted_systems": ["classes of systems affected, e.g. reporting platform, customer records"],
  "reasoning": "one or two sentences"
}

Use empty arrays when nothing applies. Respond with the JSON object only.`, ob.ExtractedText, ob.Context)
}

func buildImplementationPrompt(ob domain.Obligation) string {
	return fmt.Sprintf(`Assess what implementing this regulatory obligation requires.

Obligation: %s
Context: %s

Return a JSON object:
{
  "implementation_type": "system_change | process_change | both | no_change",
  "estimated_effort": "trivial | small | medium | large",
  "commencement_date": "YYYY-MM-DD or null",
  "commencement_date_text": "the source text naming the date, or null",
  "date_confidence": "high | medium | low | null",
  "reasoning": "one or two sentences"
}

Commencement date rules:
- Report a date ONLY when it is when a NEW obligation starts to apply.
- Do NOT report dates of past events, publication dates, or transitional references.
- When a phased rollout names several dates, report the EARLIEST primary date.
- When you are not sure, use null. A missing date is better than a wrong one.

Respond with the JSON object only.`, ob.ExtractedText, ob.Context)
}

func buildDatesPrompt() string {
	return `Find the commencement dates of the attached regulatory document.

Return a JSON array of {date, description} pairs:
[
  {"date": "YYYY-MM-DD", "description": "what commences on that date"}
]

Rules:
- Only dates on which obligations in this document start to apply.
- Ignore publication dates, consultation deadlines and historical references.
- Use an empty array when the document names no commencement date.

Respond with the JSON array only.`
}

func buildRTMPrompt(doc *domain.Document, obligations []domain.Obligation) string {
	return fmt.Sprintf(`Produce a requirements traceability matrix for the regulatory document %q (%s).

Classified obligations:
%s

Return a JSON object with exactly this shape:
{
  "document_control": {
    "initiative_name": "...", "primary_driver": "...", "primary_objective": "...",
    "scope_area": "...", "impacted_parties": ["..."], "target_jurisdiction": "...",
    "commencement_date": "YYYY-MM-DD or empty", "version": "1.0"
  },
  "interpretations": [
    {"req_id": "REQ-001", "reg_document": "...", "reg_effective_date": "...", "reg_clause": "...",
     "verbatim": "...", "summary": "...", "applies_to": "...", "applies_when": "...",
     "in_scope": true, "interpretation_notes": "..."}
  ],
  "requirements": [
    {"bus_req_id": "BR-001", "linked_req_id": "REQ-001", "reg_effective_date": "...",
     "business_requirement": "...", "system_requirement": "...", "default_behaviour": "...",
     "intended_outcome": "...", "chargeable": false}
  ],
  "assumptions": [
    {"rad_id": "A-001", "type": "assumption | risk | dependency", "detail": "...",
     "impact": "...", "mitigation": "...", "owner": "...", "due_date": "...", "status": "open"}
  ]
}

Every binding obligation must appear as an interpretation row tracing to at
least one requirement. Respond with the JSON object only.`, doc.Title, doc.Source, obligationsDigest(obligations))
}

func buildFuncSpecPrompt(doc *domain.Document, obligations []domain.Obligation) string {
	return fmt.Sprintf(`Produce a functional specification for implementing the regulatory document %q (%s).

Classified obligations:
%s

Return a JSON object with exactly this shape:
{
  "initiative_overview": {
    "regulatory_driver": "...", "effective_date": "YYYY-MM-DD or empty",
    "impacted_participants": ["..."], "compliance_risk": "..."
  },
  "regulatory_source_register": [
    {"source": "...", "clause": "...", "obligation_summary": "...", "confidence": "high | medium | low"}
  ],
  "functional_requirements": [
    {"id": "FR-001", "requirement": "The system shall ...", "classification": "system_change | process_change | both",
     "source": "...", "notes": "..."}
  ],
  "business_rules": [
    {"rule_id": "BR-001", "rule": "...", "source": "...", "classification": "..."}
  ],
  "risks_and_ambiguities": [
    {"type": "risk | ambiguity", "description": "...", "impact": "...", "mitigation": "..."}
  ],
  "assumptions": [
    {"assumption_id": "A-001", "assumption": "...", "impact": "...", "validation_required": "yes | no"}
  ],
  "traceability_statement": "...",
  "complexity_level": "low | medium | high",
  "complexity_reason": "..."
}

Respond with the JSON object only.`, doc.Title, doc.Source, obligationsDigest(obligations))
}

// obligationsDigest serializes the fields the deliverable prompts need,
// keeping the prompt well under context limits for large registers.
func obligationsDigest(obligations []domain.Obligation) string {
	type digest struct {
		Section            string   `json:"section"`
		Text               string   `json:"text"`
		Type               string   `json:"obligation_type"`
		Stakeholders       []string `json:"stakeholders,omitempty"`
		ImpactedSystems    []string `json:"impacted_systems,omitempty"`
		ImplementationType string   `json:"implementation_type,omitempty"`
		EstimatedEffort    string   `json:"estimated_effort,omitempty"`
		CommencementDate   string   `json:"commencement_date,omitempty"`
	}

	items := make([]digest, 0, len(obligations))
	for _, ob := range obligations {
		items = append(items, digest{
			Section:            ob.SectionNumber,
			Text:               ob.ExtractedText,
			Type:               string(ob.Type),
			Stakeholders:       ob.Stakeholders,
			ImpactedSystems:    ob.ImpactedSystems,
			ImplementationType: string(ob.ImplementationType),
			EstimatedEffort:    string(ob.EstimatedEffort),
			CommencementDate:   ob.CommencementDate,
		})
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		var sb strings.Builder
		for _, ob := range obligations {
			fmt.Fprintf(&sb, "- [%s] %s\n", ob.SectionNumber, ob.ExtractedText)
		}
		return sb.String()
	}
	return string(data)
}
