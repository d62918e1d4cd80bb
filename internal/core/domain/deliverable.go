package domain

// Deliverable JSON trees handed to the renderer. The core's only obligation
// is producing well-formed trees matching these schemas; rendering itself is
// an external concern behind the DeliverableRenderer port.

type RTM struct {
	DocumentControl RTMDocumentControl `json:"document_control"`
	Interpretations []RTMInterpretation `json:"interpretations"`
	Requirements    []RTMRequirement    `json:"requirements"`
	Assumptions     []RTMAssumption     `json:"assumptions"`
}

type RTMDocumentControl struct {
	InitiativeName     string   `json:"initiative_name"`
	PrimaryDriver      string   `json:"primary_driver"`
	PrimaryObjective   string   `json:"primary_objective"`
	ScopeArea          string   `json:"scope_area"`
	ImpactedParties    []string `json:"impacted_parties"`
	TargetJurisdiction string   `json:"target_jurisdiction"`
	CommencementDate   string   `json:"commencement_date"`
	Version            string   `json:"version"`
}

type RTMInterpretation struct {
	ReqID               string `json:"req_id"`
	RegDocument         string `json:"reg_document"`
	RegEffectiveDate    string `json:"reg_effective_date"`
	RegClause           string `json:"reg_clause"`
	Verbatim            string `json:"verbatim"`
	Summary             string `json:"summary"`
	AppliesTo           string `json:"applies_to"`
	AppliesWhen         string `json:"applies_when"`
	InScope             bool   `json:"in_scope"`
	InterpretationNotes string `json:"interpretation_notes"`
}

type RTMRequirement struct {
	BusReqID            string `json:"bus_req_id"`
	LinkedReqID         string `json:"linked_req_id"`
	RegEffectiveDate    string `json:"reg_effective_date"`
	BusinessRequirement string `json:"business_requirement"`
	SystemRequirement   string `json:"system_requirement"`
	DefaultBehaviour    string `json:"default_behaviour"`
	IntendedOutcome     string `json:"intended_outcome"`
	Chargeable          bool   `json:"chargeable"`
}

type RTMAssumption struct {
	RadID      string `json:"rad_id"`
	Type       string `json:"type"`
	Detail     string `json:"detail"`
	Impact     string `json:"impact"`
	Mitigation string `json:"mitigation"`
	Owner      string `json:"owner"`
	DueDate    string `json:"due_date"`
	Status     string `json:"status"`
}

type FunctionalSpec struct {
	Overview               FuncSpecOverview      `json:"initiative_overview"`
	SourceRegister         []FuncSpecSource      `json:"regulatory_source_register"`
	FunctionalRequirements []FuncSpecRequirement `json:"functional_requirements"`
	BusinessRules          []FuncSpecRule        `json:"business_rules"`
	Risks                  []FuncSpecRisk        `json:"risks_and_ambiguities"`
	Assumptions            []FuncSpecAssumption  `json:"assumptions"`
	TraceabilityStatement  string                `json:"traceability_statement"`
	ComplexityLevel        string                `json:"complexity_level"`
	ComplexityReason       string                `json:"complexity_reason"`
}

type FuncSpecOverview struct {
	RegulatoryDriver     string   `json:"regulatory_driver"`
	EffectiveDate        string   `json:"effective_date"`
	ImpactedParticipants []string `json:"impacted_participants"`
	ComplianceRisk       string   `json:"compliance_risk"`
}

type FuncSpecSource struct {
	Source            string `json:"source"`
	Clause            string `json:"clause"`
	ObligationSummary string `json:"obligation_summary"`
	Confidence        string `json:"confidence"`
}

type FuncSpecRequirement struct {
	ID             string `json:"id"`
	Requirement    string `json:"requirement"`
	Classification string `json:"classification"`
	Source         string `json:"source"`
	Notes          string `json:"notes"`
}

type FuncSpecRule struct {
	RuleID         string `json:"rule_id"`
	Rule           string `json:"rule"`
	Source         string `json:"source"`
	Classification string `json:"classification"`
}

type FuncSpecRisk struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

type FuncSpecAssumption struct {
	AssumptionID       string `json:"assumption_id"`
	Assumption         string `json:"assumption"`
	Impact             string `json:"impact"`
	ValidationRequired string `json:"validation_required"`
}
