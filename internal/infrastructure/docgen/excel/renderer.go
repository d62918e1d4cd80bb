// Package excel renders deliverable trees into xlsx workbooks.
package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/oblicore/oblicore/internal/core/domain"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) RenderRTM(rtm domain.RTM) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return nil, err
	}

	if err := writeSheet(f, headerStyle, "Document Control", [][]any{
		{"Field", "Value"},
		{"Initiative Name", rtm.DocumentControl.InitiativeName},
		{"Primary Driver", rtm.DocumentControl.PrimaryDriver},
		{"Primary Objective", rtm.DocumentControl.PrimaryObjective},
		{"Scope Area", rtm.DocumentControl.ScopeArea},
		{"Impacted Parties", strings.Join(rtm.DocumentControl.ImpactedParties, ", ")},
		{"Target Jurisdiction", rtm.DocumentControl.TargetJurisdiction},
		{"Commencement Date", rtm.DocumentControl.CommencementDate},
		{"Version", rtm.DocumentControl.Version},
	}); err != nil {
		return nil, err
	}

	interpretations := [][]any{{
		"Req ID", "Reg Document", "Effective Date", "Clause", "Verbatim Text",
		"Summary", "Applies To", "Applies When", "In Scope", "Interpretation Notes",
	}}
	for _, it := range rtm.Interpretations {
		interpretations = append(interpretations, []any{
			it.ReqID, it.RegDocument, it.RegEffectiveDate, it.RegClause, it.Verbatim,
			it.Summary, it.AppliesTo, it.AppliesWhen, yesNo(it.InScope), it.InterpretationNotes,
		})
	}
	if err := writeSheet(f, headerStyle, "Interpretation", interpretations); err != nil {
		return nil, err
	}

	requirements := [][]any{{
		"Bus Req ID", "Linked Req ID", "Effective Date", "Business Requirement",
		"System Requirement", "Default Behaviour", "Intended Outcome", "Chargeable",
	}}
	for _, req := range rtm.Requirements {
		requirements = append(requirements, []any{
			req.BusReqID, req.LinkedReqID, req.RegEffectiveDate, req.BusinessRequirement,
			req.SystemRequirement, req.DefaultBehaviour, req.IntendedOutcome, yesNo(req.Chargeable),
		})
	}
	if err := writeSheet(f, headerStyle, "Requirements", requirements); err != nil {
		return nil, err
	}

	assumptions := [][]any{{
		"RAD ID", "Type", "Detail", "Impact", "Mitigation", "Owner", "Due Date", "Status",
	}}
	for _, a := range rtm.Assumptions {
		assumptions = append(assumptions, []any{
			a.RadID, a.Type, a.Detail, a.Impact, a.Mitigation, a.Owner, a.DueDate, a.Status,
		})
	}
	if err := writeSheet(f, headerStyle, "RAID", assumptions); err != nil {
		return nil, err
	}

	return finish(f)
}

func (r *Renderer) RenderFunctionalSpec(spec domain.FunctionalSpec) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return nil, err
	}

	if err := writeSheet(f, headerStyle, "Overview", [][]any{
		{"Field", "Value"},
		{"Regulatory Driver", spec.Overview.RegulatoryDriver},
		{"Effective Date", spec.Overview.EffectiveDate},
		{"Impacted Participants", strings.Join(spec.Overview.ImpactedParticipants, ", ")},
		{"Compliance Risk", spec.Overview.ComplianceRisk},
		{"Complexity Level", spec.ComplexityLevel},
		{"Complexity Reason", spec.ComplexityReason},
		{"Traceability Statement", spec.TraceabilityStatement},
	}); err != nil {
		return nil, err
	}

	sources := [][]any{{"Source", "Clause", "Obligation Summary", "Confidence"}}
	for _, s := range spec.SourceRegister {
		sources = append(sources, []any{s.Source, s.Clause, s.ObligationSummary, s.Confidence})
	}
	if err := writeSheet(f, headerStyle, "Source Register", sources); err != nil {
		return nil, err
	}

	requirements := [][]any{{"ID", "Requirement", "Classification", "Source", "Notes"}}
	for _, req := range spec.FunctionalRequirements {
		requirements = append(requirements, []any{req.ID, req.Requirement, req.Classification, req.Source, req.Notes})
	}
	if err := writeSheet(f, headerStyle, "Functional Requirements", requirements); err != nil {
		return nil, err
	}

	rules := [][]any{{"Rule ID", "Rule", "Source", "Classification"}}
	for _, rule := range spec.BusinessRules {
		rules = append(rules, []any{rule.RuleID, rule.Rule, rule.Source, rule.Classification})
	}
	if err := writeSheet(f, headerStyle, "Business Rules", rules); err != nil {
		return nil, err
	}

	risks := [][]any{{"Type", "Description", "Impact", "Mitigation"}}
	for _, risk := range spec.Risks {
		risks = append(risks, []any{risk.Type, risk.Description, risk.Impact, risk.Mitigation})
	}
	if err := writeSheet(f, headerStyle, "Risks", risks); err != nil {
		return nil, err
	}

	assumptions := [][]any{{"Assumption ID", "Assumption", "Impact", "Validation Required"}}
	for _, a := range spec.Assumptions {
		assumptions = append(assumptions, []any{a.AssumptionID, a.Assumption, a.Impact, a.ValidationRequired})
	}
	if err := writeSheet(f, headerStyle, "Assumptions", assumptions); err != nil {
		return nil, err
	}

	return finish(f)
}

func newHeaderStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}
	return style, nil
}

func writeSheet(f *excelize.File, headerStyle int, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+1, name, err)
		}
	}
	if len(rows) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style header of %q: %w", name, err)
		}
		lastCol, err := excelize.ColumnNumberToName(len(rows[0]))
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(name, "A", lastCol, 28); err != nil {
			return fmt.Errorf("set column width of %q: %w", name, err)
		}
	}
	return nil
}

func finish(f *excelize.File) ([]byte, error) {
	// The default sheet is replaced by the named ones.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
