package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/oblicore/oblicore/internal/core/domain"
)

type ObligationRepository struct {
	db *sql.DB
}

func NewObligationRepository(db *sql.DB) *ObligationRepository {
	return &ObligationRepository{db: db}
}

func (r *ObligationRepository) BulkInsert(ctx context.Context, obligations []domain.Obligation) error {
	if len(obligations) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin obligations tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO obligations (
	id, document_id, extracted_text, context, section_number, page_number, keywords,
	obligation_type, confidence, stakeholders, impacted_systems, implementation_type,
	estimated_effort, commencement_date, commencement_date_text, date_confidence,
	classification_reasoning, stakeholder_reasoning, implementation_reasoning, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
`
	for _, ob := range obligations {
		keywordsJSON, err := json.Marshal(stringList(ob.Keywords))
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}
		stakeholdersJSON, err := json.Marshal(stringList(ob.Stakeholders))
		if err != nil {
			return fmt.Errorf("marshal stakeholders: %w", err)
		}
		systemsJSON, err := json.Marshal(stringList(ob.ImpactedSystems))
		if err != nil {
			return fmt.Errorf("marshal impacted systems: %w", err)
		}

		_, err = tx.ExecContext(ctx, query,
			ob.ID, ob.DocumentID, ob.ExtractedText, ob.Context, ob.SectionNumber, ob.PageNumber,
			keywordsJSON, string(ob.Type), ob.Confidence, stakeholdersJSON, systemsJSON,
			string(ob.ImplementationType), string(ob.EstimatedEffort), ob.CommencementDate,
			ob.CommencementDateText, string(ob.DateConfidence), ob.ClassificationReasoning,
			ob.StakeholderReasoning, ob.ImplementationReasoning, ob.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert obligation %s: %w", ob.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit obligations tx: %w", err)
	}
	return nil
}

func (r *ObligationRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Obligation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, extracted_text, context, section_number, page_number, keywords,
       obligation_type, confidence, stakeholders, impacted_systems, implementation_type,
       estimated_effort, commencement_date, commencement_date_text, date_confidence,
       classification_reasoning, stakeholder_reasoning, implementation_reasoning, created_at
FROM obligations
WHERE document_id = $1
ORDER BY section_number ASC, confidence DESC
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list obligations: %w", err)
	}
	defer rows.Close()

	var out []domain.Obligation
	for rows.Next() {
		var ob domain.Obligation
		var keywordsRaw, stakeholdersRaw, systemsRaw []byte
		var obType, implType, effort, dateConfidence string
		var contextText, sectionNumber, commencementDate, dateText sql.NullString
		var clsReasoning, stReasoning, implReasoning sql.NullString

		err := rows.Scan(
			&ob.ID, &ob.DocumentID, &ob.ExtractedText, &contextText, &sectionNumber, &ob.PageNumber,
			&keywordsRaw, &obType, &ob.Confidence, &stakeholdersRaw, &systemsRaw, &implType,
			&effort, &commencementDate, &dateText, &dateConfidence, &clsReasoning, &stReasoning,
			&implReasoning, &ob.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}

		if err := json.Unmarshal(keywordsRaw, &ob.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshal keywords: %w", err)
		}
		if err := json.Unmarshal(stakeholdersRaw, &ob.Stakeholders); err != nil {
			return nil, fmt.Errorf("unmarshal stakeholders: %w", err)
		}
		if err := json.Unmarshal(systemsRaw, &ob.ImpactedSystems); err != nil {
			return nil, fmt.Errorf("unmarshal impacted systems: %w", err)
		}
		ob.Type = domain.ObligationType(obType)
		ob.ImplementationType = domain.ImplementationType(implType)
		ob.EstimatedEffort = domain.EffortEstimate(effort)
		ob.DateConfidence = domain.DateConfidence(dateConfidence)
		ob.Context = contextText.String
		ob.SectionNumber = sectionNumber.String
		ob.CommencementDate = commencementDate.String
		ob.CommencementDateText = dateText.String
		ob.ClassificationReasoning = clsReasoning.String
		ob.StakeholderReasoning = stReasoning.String
		ob.ImplementationReasoning = implReasoning.String

		out = append(out, ob)
	}
	return out, rows.Err()
}

func (r *ObligationRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM obligations WHERE document_id = $1`, documentID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count obligations: %w", err)
	}
	return count, nil
}

func (r *ObligationRepository) SaveClassification(
	ctx context.Context,
	id string,
	cls domain.ClassificationResult,
	st domain.StakeholderResult,
	impl domain.ImplementationResult,
) error {
	stakeholdersJSON, err := json.Marshal(stringList(st.Stakeholders))
	if err != nil {
		return fmt.Errorf("marshal stakeholders: %w", err)
	}
	systemsJSON, err := json.Marshal(stringList(st.ImpactedSystems))
	if err != nil {
		return fmt.Errorf("marshal impacted systems: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
UPDATE obligations
SET obligation_type = $2, confidence = $3, stakeholders = $4, impacted_systems = $5,
    implementation_type = $6, estimated_effort = $7, commencement_date = $8,
    commencement_date_text = $9, date_confidence = $10, classification_reasoning = $11,
    stakeholder_reasoning = $12, implementation_reasoning = $13
WHERE id = $1
`,
		id, string(cls.Type), cls.Confidence, stakeholdersJSON, systemsJSON,
		string(impl.ImplementationType), string(impl.EstimatedEffort), impl.CommencementDate,
		impl.CommencementDateText, string(impl.DateConfidence), cls.Reasoning, st.Reasoning,
		impl.Reasoning,
	)
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return nil
}

func (r *ObligationRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM obligations WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("delete obligations: %w", err)
	}
	return nil
}

func stringList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
