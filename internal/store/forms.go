package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type FormQuestion struct {
	QuestionID   int64  `json:"question_id"`
	QuestionText string `json:"question_text"`
	QuestionType string `json:"question_type"`
}

// QA is one answered question on an application, the shape the reporting
// layer shows on an application's detail view.
type QA struct {
	QuestionText  string    `json:"question_text"`
	QuestionType  string    `json:"question_type"`
	ResponseValue string    `json:"response_value"`
	ResponseData  string    `json:"response_data"`
	AnsweredAt    time.Time `json:"answered_at"`
}

// RecordFormResponse stores one answered form question against an
// application. Questions dedup on question_text: the same question asked by
// ten employers is one form_questions row with ten responses.
func (s *Store) RecordFormResponse(ctx context.Context, applicationID, questionText, questionType, value, extra string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM applications WHERE application_id = ?;`, applicationID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("application %s: %w", applicationID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check application %s: %w", applicationID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record response: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO form_questions (question_text, question_type) VALUES (?,?);`,
		questionText, questionType,
	); err != nil {
		return fmt.Errorf("upsert question: %w", err)
	}

	var questionID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT question_id FROM form_questions WHERE question_text = ?;`, questionText,
	).Scan(&questionID); err != nil {
		return fmt.Errorf("resolve question: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO form_responses (application_id, question_id, response_value, response_data, answered_at)
VALUES (?,?,?,?,?);`,
		applicationID, questionID, value, extra, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert response: %w", err)
	}

	return tx.Commit()
}

// ApplicationQA returns the answered questions for one application in the
// order they were answered.
func (s *Store) ApplicationQA(ctx context.Context, applicationID string) ([]QA, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT fq.question_text, fq.question_type, fr.response_value, fr.response_data, fr.answered_at
FROM form_responses fr
LEFT JOIN form_questions fq ON fr.question_id = fq.question_id
WHERE fr.application_id = ?
ORDER BY fr.answered_at;`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("application qa: %w", err)
	}
	defer rows.Close()

	var out []QA
	for rows.Next() {
		var qa QA
		var answeredAt string
		var text, typ sql.NullString
		if err := rows.Scan(&text, &typ, &qa.ResponseValue, &qa.ResponseData, &answeredAt); err != nil {
			return nil, err
		}
		qa.QuestionText = text.String
		qa.QuestionType = typ.String
		qa.AnsweredAt, _ = time.Parse(time.RFC3339, answeredAt)
		out = append(out, qa)
	}
	return out, rows.Err()
}
