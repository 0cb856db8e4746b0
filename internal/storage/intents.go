package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/engenium/intentd/internal/common"
	"github.com/engenium/intentd/internal/model"
)

// IntentFilter defines filtering options for intent record queries.
type IntentFilter struct {
	Labeled    *bool
	Domain     string
	ActionText string
}

// SaveIntents inserts scraped action records. Ingestion is normally done by
// the external JSONL loader; this is the insert used to seed stores in tests
// and fixtures.
func (s *SQLiteStore) SaveIntents(ctx context.Context, records []model.IntentRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIntents(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO intents (
			domain, url, page_title, action_text,
			bm25_score, confidence_score, label_source, inferred_intent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			record.Domain,
			record.URL,
			record.PageTitle,
			record.ActionText,
			nullableFloat(record.RelevanceScore),
			nullableFloat(record.ConfidenceScore),
			nullableLabel(record.LabelSource),
			nullableText(record.InferredIntent),
		)
		if err != nil {
			return fmt.Errorf("failed to insert intent record: %w", err)
		}
	}

	return tx.Commit()
}

// GetUnlabeledIntents returns all records that do not yet carry an inferred
// intent, in store order.
func (s *SQLiteStore) GetUnlabeledIntents(ctx context.Context) ([]model.IntentRecord, error) {
	unlabeled := false
	return s.GetIntents(ctx, IntentFilter{Labeled: &unlabeled})
}

// GetIntents returns all records matching the filter.
func (s *SQLiteStore) GetIntents(ctx context.Context, filter IntentFilter) ([]model.IntentRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, domain, url, page_title, action_text,
		       bm25_score, confidence_score, label_source, inferred_intent
		FROM intents
	`
	var conditions []string
	var args []any

	if filter.Domain != "" {
		conditions = append(conditions, "domain = ?")
		args = append(args, filter.Domain)
	}
	if filter.ActionText != "" {
		conditions = append(conditions, "action_text = ?")
		args = append(args, filter.ActionText)
	}
	if filter.Labeled != nil {
		if *filter.Labeled {
			conditions = append(conditions, "inferred_intent IS NOT NULL")
		} else {
			conditions = append(conditions, "inferred_intent IS NULL")
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query intents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.IntentRecord
	for rows.Next() {
		record, scanErr := scanIntent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate intents: %w", err)
	}

	return records, nil
}

// GetIntentByID returns a single record by id.
func (s *SQLiteStore) GetIntentByID(ctx context.Context, id int64) (*model.IntentRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, domain, url, page_title, action_text,
		       bm25_score, confidence_score, label_source, inferred_intent
		FROM intents WHERE id = ?
	`, id)

	record, err := scanIntent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: intent record %d", common.ErrNotFound, id)
		}
		return nil, err
	}

	return &record, nil
}

// UpdateIntentLabel sets inferred_intent and label_source for a single
// record in one statement. An already-labeled record is never overwritten;
// attempting to do so returns ErrAlreadyLabeled.
func (s *SQLiteStore) UpdateIntentLabel(ctx context.Context, id int64, intent string, source model.LabelSource) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(intent, "intent"); err != nil {
		return err
	}
	if source == model.LabelSourceUnset {
		return fmt.Errorf("%w: label source", ErrEmptyString)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE intents SET inferred_intent = ?, label_source = ?
		WHERE id = ? AND inferred_intent IS NULL
	`, intent, string(source), id)
	if err != nil {
		return fmt.Errorf("failed to update intent label: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// Distinguish a missing record from a monotonicity violation.
	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM intents WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to look up intent record: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: intent record %d", common.ErrNotFound, id)
	}
	return fmt.Errorf("%w: intent record %d", common.ErrAlreadyLabeled, id)
}

// CountUnlabeled returns how many records still await a label.
func (s *SQLiteStore) CountUnlabeled(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM intents WHERE inferred_intent IS NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unlabeled intents: %w", err)
	}
	return count, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanIntent(row scanner) (model.IntentRecord, error) {
	var record model.IntentRecord
	var relevance, confidence sql.NullFloat64
	var labelSource, inferredIntent sql.NullString

	err := row.Scan(
		&record.ID,
		&record.Domain,
		&record.URL,
		&record.PageTitle,
		&record.ActionText,
		&relevance,
		&confidence,
		&labelSource,
		&inferredIntent,
	)
	if err != nil {
		return model.IntentRecord{}, fmt.Errorf("failed to scan intent record: %w", err)
	}

	if relevance.Valid {
		record.RelevanceScore = &relevance.Float64
	}
	if confidence.Valid {
		record.ConfidenceScore = &confidence.Float64
	}
	if labelSource.Valid {
		record.LabelSource = model.LabelSource(labelSource.String)
	}
	if inferredIntent.Valid {
		record.InferredIntent = inferredIntent.String
	}

	return record, nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableLabel(source model.LabelSource) any {
	if source == model.LabelSourceUnset {
		return nil
	}
	return string(source)
}
