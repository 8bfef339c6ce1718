package database

import (
	"context"
	"encoding/json"
	"fmt"

	"credit-decision-engine/internal/models"
)

// DefaultListLimit caps history listings when the caller does not specify
// a limit.
const DefaultListLimit = 100

// HistoryRepository appends decided applications to the decision_history
// table and reads them back, newest first. The log is insert-only.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts one decision record.
func (r *HistoryRepository) Append(ctx context.Context, record *models.DecisionRecord) error {
	profileJSON, err := json.Marshal(record.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile snapshot: %w", err)
	}

	reasons := record.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	query := `
		INSERT INTO decision_history (id, session_id, profile, outcome, reasons, policy, mode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.SessionID,
		profileJSON,
		string(record.Outcome),
		reasons,
		record.Policy,
		record.Mode,
		record.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append decision record: %w", err)
	}

	return nil
}

// List returns the most recent decision records, newest first.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]models.DecisionRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, session_id, profile, outcome, reasons, policy, mode, created_at
		FROM decision_history
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list decision records: %w", err)
	}
	defer rows.Close()

	var records []models.DecisionRecord
	for rows.Next() {
		var record models.DecisionRecord
		var profileJSON []byte

		if err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&profileJSON,
			&record.Outcome,
			&record.Reasons,
			&record.Policy,
			&record.Mode,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan decision record: %w", err)
		}

		if err := json.Unmarshal(profileJSON, &record.Profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile snapshot: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read decision records: %w", err)
	}

	return records, nil
}

// Count returns the number of decided applications in the log.
func (r *HistoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM decision_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count decision records: %w", err)
	}
	return count, nil
}
