// Package history defines the append-only log of decided applications.
package history

import (
	"context"

	"credit-decision-engine/internal/models"
)

// Store is the append-only decision log. Postgres backs it in normal
// deployments; the in-memory store covers demo mode and tests. Records
// are never updated or removed.
type Store interface {
	Append(ctx context.Context, record *models.DecisionRecord) error
	List(ctx context.Context, limit int) ([]models.DecisionRecord, error)
	Count(ctx context.Context) (int64, error)
}
