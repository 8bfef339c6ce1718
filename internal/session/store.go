package session

import (
	"context"
)

// Store persists application sessions. Implementations return
// models.ErrSessionNotFound for unknown ids.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
