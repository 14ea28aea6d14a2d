package storage

import (
	"context"

	"multiping/internal/storage/models"
)

// Storage persists the history of monitoring sessions
type Storage interface {
	// Session operations
	CreateSession(ctx context.Context, session *models.Session) error
	UpdateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]*models.Session, error)
	// PruneSessions keeps the newest keep sessions and deletes the rest
	PruneSessions(ctx context.Context, keep int) (int64, error)

	// Close closes the storage connection
	Close() error
}

// SessionFilter narrows ListSessions
type SessionFilter struct {
	Host  string // exact match, empty for all hosts
	Limit int    // 0 for no limit
}
