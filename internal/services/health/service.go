package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	db *sql.DB
}

// NewService constructs a new health service. A nil db reports the
// in-memory storage mode.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Status returns a simple health payload including storage reachability.
func (s *Service) Status() map[string]any {
	out := map[string]any{"ok": true, "storage": "memory"}
	if s.db == nil {
		return out
	}

	out["storage"] = "postgres"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		out["ok"] = false
		out["storage_error"] = err.Error()
	}
	return out
}
