package app

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type session struct {
	id      string
	started time.Time
	logger  *slog.Logger
}

func newSession() *session {
	id := uuid.NewString()
	return &session{
		id:      id,
		started: time.Now(),
		logger:  slog.With("run_id", id),
	}
}

func (s *session) elapsed() time.Duration {
	return time.Since(s.started).Round(time.Millisecond)
}
