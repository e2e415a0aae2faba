package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job asks a worker to extract one stored document.
type Job struct {
	DocumentID  uuid.UUID
	Force       bool // enqueue even if the document is already in flight
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
