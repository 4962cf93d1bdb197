package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/nutrilabel/constants"
)

// Job is one label file waiting to be analyzed.
type Job struct {
	Path        string
	Region      constants.Region
	PreferLLM   bool
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
