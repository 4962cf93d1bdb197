package ingest

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/async"
)

// Candidate is one label file found under a root directory.
type Candidate struct {
	Path     string
	FileType string // "IMAGE" | "TXT"
	Size     int64
	HashHex  string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned    uint32
	Matched    uint32
	Duplicates uint32
	Failed     uint32
}

// Submit enqueues every candidate and returns how many were accepted.
func Submit(ctx context.Context, q async.Queue, cands []Candidate, region constants.Region, preferLLM bool) (int, error) {
	n := 0
	for _, c := range cands {
		job := async.Job{Path: c.Path, Region: region, PreferLLM: preferLLM, TraceID: c.HashHex}
		if err := q.Enqueue(ctx, job); err != nil {
			return n, fmt.Errorf("enqueue %s: %w", c.Path, err)
		}
		n++
	}
	return n, nil
}
