package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joseph-ayodele/nutrilabel/constants"
	processor "github.com/joseph-ayodele/nutrilabel/internal/pipeline"
)

type countingAnalyzer struct {
	calls atomic.Int32
	fail  string
	delay time.Duration
}

func (a *countingAnalyzer) Analyze(ctx context.Context, req processor.AnalyzeRequest) (processor.Result, error) {
	a.calls.Add(1)
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return processor.Result{}, ctx.Err()
		}
	}
	if req.ImagePath == a.fail {
		return processor.Result{}, errors.New("ocr failed")
	}
	return processor.Result{ExtractionMethod: constants.MethodRules}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessorQueueDrainsAllJobs(t *testing.T) {
	a := &countingAnalyzer{fail: "bad.png"}
	var (
		mu     sync.Mutex
		failed []string
		done   int
	)
	q := NewProcessorQueue(a, quietLogger(),
		WithWorkers(3),
		WithQueueSize(2),
		WithResultHandler(func(job Job, _ processor.Result, err error) {
			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				failed = append(failed, job.Path)
			}
		}),
	)

	paths := []string{"a.png", "b.png", "bad.png", "c.txt", "d.jpg", "e.png", "f.png"}
	for _, p := range paths {
		if err := q.Enqueue(context.Background(), Job{Path: p, Region: constants.RegionUS}); err != nil {
			t.Fatalf("enqueue %s: %v", p, err)
		}
	}
	q.Shutdown(context.Background())

	if got := int(a.calls.Load()); got != len(paths) {
		t.Fatalf("analyzed %d jobs, want %d", got, len(paths))
	}
	mu.Lock()
	defer mu.Unlock()
	if done != len(paths) {
		t.Errorf("handler saw %d jobs", done)
	}
	if len(failed) != 1 || failed[0] != "bad.png" {
		t.Errorf("failed = %v", failed)
	}
}

func TestProcessorQueueRejectsAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&countingAnalyzer{}, quietLogger(), WithWorkers(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background()) // idempotent

	if err := q.Enqueue(context.Background(), Job{Path: "late.png"}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestProcessorQueueEnqueueHonoursContext(t *testing.T) {
	a := &countingAnalyzer{delay: 200 * time.Millisecond}
	q := NewProcessorQueue(a, quietLogger(), WithWorkers(1), WithQueueSize(1))
	defer q.Shutdown(context.Background())

	// one job in flight, one buffered; the third must wait
	_ = q.Enqueue(context.Background(), Job{Path: "1.png"})
	time.Sleep(20 * time.Millisecond)
	_ = q.Enqueue(context.Background(), Job{Path: "2.png"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, Job{Path: "3.png"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestProcessorQueueTimeout(t *testing.T) {
	a := &countingAnalyzer{delay: time.Second}
	var gotErr atomic.Value
	q := NewProcessorQueue(a, quietLogger(),
		WithWorkers(1),
		WithProcessTimeout(10*time.Millisecond),
		WithResultHandler(func(_ Job, _ processor.Result, err error) {
			if err != nil {
				gotErr.Store(err)
			}
		}),
	)
	_ = q.Enqueue(context.Background(), Job{Path: "slow.png"})
	q.Shutdown(context.Background())

	err, _ := gotErr.Load().(error)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}
