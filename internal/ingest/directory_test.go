package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/async"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cereal.PNG"), "png-bytes-1")
	writeFile(t, filepath.Join(root, "bread.txt"), "energy 105 kcal")
	writeFile(t, filepath.Join(root, "nested", "yogurt.jpg"), "jpg-bytes")
	writeFile(t, filepath.Join(root, "nested", "copy-of-cereal.png"), "png-bytes-1")
	writeFile(t, filepath.Join(root, "notes.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, ".hidden.png"), "png-bytes-2")
	writeFile(t, filepath.Join(root, ".cache", "x.png"), "png-bytes-3")

	cands, stats, err := ScanDirectory(root, true, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	var names []string
	for _, c := range cands {
		names = append(names, filepath.Base(c.Path))
	}
	sort.Strings(names)
	want := []string{"bread.txt", "cereal.PNG", "yogurt.jpg"}
	if len(names) != len(want) {
		t.Fatalf("candidates = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", names, want)
		}
	}
	if stats.Matched != 4 || stats.Duplicates != 1 || stats.Scanned != 5 {
		t.Errorf("stats = %+v", stats)
	}
	for _, c := range cands {
		if filepath.Base(c.Path) == "bread.txt" && c.FileType != "TXT" {
			t.Errorf("bread.txt type = %s", c.FileType)
		}
		if c.HashHex == "" || c.Size == 0 {
			t.Errorf("candidate missing hash/size: %+v", c)
		}
	}
}

func TestScanDirectoryIncludesHiddenWhenAsked(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden.png"), "png")
	cands, _, err := ScanDirectory(root, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("candidates = %d, want 1", len(cands))
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	if _, _, err := ScanDirectory(" ", true, nil); err == nil {
		t.Error("blank root should fail")
	}
	if _, _, err := ScanDirectory(filepath.Join(t.TempDir(), "missing"), true, nil); err == nil {
		t.Error("missing root should fail")
	}
}

type recordingQueue struct {
	jobs []async.Job
	fail bool
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	if q.fail {
		return async.ErrQueueClosed
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

func TestSubmit(t *testing.T) {
	cands := []Candidate{{Path: "a.png", HashHex: "aa"}, {Path: "b.txt", HashHex: "bb"}}
	q := &recordingQueue{}
	n, err := Submit(context.Background(), q, cands, constants.RegionUK, true)
	if err != nil || n != 2 {
		t.Fatalf("submit = %d, %v", n, err)
	}
	if q.jobs[1].Path != "b.txt" || q.jobs[1].Region != constants.RegionUK || !q.jobs[1].PreferLLM || q.jobs[1].TraceID != "bb" {
		t.Errorf("job = %+v", q.jobs[1])
	}

	if _, err := Submit(context.Background(), &recordingQueue{fail: true}, cands, constants.RegionUS, false); !errors.Is(err, async.ErrQueueClosed) {
		t.Errorf("err = %v", err)
	}
}
