package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type stubRunner struct {
	stdout map[bool]string // keyed by tsv mode
	err    error
	calls  [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if s.err != nil {
		return nil, []byte("boom"), s.err
	}
	tsv := len(args) > 0 && args[len(args)-1] == "tsv"
	return []byte(s.stdout[tsv]), nil, nil
}

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tCalories\n" +
	"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t70\t90\n"

func TestExtractImage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "label.png")
	if err := os.WriteFile(img, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}
	r := &stubRunner{stdout: map[bool]string{
		false: "Nutrition Facts\nCalories 90\nProtein 1g\n",
		true:  sampleTSV,
	}}
	e := NewExtractor(Config{EnableTSVConfidence: true, PSM: 6}, nil).WithRunner(r)

	res, err := e.Extract(context.Background(), img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "nutrition facts\ncalories 90\nprotein 1g" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.SourceType != "IMAGE" || res.Method != "image-ocr" {
		t.Fatalf("unexpected source %s/%s", res.SourceType, res.Method)
	}
	if len(r.calls) != 2 {
		t.Fatalf("expected 2 tesseract calls, got %d", len(r.calls))
	}
	if !strings.Contains(strings.Join(r.calls[0], " "), "--psm 6") {
		t.Fatalf("psm flag missing: %v", r.calls[0])
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", res.Confidence)
	}
}

func TestExtractImageRunnerError(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "label.jpg")
	_ = os.WriteFile(img, []byte("jpg"), 0o600)

	e := NewExtractor(Config{}, nil).WithRunner(&stubRunner{err: errors.New("exit 1")})
	if _, err := e.Extract(context.Background(), img); err == nil {
		t.Fatal("expected error from failing tesseract")
	}
}

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "label.txt")
	_ = os.WriteFile(p, []byte("Calories  90\r\nSugars 19g"), 0o600)

	res, err := NewExtractor(Config{}, nil).Extract(context.Background(), p)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "calories 90\nsugars 19g" || res.SourceType != "TXT" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExtractUnsupported(t *testing.T) {
	if _, err := NewExtractor(Config{}, nil).Extract(context.Background(), "x.pdf"); err == nil {
		t.Fatal("expected unsupported extension error")
	}
}

func TestMeanTSVConfidence(t *testing.T) {
	if got := meanTSVConfidence(sampleTSV); got < 0.79 || got > 0.81 {
		t.Fatalf("meanTSVConfidence = %v; want 0.8", got)
	}
	if got := meanTSVConfidence(""); got != 0 {
		t.Fatalf("empty tsv = %v", got)
	}
}

func TestHeuristicConfidence(t *testing.T) {
	label := "nutrition facts\nserving size 1 cup\ncalories 90\ntotal fat 0g\ntotal carbohydrate 22g\nsugars 19g\nprotein 1g"
	if hi, lo := heuristicConfidence(label), heuristicConfidence("hello world"); hi <= lo {
		t.Fatalf("label text should score higher: %v <= %v", hi, lo)
	}
	if got := blendConfidence(0, 0.5); got != 0.5 {
		t.Fatalf("blend without ocr conf = %v", got)
	}
}
