package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/llm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chatServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		resp := map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestExtractNutritionStrict(t *testing.T) {
	var body map[string]any
	srv := chatServer(t, `{"servingSize":"44g (slice)","calories":105,"totalCarbs":20,"sugars":1.7,"fiber":1.2,"protein":3.4,"fat":0.7,"salt":0.4,"confidence":0.8}`, &body)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "m"}, quietLogger())
	f, raw, err := c.ExtractNutrition(context.Background(), llm.ExtractRequest{OCRText: "energy 105kcal", Region: constants.RegionUK})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(raw) == 0 {
		t.Error("raw JSON not returned")
	}
	if f.Calories != 105 || f.TotalCarbs != 20 || f.ServingSize != "44g (slice)" {
		t.Errorf("unexpected fields: %+v", f)
	}
	if body["model"] != "m" {
		t.Errorf("model = %v", body["model"])
	}
	rf, _ := body["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", body["response_format"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	sys, _ := msgs[0].(map[string]any)["content"].(string)
	if !strings.Contains(sys, "Label region: UK.") {
		t.Errorf("system prompt missing region: %s", sys)
	}
}

func TestExtractNutritionLenient(t *testing.T) {
	srv := chatServer(t, `{"servingSize":"1 cup","calories":"120 kcal","carbohydrates":22,"sugars":4,"fibre":3,"protein":5,"fat":2,"notes":"x"}`, nil)
	defer srv.Close()

	strict := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, quietLogger())
	if _, _, err := strict.ExtractNutrition(context.Background(), llm.ExtractRequest{OCRText: "x"}); err == nil {
		t.Fatal("strict client should reject non-conforming JSON")
	}

	lenient := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Lenient: true}, quietLogger())
	f, _, err := lenient.ExtractNutrition(context.Background(), llm.ExtractRequest{OCRText: "x"})
	if err != nil {
		t.Fatalf("lenient extract: %v", err)
	}
	if f.Calories != 120 || f.TotalCarbs != 22 || f.Fiber != 3 {
		t.Errorf("unexpected fields: %+v", f)
	}
}

func TestExtractNutritionHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, quietLogger())
	if _, _, err := c.ExtractNutrition(context.Background(), llm.ExtractRequest{OCRText: "x"}); err == nil {
		t.Fatal("expected error for 429")
	}
}

func TestExtractNutritionNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, quietLogger())
	if _, _, err := c.ExtractNutrition(context.Background(), llm.ExtractRequest{OCRText: "x"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestExtractNutritionNotConfigured(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c := NewClient(Config{}, quietLogger())
	if _, _, err := c.ExtractNutrition(context.Background(), llm.ExtractRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
