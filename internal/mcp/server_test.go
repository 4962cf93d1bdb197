package mcp

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	processor "github.com/joseph-ayodele/nutrilabel/internal/pipeline"
)

const juiceLabel = "Nutrition Facts\nServing Size 1 cup (240ml)\nCalories 90\nTotal Fat 0g 0%\nTotal Carbohydrate 22g 7%\nDietary Fiber 2g 8%\nSugars 19g\nProtein 1g"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc := processor.NewProcessor(logger, nil, nil, nil)
	ts := httptest.NewServer(NewToolServer(proc, nil, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func callTool(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	var envelope struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(envelope.Content) != 1 || envelope.Content[0].Type != "text" {
		t.Fatalf("unexpected content: %+v", envelope.Content)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(envelope.Content[0].Text), &out); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return resp, out
}

func TestExtractNutritionTool(t *testing.T) {
	ts := newTestServer(t)
	body, _ := json.Marshal(map[string]any{
		"name":      "extract_nutrition",
		"arguments": map[string]any{"text": juiceLabel, "country": "US", "baseline": 90},
	})
	_, out := callTool(t, ts, string(body))
	n, _ := out["nutrition"].(map[string]any)
	if n["calories"] != 90.0 || n["sugars"] != 19.0 {
		t.Fatalf("nutrition = %v", n)
	}
	proj, _ := out["projected"].(map[string]any)
	if proj["status"] != "Normal" {
		t.Fatalf("projected = %v", proj)
	}
}

func TestComputeImpactTool(t *testing.T) {
	ts := newTestServer(t)
	_, out := callTool(t, ts, `{"name":"compute_impact","arguments":{"nutrition":{"totalCarbs":5,"sugars":1}}}`)
	impact, _ := out["impact"].(map[string]any)
	if impact["overallImpact"] != "Low" {
		t.Fatalf("impact = %v", impact)
	}
	if _, ok := out["projected"]; ok && out["projected"] != nil {
		t.Fatalf("no baseline should give no projection, got %v", out["projected"])
	}

	resp, _ := callTool(t, ts, `{"name":"compute_impact","arguments":{"nutrition":{"fat":-1}}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative fat status = %d", resp.StatusCode)
	}
}

func TestToolErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown tool", `{"name":"nope","arguments":{}}`, http.StatusNotFound},
		{"list without history", `{"name":"list_scans","arguments":{}}`, http.StatusNotFound},
		{"bad json", `{`, http.StatusBadRequest},
		{"empty text", `{"name":"extract_nutrition","arguments":{"text":""}}`, http.StatusBadRequest},
		{"bad country", `{"name":"extract_nutrition","arguments":{"text":"x","country":"mars"}}`, http.StatusBadRequest},
		{"bad baseline", `{"name":"extract_nutrition","arguments":{"text":"x","baseline":10}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := callTool(t, ts, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d; want %d", resp.StatusCode, tt.want)
			}
		})
	}

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}
}

func TestTools(t *testing.T) {
	s := NewToolServer(processor.NewProcessor(nil, nil, nil, nil), nil, nil)
	got := strings.Join(s.Tools(), ",")
	if got != "compute_impact,extract_nutrition" {
		t.Fatalf("Tools() = %s", got)
	}
}
