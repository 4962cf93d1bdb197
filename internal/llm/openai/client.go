package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/nutrilabel/internal/llm"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("openai: api key not configured")

var _ llm.FieldExtractor = (*Client)(nil)

// ExtractNutrition implements llm.FieldExtractor using chat/completions.
// When Vision is enabled and OCR confidence is low, the label image rides along.
func (c *Client) ExtractNutrition(ctx context.Context, req llm.ExtractRequest) (llm.Fields, []byte, error) {
	if !c.Configured() {
		return llm.Fields{}, nil, ErrNotConfigured
	}
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.OCRText),
		"region", req.Region,
		"has_file_path", req.FilePath != "",
		"prep_confidence", req.PrepConfidence,
	)

	schema := llm.BuildNutritionJSONSchema()
	var userContent any = llm.BuildUserPrompt(req.OCRText)
	if c.cfg.Vision {
		if attach, dataURL, mt := llm.ShouldAttachImage(req); attach {
			c.log.Info("llm.extract.attach_image", "req_id", rid, "mime", mt)
			userContent = []map[string]any{
				{"type": "text", "text": userContent},
				{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
			}
		}
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": userContent},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, llm.BearerHeaders(c.cfg.APIKey), c.log)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Fields{}, nil, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Fields{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Fields{}, raw, fmt.Errorf("no choices in openai response")
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	content, err := c.validate(rid, content)
	if err != nil {
		return llm.Fields{}, content, err
	}

	var out llm.Fields
	if err := json.Unmarshal(content, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed", "req_id", rid, "error", err)
		return llm.Fields{}, content, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"serving_size", out.ServingSize,
		"calories", out.Calories,
		"total_carbs", out.TotalCarbs,
		"confidence", out.ModelConfidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

// validate checks content strictly, then once more after sanitizing when lenient.
func (c *Client) validate(rid string, content []byte) ([]byte, error) {
	err := llm.ValidateNutritionJSON(content)
	if err == nil {
		return content, nil
	}
	if !c.cfg.Lenient {
		c.log.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", err)
		return content, fmt.Errorf("schema validation failed: %w", err)
	}

	cleaned, changes, sErr := llm.NormalizeAndSanitizeJSON(content, c.log)
	if sErr != nil {
		c.log.Error("llm.extract.sanitize_failed", "req_id", rid, "error", sErr)
		return content, fmt.Errorf("sanitize failed: %w", sErr)
	}
	if vErr := llm.ValidateNutritionJSON(cleaned); vErr != nil {
		c.log.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", vErr)
		return cleaned, fmt.Errorf("schema validation failed: %w", vErr)
	}
	c.log.Warn("llm.extract.lenient_sanitize_applied", "req_id", rid, "changes", len(changes))
	return cleaned, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
