package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/common"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
	processor "github.com/joseph-ayodele/nutrilabel/internal/pipeline"
	"github.com/joseph-ayodele/nutrilabel/internal/repository"
)

type ExtractNutritionParams struct {
	Text      string  `json:"text" description:"OCR text of the nutrition label"`
	Country   string  `json:"country,omitempty" description:"Label region: US, UK, EU or CA"`
	Baseline  float64 `json:"baseline,omitempty" description:"Fasting glucose in mg/dL (50-400) for a projected curve"`
	PreferLLM bool    `json:"prefer_llm,omitempty" description:"Use the language model extractor when configured"`
}

type ComputeImpactParams struct {
	Nutrition nutrition.Record `json:"nutrition" description:"Per-serving nutrition values"`
	Baseline  float64          `json:"baseline,omitempty" description:"Fasting glucose in mg/dL (50-400)"`
}

type ListScansParams struct {
	Country string `json:"country,omitempty" description:"Only scans of this region"`
	Limit   int    `json:"limit,omitempty" description:"Maximum number of scans to return"`
}

// extractParams decodes the request arguments into target via JSON.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	b, err := json.Marshal(req.Arguments)
	if err != nil {
		return common.NewAppError("INVALID_ARGUMENTS", err.Error(), common.ErrInvalidInput)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return common.NewAppError("INVALID_ARGUMENTS", err.Error(), common.ErrInvalidInput)
	}
	return nil
}

func parseCountry(raw string) (constants.Region, error) {
	if raw == "" {
		return "", nil
	}
	r, ok := constants.ParseRegion(raw)
	if !ok {
		return "", common.NewAppError("INVALID_REGION", fmt.Sprintf("unknown country %q", raw), common.ErrInvalidInput)
	}
	return r, nil
}

func (s *ToolServer) handleExtractNutrition(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ExtractNutritionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	region, err := parseCountry(params.Country)
	if err != nil {
		return nil, err
	}
	res, err := s.proc.Analyze(ctx, processor.AnalyzeRequest{
		Text:      params.Text,
		Region:    region,
		PreferLLM: params.PreferLLM,
		Baseline:  params.Baseline,
	})
	if err != nil {
		return nil, err
	}
	return createJSONResponse(res)
}

func (s *ToolServer) handleComputeImpact(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ComputeImpactParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	res, err := s.proc.ComputeManual(ctx, params.Nutrition, params.Baseline)
	if err != nil {
		return nil, err
	}
	return createJSONResponse(map[string]any{
		"scanId":    res.ScanID,
		"impact":    res.Impact,
		"metrics":   res.Metrics,
		"projected": res.Projection,
	})
}

func (s *ToolServer) handleListScans(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ListScansParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	region, err := parseCountry(params.Country)
	if err != nil {
		return nil, err
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}
	scans, err := s.scans.List(ctx, repository.ListFilter{Region: region, Limit: params.Limit})
	if err != nil {
		return nil, err
	}
	if scans == nil {
		scans = []*repository.Scan{}
	}
	return createJSONResponse(scans)
}

func createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(b),
			},
		},
	}, nil
}
