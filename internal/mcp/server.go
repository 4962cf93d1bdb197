// Package mcp exposes the label pipeline as MCP tools over a plain HTTP
// endpoint that accepts tools/call requests.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/nutrilabel/internal/common"
	processor "github.com/joseph-ayodele/nutrilabel/internal/pipeline"
	"github.com/joseph-ayodele/nutrilabel/internal/repository"
)

// MaxRequestBytes caps a tools/call body.
const MaxRequestBytes = 1 << 20

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// ToolServer serves the label tools. scans may be nil, which drops list_scans.
type ToolServer struct {
	proc   *processor.Processor
	scans  repository.ScanRepository
	logger *slog.Logger
	tools  map[string]toolHandler
}

func NewToolServer(proc *processor.Processor, scans repository.ScanRepository, logger *slog.Logger) *ToolServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ToolServer{proc: proc, scans: scans, logger: logger}
	s.tools = map[string]toolHandler{
		"extract_nutrition": s.handleExtractNutrition,
		"compute_impact":    s.handleComputeImpact,
	}
	if scans != nil {
		s.tools["list_scans"] = s.handleListScans
	}
	return s
}

// Tools returns the registered tool names, sorted.
func (s *ToolServer) Tools() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler returns the HTTP handler for tool calls.
func (s *ToolServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHTTP)
	return mux
}

func (s *ToolServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	var req protocol.CallToolRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[req.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", req.Name), http.StatusNotFound)
		return
	}

	start := time.Now()
	result, err := handler(r.Context(), &req)
	if err != nil {
		s.logger.Warn("mcp.tool.failed", "tool", req.Name, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	s.logger.Info("mcp.tool.ok", "tool", req.Name, "elapsed_ms", time.Since(start).Milliseconds())

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("mcp.encode.failed", "error", err)
	}
}

// Serve runs the endpoint on addr until ctx is cancelled.
func (s *ToolServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mcp endpoint listening", "addr", addr, "tools", s.Tools())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// httpStatus maps the application error taxonomy onto HTTP codes.
func httpStatus(err error) int {
	switch status.Code(common.ToStatus(err)) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
