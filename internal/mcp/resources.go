// ABOUTME: MCP resource definitions
// ABOUTME: Provides read-only tracker views for AI agents

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	statusURI = "fixtrack://status"
	recentURI = "fixtrack://fixes/recent"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        statusURI,
		Description: "Tracker state, interval, last error and latest fix",
		URI:         statusURI,
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.mcp.AddResource(&mcp.Resource{
		Name:        recentURI,
		Description: "The most recent recorded fixes, newest first",
		URI:         recentURI,
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

func (s *Server) handleStatusResource(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if err := s.ctrl.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh: %w", err)
	}
	return jsonResource(statusURI, newStatusOutput(s.ctrl.Snapshot())), nil
}

func (s *Server) handleRecentResource(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	fixes, err := s.ctrl.Get(ctx, defaultListLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixes: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count fixes: %w", err)
	}

	outputs := make([]FixOutput, len(fixes))
	for i, fix := range fixes {
		outputs[i] = newFixOutput(fix)
	}
	return jsonResource(recentURI, ListFixesOutput{Fixes: outputs, Count: len(outputs), Total: total}), nil
}

func jsonResource(uri string, output any) *mcp.ReadResourceResult {
	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}
}
