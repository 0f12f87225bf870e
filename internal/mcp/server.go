// ABOUTME: MCP server initialization and configuration
// ABOUTME: Exposes the tracker lifecycle, fix store and settings to AI agents

package mcp

import (
	"context"
	"fmt"

	"github.com/harper/fixtrack/internal/settings"
	"github.com/harper/fixtrack/internal/storage"
	"github.com/harper/fixtrack/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Preferences is the writable settings surface the tools need.
type Preferences interface {
	settings.Provider
	SetInterval(seconds int) error
	SetNotifyEnabled(enabled bool) error
}

// Server wraps an MCP server around a tracker controller.
type Server struct {
	mcp   *mcp.Server
	ctrl  *tracker.Controller
	store storage.FixRepository
	prefs Preferences
}

// NewServer creates MCP server with all capabilities.
func NewServer(ctrl *tracker.Controller, store storage.FixRepository, prefs Preferences) (*Server, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("tracker controller is required")
	}
	if store == nil {
		return nil, fmt.Errorf("fix store is required")
	}
	if prefs == nil {
		return nil, fmt.Errorf("settings are required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fixtrack",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:   mcpServer,
		ctrl:  ctrl,
		store: store,
		prefs: prefs,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
