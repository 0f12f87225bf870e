// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Lets AI agents drive tracking, read fixes and change settings

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/fixtrack/internal/models"
	"github.com/harper/fixtrack/internal/storage"
	"github.com/harper/fixtrack/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
	maxIntervalSecs  = 24 * 60 * 60
)

func (s *Server) registerTools() {
	s.registerStartTrackingTool()
	s.registerStopTrackingTool()
	s.registerRestartTrackingTool()
	s.registerGetStatusTool()
	s.registerListFixesTool()
	s.registerGetFixTool()
	s.registerGetLatestFixTool()
	s.registerUpdateFixTool()
	s.registerDeleteFixTool()
	s.registerGetSettingsTool()
	s.registerSetIntervalTool()
	s.registerSetNotifyTool()
}

// FixOutput is one stored fix.
type FixOutput struct {
	ID               int64     `json:"id"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Timestamp        int64     `json:"timestamp"`
	RecordedAt       time.Time `json:"recorded_at"`
	IsMoving         bool      `json:"is_moving"`
	NoMotionNotified bool      `json:"no_motion_notified"`
}

func newFixOutput(fix *models.Fix) FixOutput {
	return FixOutput{
		ID:               fix.ID,
		Latitude:         fix.Latitude,
		Longitude:        fix.Longitude,
		Timestamp:        fix.Timestamp,
		RecordedAt:       fix.Time().UTC(),
		IsMoving:         fix.IsMoving,
		NoMotionNotified: fix.NoMotionNotified,
	}
}

// StatusOutput describes the tracker.
type StatusOutput struct {
	State           string     `json:"state"`
	IsTracking      bool       `json:"is_tracking"`
	ResumePending   bool       `json:"resume_pending"`
	IntervalSeconds float64    `json:"interval_seconds,omitempty"`
	RunID           string     `json:"run_id,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	TotalCount      int        `json:"total_count"`
	Latest          *FixOutput `json:"latest,omitempty"`
}

func newStatusOutput(snap tracker.Snapshot) StatusOutput {
	out := StatusOutput{
		State:           snap.State.String(),
		IsTracking:      snap.IsTracking,
		ResumePending:   snap.ResumePending,
		IntervalSeconds: snap.Interval.Seconds(),
		RunID:           snap.RunID,
		LastError:       snap.LastError,
		TotalCount:      snap.TotalCount,
	}
	if len(snap.Fixes) > 0 {
		latest := newFixOutput(snap.Fixes[0])
		out.Latest = &latest
	}
	return out
}

// SettingsOutput reports the tracking settings.
type SettingsOutput struct {
	IntervalSeconds int  `json:"interval_seconds"`
	NotifyEnabled   bool `json:"notify_enabled"`
	Restarted       bool `json:"restarted,omitempty"`
}

func toolResult(output any) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

var emptySchema = map[string]interface{}{
	"type":       "object",
	"properties": map[string]interface{}{},
}

// EmptyInput is used by tools without arguments.
type EmptyInput struct{}

func (s *Server) registerStartTrackingTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "start_tracking",
		Description: "Start background location sampling. Does nothing if tracking is already running.",
		InputSchema: emptySchema,
	}, s.handleStartTracking)
}

func (s *Server) handleStartTracking(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StatusOutput, error) {
	if err := s.ctrl.Start(ctx); err != nil {
		return nil, StatusOutput{}, fmt.Errorf("failed to start tracking: %w", err)
	}
	output := newStatusOutput(s.ctrl.Snapshot())
	return toolResult(output), output, nil
}

func (s *Server) registerStopTrackingTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "stop_tracking",
		Description: "Stop background location sampling. A sample already in progress is still recorded.",
		InputSchema: emptySchema,
	}, s.handleStopTracking)
}

func (s *Server) handleStopTracking(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StatusOutput, error) {
	s.ctrl.Stop()
	output := newStatusOutput(s.ctrl.Snapshot())
	return toolResult(output), output, nil
}

// RestartTrackingInput defines input for restart_tracking tool.
type RestartTrackingInput struct {
	DelayMS int64 `json:"delay_ms"`
}

func (s *Server) registerRestartTrackingTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "restart_tracking",
		Description: "Stop tracking and start it again after a delay, picking up the current interval setting. Does nothing when tracking is stopped.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"delay_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Milliseconds to wait before resuming (default 0)",
				},
			},
		},
	}, s.handleRestartTracking)
}

func (s *Server) handleRestartTracking(_ context.Context, _ *mcp.CallToolRequest, input RestartTrackingInput) (*mcp.CallToolResult, StatusOutput, error) {
	if input.DelayMS < 0 {
		return nil, StatusOutput{}, fmt.Errorf("delay_ms must not be negative")
	}
	s.ctrl.Restart(time.Duration(input.DelayMS) * time.Millisecond)
	output := newStatusOutput(s.ctrl.Snapshot())
	return toolResult(output), output, nil
}

func (s *Server) registerGetStatusTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_status",
		Description: "Get the tracker state, the sampling interval, the last error and the most recent fix.",
		InputSchema: emptySchema,
	}, s.handleGetStatus)
}

func (s *Server) handleGetStatus(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, StatusOutput, error) {
	if err := s.ctrl.Refresh(ctx); err != nil {
		return nil, StatusOutput{}, err
	}
	output := newStatusOutput(s.ctrl.Snapshot())
	return toolResult(output), output, nil
}

// ListFixesInput defines input for list_fixes tool.
type ListFixesInput struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ListFixesOutput defines output for list_fixes tool.
type ListFixesOutput struct {
	Fixes []FixOutput `json:"fixes"`
	Count int         `json:"count"`
	Total int         `json:"total"`
}

func (s *Server) registerListFixesTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_fixes",
		Description: "List recorded fixes, newest first.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum fixes to return (default 20, max 500)",
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of newer fixes to skip",
				},
			},
		},
	}, s.handleListFixes)
}

func (s *Server) handleListFixes(ctx context.Context, _ *mcp.CallToolRequest, input ListFixesInput) (*mcp.CallToolResult, ListFixesOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit < 0 || limit > maxListLimit {
		return nil, ListFixesOutput{}, fmt.Errorf("limit must be between 1 and %d", maxListLimit)
	}

	fixes, err := s.ctrl.Get(ctx, limit, input.Offset)
	if err != nil {
		return nil, ListFixesOutput{}, fmt.Errorf("failed to list fixes: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, ListFixesOutput{}, fmt.Errorf("failed to count fixes: %w", err)
	}

	outputs := make([]FixOutput, len(fixes))
	for i, fix := range fixes {
		outputs[i] = newFixOutput(fix)
	}
	output := ListFixesOutput{Fixes: outputs, Count: len(outputs), Total: total}
	return toolResult(output), output, nil
}

// FixIDInput identifies one fix.
type FixIDInput struct {
	ID int64 `json:"id"`
}

var fixIDSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"id": map[string]interface{}{
			"type":        "integer",
			"description": "Fix id",
		},
	},
	"required": []string{"id"},
}

func (s *Server) registerGetFixTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_fix",
		Description: "Get one recorded fix by id.",
		InputSchema: fixIDSchema,
	}, s.handleGetFix)
}

func (s *Server) handleGetFix(ctx context.Context, _ *mcp.CallToolRequest, input FixIDInput) (*mcp.CallToolResult, FixOutput, error) {
	fix, err := s.store.GetByID(ctx, input.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, FixOutput{}, fmt.Errorf("fix %d not found", input.ID)
	}
	if err != nil {
		return nil, FixOutput{}, fmt.Errorf("failed to get fix: %w", err)
	}
	output := newFixOutput(fix)
	return toolResult(output), output, nil
}

func (s *Server) registerGetLatestFixTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_latest_fix",
		Description: "Get the most recently recorded fix.",
		InputSchema: emptySchema,
	}, s.handleGetLatestFix)
}

func (s *Server) handleGetLatestFix(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, FixOutput, error) {
	fix, err := s.store.GetLast(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, FixOutput{}, fmt.Errorf("no fixes recorded")
	}
	if err != nil {
		return nil, FixOutput{}, fmt.Errorf("failed to get latest fix: %w", err)
	}
	output := newFixOutput(fix)
	return toolResult(output), output, nil
}

// UpdateFixInput defines input for update_fix tool. Omitted fields keep
// their stored value.
type UpdateFixInput struct {
	ID        int64    `json:"id"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"`
	IsMoving  *bool    `json:"is_moving,omitempty"`
}

func (s *Server) registerUpdateFixTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_fix",
		Description: "Correct a recorded fix. Only the given fields change; the no-motion alert flag cannot be edited.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Fix id",
				},
				"latitude": map[string]interface{}{
					"type":        "number",
					"description": "Latitude (-90 to 90)",
				},
				"longitude": map[string]interface{}{
					"type":        "number",
					"description": "Longitude (-180 to 180)",
				},
				"timestamp": map[string]interface{}{
					"type":        "integer",
					"description": "Sample time in epoch milliseconds",
				},
				"is_moving": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the fix counts as movement",
				},
			},
			"required": []string{"id"},
		},
	}, s.handleUpdateFix)
}

func (s *Server) handleUpdateFix(ctx context.Context, _ *mcp.CallToolRequest, input UpdateFixInput) (*mcp.CallToolResult, FixOutput, error) {
	fix, err := s.store.GetByID(ctx, input.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, FixOutput{}, fmt.Errorf("fix %d not found", input.ID)
	}
	if err != nil {
		return nil, FixOutput{}, fmt.Errorf("failed to get fix: %w", err)
	}

	if input.Latitude != nil {
		fix.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		fix.Longitude = *input.Longitude
	}
	if input.Timestamp != nil {
		fix.Timestamp = *input.Timestamp
	}
	if input.IsMoving != nil {
		fix.IsMoving = *input.IsMoving
	}

	if err := s.store.Update(ctx, fix); err != nil {
		return nil, FixOutput{}, fmt.Errorf("failed to update fix: %w", err)
	}
	if err := s.ctrl.Refresh(ctx); err != nil {
		return nil, FixOutput{}, err
	}

	updated, err := s.store.GetByID(ctx, input.ID)
	if err != nil {
		return nil, FixOutput{}, fmt.Errorf("failed to reload fix: %w", err)
	}
	output := newFixOutput(updated)
	return toolResult(output), output, nil
}

// DeleteFixOutput defines output for delete_fix tool.
type DeleteFixOutput struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

func (s *Server) registerDeleteFixTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_fix",
		Description: "Delete a recorded fix. Deleting an unknown id succeeds.",
		InputSchema: fixIDSchema,
	}, s.handleDeleteFix)
}

func (s *Server) handleDeleteFix(ctx context.Context, _ *mcp.CallToolRequest, input FixIDInput) (*mcp.CallToolResult, DeleteFixOutput, error) {
	if err := s.store.Delete(ctx, input.ID); err != nil {
		return nil, DeleteFixOutput{}, fmt.Errorf("failed to delete fix: %w", err)
	}
	if err := s.ctrl.Refresh(ctx); err != nil {
		return nil, DeleteFixOutput{}, err
	}
	output := DeleteFixOutput{ID: input.ID, Deleted: true}
	return toolResult(output), output, nil
}

func (s *Server) settingsOutput() (SettingsOutput, error) {
	interval, err := s.prefs.Interval()
	if err != nil {
		return SettingsOutput{}, fmt.Errorf("failed to read interval: %w", err)
	}
	notify, err := s.prefs.NotifyEnabled()
	if err != nil {
		return SettingsOutput{}, fmt.Errorf("failed to read notify setting: %w", err)
	}
	return SettingsOutput{IntervalSeconds: interval, NotifyEnabled: notify}, nil
}

func (s *Server) registerGetSettingsTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_settings",
		Description: "Get the sampling interval and whether no-motion alerts are enabled.",
		InputSchema: emptySchema,
	}, s.handleGetSettings)
}

func (s *Server) handleGetSettings(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, SettingsOutput, error) {
	output, err := s.settingsOutput()
	if err != nil {
		return nil, SettingsOutput{}, err
	}
	return toolResult(output), output, nil
}

// SetIntervalInput defines input for set_interval tool.
type SetIntervalInput struct {
	Seconds int `json:"seconds"`
}

func (s *Server) registerSetIntervalTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "set_interval",
		Description: "Change the sampling interval. A running tracker restarts once the current interval has elapsed and then uses the new value.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"seconds": map[string]interface{}{
					"type":        "integer",
					"description": "Seconds between samples (1 to 86400)",
				},
			},
			"required": []string{"seconds"},
		},
	}, s.handleSetInterval)
}

func (s *Server) handleSetInterval(_ context.Context, _ *mcp.CallToolRequest, input SetIntervalInput) (*mcp.CallToolResult, SettingsOutput, error) {
	if input.Seconds < 1 || input.Seconds > maxIntervalSecs {
		return nil, SettingsOutput{}, fmt.Errorf("seconds must be between 1 and %d", maxIntervalSecs)
	}
	if err := s.prefs.SetInterval(input.Seconds); err != nil {
		return nil, SettingsOutput{}, fmt.Errorf("failed to save interval: %w", err)
	}

	// Delay by the running interval so the tick in progress can finish.
	snap := s.ctrl.Snapshot()
	restarted := snap.IsTracking
	if restarted {
		s.ctrl.Restart(snap.Interval)
	}

	output, err := s.settingsOutput()
	if err != nil {
		return nil, SettingsOutput{}, err
	}
	output.Restarted = restarted
	return toolResult(output), output, nil
}

// SetNotifyInput defines input for set_notify tool.
type SetNotifyInput struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) registerSetNotifyTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "set_notify",
		Description: "Enable or disable the alert sent after 10 minutes without movement.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"enabled": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether no-motion alerts are sent",
				},
			},
			"required": []string{"enabled"},
		},
	}, s.handleSetNotify)
}

func (s *Server) handleSetNotify(_ context.Context, _ *mcp.CallToolRequest, input SetNotifyInput) (*mcp.CallToolResult, SettingsOutput, error) {
	if err := s.prefs.SetNotifyEnabled(input.Enabled); err != nil {
		return nil, SettingsOutput{}, fmt.Errorf("failed to save notify setting: %w", err)
	}
	output, err := s.settingsOutput()
	if err != nil {
		return nil, SettingsOutput{}, err
	}
	return toolResult(output), output, nil
}
