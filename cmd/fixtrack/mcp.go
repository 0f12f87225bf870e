// ABOUTME: MCP serve command
// ABOUTME: Starts the MCP server for AI agent integration

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/fixtrack/internal/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	Long: `Serve the tracker over MCP on stdin/stdout.

Agents can start and stop tracking, list fixes and change settings.
Console alerts are disabled because stdout carries the protocol.

Examples:
  fixtrack mcp
  fixtrack mcp --start`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openSettings(); err != nil {
			return err
		}

		// stdout belongs to the protocol.
		ctrl, err := newController(io.Discard)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		server, err := mcp.NewServer(ctrl, db, prefs)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()

		if start, _ := cmd.Flags().GetBool("start"); start {
			if err := ctrl.Start(ctx); err != nil {
				logger.Warn("tracking not started", zap.Error(err))
			}
		}

		return server.Serve(ctx)
	},
}

func init() {
	mcpCmd.Flags().Bool("start", false, "start tracking as soon as the server is up")

	rootCmd.AddCommand(mcpCmd)
}
