package main

import (
	"context"
	"log"
	"os"

	"github.com/aretw0/dsg/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <capture>",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Replays a capture file and exposes the rebuilt scene as MCP tools
(scene_summary, part_info, session_status) over Standard Input/Output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		p, err := newPipeline(cfg, logger)
		if err != nil {
			return err
		}
		defer p.Close()

		if err := replayCapture(context.Background(), p, args[0]); err != nil {
			return err
		}

		srv := mcp.NewServer(p.recorder,
			mcp.WithStatus(p.status),
			mcp.WithUpdating(p.session.Updating),
			mcp.WithLogger(logger),
		)

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("Starting DSG MCP Server (Stdio)...")
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
