package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/dsg/internal/presentation/graph"
	"github.com/aretw0/dsg/pkg/adapters/capture"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <capture>",
	Short: "Run a capture file through the engine",
	Long: `Replays a recorded capture (YAML or JSON) through the same runner used for
live connections and prints a summary of the rebuilt scene.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := applySessionFlags(cmd, &cfg); err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		asMermaid, _ := cmd.Flags().GetBool("mermaid")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline(cfg, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		p.serveHTTP(ctx)

		if err := replayCapture(ctx, p, args[0]); err != nil {
			return err
		}
		if asMermaid {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(p.recorder.Summary()))
			return nil
		}
		printSummary(cmd.OutOrStdout(), p.recorder.Summary(), asJSON)
		return nil
	},
}

// replayCapture streams the capture at path once and waits for the end of it.
func replayCapture(ctx context.Context, p *pipeline, path string) error {
	connector, err := capture.NewConnector(path)
	if err != nil {
		return err
	}
	connector.Once = true

	control := p.cfg.Control()
	control.AllowSpontaneous = true
	return p.run(ctx, connector, runOptions{control: control})
}

func init() {
	rootCmd.AddCommand(replayCmd)
	sessionFlags(replayCmd)
	replayCmd.Flags().Bool("json", false, "Print the summary as JSON")
	replayCmd.Flags().Bool("mermaid", false, "Print the scene hierarchy as a Mermaid flowchart")
}
