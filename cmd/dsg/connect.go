package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	grpcAdapter "github.com/aretw0/dsg/pkg/adapters/grpc"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a DSG server and rebuild its scene",
	Long: `Connects to a DSG server over gRPC and consumes scene updates until the
server ends the stream or the process is interrupted. With --once a single
update is requested and the command exits when it completes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := applySessionFlags(cmd, &cfg); err != nil {
			return err
		}
		once, _ := cmd.Flags().GetBool("once")
		record, _ := cmd.Flags().GetString("record")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := newPipeline(cfg, logger)
		if err != nil {
			return err
		}
		defer p.Close()

		unlock, err := p.lock(ctx)
		if err != nil {
			return fmt.Errorf("server %s is already in use: %w", cfg.Server, err)
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				logger.Warn("failed to release connection lock", "error", err)
			}
		}()

		p.serveHTTP(ctx)

		connector := grpcAdapter.NewConnector(cfg.Server, grpcAdapter.WithLogger(logger))
		logger.Info("connecting", "server", cfg.Server, "once", once)
		if err := p.run(ctx, connector, runOptions{control: cfg.Control(), once: once, recordPath: record}); err != nil {
			return err
		}

		if once {
			printSummary(cmd.OutOrStdout(), p.recorder.Summary(), false)
		}
		logger.Info("session ended", "skipped_parts", p.dedup.Skipped())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	sessionFlags(connectCmd)
	connectCmd.Flags().StringP("server", "s", grpcAdapter.DefaultAddress, "DSG server address")
	connectCmd.Flags().Bool("once", false, "Request one update and exit")
	connectCmd.Flags().String("record", "", "Save received commands to this capture file")
}
