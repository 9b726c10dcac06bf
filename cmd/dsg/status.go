package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/dsg"
	"github.com/aretw0/dsg/internal/presentation/tui"
	"github.com/aretw0/dsg/pkg/adapters/file"
	redisAdapter "github.com/aretw0/dsg/pkg/adapters/redis"
	"github.com/aretw0/dsg/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [file]",
	Short: "Show the progress of a running session",
	Long: `Reads the progress record written by a session, either from a status file
or, without argument, from the configured Redis instance.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		watch, _ := cmd.Flags().GetBool("watch")

		var reader ports.StatusReader
		switch {
		case len(args) == 1:
			reader = file.NewStatusFile(args[0])
		case cfg.StatusFile != "":
			reader = file.NewStatusFile(cfg.StatusFile)
		case cfg.Redis.Addr != "":
			client := backend.NewClient(&backend.Options{Addr: cfg.Redis.Addr})
			defer client.Close()
			reader = redisAdapter.NewStatusPublisher(client,
				redisAdapter.WithPrefix(cfg.Redis.Prefix), redisAdapter.WithTTL(cfg.Redis.TTL))
		default:
			return errors.New("no status source: pass a file or configure status_file or redis")
		}

		out := cmd.OutOrStdout()
		if isTerminal(out) {
			tui.PrintBanner(out, dsg.Version)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			progress, err := reader.ReadStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, tui.FormatStatus(progress, time.Now()))
			if !watch {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolP("watch", "w", false, "Keep polling every second")
}
