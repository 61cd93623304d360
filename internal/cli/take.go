package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rhel-assessment-service/internal/config"
	"rhel-assessment-service/internal/logger"
	"rhel-assessment-service/internal/terminal"
)

// NewTakeCmd runs one assessment interactively in the terminal.
func NewTakeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "take",
		Short: "Take the assessment in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTake(ctx, *configPath)
		},
	}
}

func runTake(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	return terminal.NewConsole(d.service, os.Stdin, os.Stdout, log).Run(ctx)
}
