package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rhel-assessment-service/internal/config"
	"rhel-assessment-service/internal/infra/memory"
	"rhel-assessment-service/internal/infra/postgres"
	"rhel-assessment-service/internal/logger"
)

// NewBankCmd groups question bank maintenance commands.
func NewBankCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Manage the offline question bank",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import [file]",
		Short: "Validate a YAML question bank and upsert it into postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runBankImport(cmd.Context(), *configPath, path)
		},
	})
	return cmd
}

func runBankImport(ctx context.Context, configPath, path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	if path == "" {
		path = cfg.Quiz.BankPath
	}
	if path == "" {
		return fmt.Errorf("no bank file given and quiz.bank_path not configured")
	}
	questions, err := memory.ReadBankFile(path)
	if err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}
	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	n, err := postgres.ImportBank(ctx, db, questions)
	if err != nil {
		return err
	}
	log.Info("question bank imported", zap.String("file", path), zap.Int("questions", n))
	return nil
}
