package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rhel-assessment-service/internal/app"
	"rhel-assessment-service/internal/config"
	"rhel-assessment-service/internal/infra/gemini"
	"rhel-assessment-service/internal/infra/memory"
	pgstore "rhel-assessment-service/internal/infra/postgres"
	redisstore "rhel-assessment-service/internal/infra/redis"
)

// deps is everything a front end needs to run against the configured backends.
type deps struct {
	service *app.AssessmentService
	redis   *redis.Client
	pool    *pgxpool.Pool
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

func buildDeps(ctx context.Context, cfg config.Config, logger *zap.Logger) (*deps, error) {
	d := &deps{}
	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.pool = pool
	}

	source, err := buildSource(ctx, cfg, d.pool, logger)
	if err != nil {
		d.Close()
		return nil, err
	}

	var slots app.SlotStore
	switch {
	case d.pool != nil:
		slots = pgstore.NewSlotStore(d.pool)
	case d.redis != nil:
		slots = redisstore.NewSlotStore(d.redis)
	default:
		logger.Warn("no persistent store configured, results are kept in memory")
		slots = memory.NewSlotStore()
	}
	archive := app.NewSlotArchive(slots, cfg.Archive.Slot, logger)

	var sessions app.SessionRepository
	if d.redis != nil {
		sessions = redisstore.NewSessionStore(d.redis, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
	} else {
		sessions = memory.NewSessionStore()
	}

	d.service = app.NewAssessmentService(sessions, source, archive, app.Options{
		QuestionCount: cfg.Quiz.QuestionCount,
		Recipient:     cfg.Notify.Recipient,
		Logger:        logger,
	})
	return d, nil
}

// buildSource picks the question source. Gemini without an API key falls back
// to the bank when one is configured.
func buildSource(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (app.QuestionSource, error) {
	switch cfg.Quiz.Source {
	case config.SourceGemini:
		if cfg.Gemini.APIKey != "" {
			return gemini.NewSource(ctx, gemini.Config{
				APIKey:  cfg.Gemini.APIKey,
				Model:   cfg.Gemini.Model,
				Timeout: config.TTLDuration(cfg.Gemini.Timeout, 0),
			}, logger)
		}
		logger.Warn("gemini api key not configured, falling back to question bank")
	case config.SourceBank:
	default:
		return nil, fmt.Errorf("unknown question source %q", cfg.Quiz.Source)
	}

	var loader memory.BankLoader
	switch {
	case pool != nil:
		loader = pgstore.NewBankLoader(pool)
	case cfg.Quiz.BankPath != "":
		loader = memory.NewFileBank(cfg.Quiz.BankPath)
	default:
		return nil, errors.New("no question source available: set an api key, a postgres url or quiz.bank_path")
	}
	return memory.NewBankSource(loader, config.TTLDuration(cfg.Quiz.BankTTL, 10*time.Minute)), nil
}
