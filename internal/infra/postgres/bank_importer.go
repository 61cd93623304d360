package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"rhel-assessment-service/internal/domain"
)

type bankRow struct {
	bun.BaseModel `bun:"table:question_bank"`

	ID       string          `bun:"id,pk"`
	Position int             `bun:"position,notnull"`
	Module   string          `bun:"module,notnull"`
	Data     domain.Question `bun:"data,type:jsonb,notnull"`
}

// OpenBun opens a bun handle over the pgdriver connector for dsn.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// ImportBank upserts questions into question_bank, keeping their order as
// position. Questions are validated as a set before anything is written.
func ImportBank(ctx context.Context, db *bun.DB, questions []domain.Question) (int, error) {
	if err := domain.ValidateQuestionSet(questions); err != nil {
		return 0, err
	}

	rows := make([]bankRow, 0, len(questions))
	for i, q := range questions {
		rows = append(rows, bankRow{ID: q.ID, Position: i, Module: q.Module, Data: q})
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("position = EXCLUDED.position").
		Set("module = EXCLUDED.module").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("import bank: %w", err)
	}
	return len(rows), nil
}
