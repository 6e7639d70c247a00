package schema

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrator applies goose-format SQL migrations from a directory against a
// Postgres database.
type Migrator struct {
	db  *sql.DB
	dir string
}

func NewMigrator(dsn, dir string) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, errors.Wrap(err, "failed to set migration dialect")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	return &Migrator{db: db, dir: dir}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	return goose.UpContext(ctx, m.db, m.dir)
}

func (m *Migrator) Down(ctx context.Context) error {
	return goose.DownContext(ctx, m.db, m.dir)
}

func (m *Migrator) Status(ctx context.Context) error {
	return goose.StatusContext(ctx, m.db, m.dir)
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
