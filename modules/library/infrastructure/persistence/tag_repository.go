package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lingora/lingora/modules/library/domain/entities/tag"
	"github.com/lingora/lingora/modules/library/infrastructure/persistence/models"
	"github.com/lingora/lingora/pkg/composables"
)

var (
	ErrTagNotFound  = errors.New("tag not found")
	ErrTagDuplicate = errors.New("tag name already exists")
)

const uniqueViolationCode = "23505"

type PgTagRepository struct{}

func NewTagRepository() tag.Repository {
	return &PgTagRepository{}
}

func (r *PgTagRepository) GetByName(ctx context.Context, name string) (*tag.Tag, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Tag
	if err := tx.QueryRow(ctx, `
		SELECT id, name, category, created_at
		FROM tags
		WHERE name = $1`,
		name,
	).Scan(&row.ID, &row.Name, &row.Category, &row.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return toDomainTag(&row), nil
}

func (r *PgTagRepository) GetAll(ctx context.Context) ([]*tag.Tag, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, name, category, created_at
		FROM tags
		ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*tag.Tag
	for rows.Next() {
		var row models.Tag
		if err := rows.Scan(&row.ID, &row.Name, &row.Category, &row.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, toDomainTag(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PgTagRepository) Create(ctx context.Context, entity *tag.Tag) (*tag.Tag, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	dbRow := toDBTag(entity)
	if err := tx.QueryRow(ctx, `
		INSERT INTO tags (name, category, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		dbRow.Name,
		dbRow.Category,
		dbRow.CreatedAt,
	).Scan(&dbRow.ID, &dbRow.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrTagDuplicate
		}
		return nil, err
	}
	return toDomainTag(dbRow), nil
}
