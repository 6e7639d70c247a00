package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lingora/lingora/modules/library/domain/entities/speech"
	"github.com/lingora/lingora/modules/library/domain/entities/tag"
	"github.com/lingora/lingora/modules/library/infrastructure/persistence/models"
	"github.com/lingora/lingora/pkg/composables"
)

var ErrSpeechNotFound = errors.New("speech not found")

type PgSpeechRepository struct{}

func NewSpeechRepository() speech.Repository {
	return &PgSpeechRepository{}
}

func (r *PgSpeechRepository) GetByID(ctx context.Context, id uint) (*speech.Speech, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Speech
	if err := tx.QueryRow(ctx, `
		SELECT id, audio_ref, text, level, speech_type, created_at, updated_at
		FROM speeches
		WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.AudioRef, &row.Text, &row.Level, &row.SpeechType, &row.CreatedAt, &row.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSpeechNotFound
		}
		return nil, err
	}

	tags, err := r.tagsForSpeech(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return toDomainSpeech(&row, tags), nil
}

func (r *PgSpeechRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM speeches`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgSpeechRepository) Create(ctx context.Context, entity *speech.Speech) (*speech.Speech, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	dbRow := toDBSpeech(entity)
	if err := tx.QueryRow(ctx, `
		INSERT INTO speeches (audio_ref, text, level, speech_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		dbRow.AudioRef,
		dbRow.Text,
		dbRow.Level,
		dbRow.SpeechType,
		dbRow.CreatedAt,
		dbRow.UpdatedAt,
	).Scan(&dbRow.ID, &dbRow.CreatedAt, &dbRow.UpdatedAt); err != nil {
		return nil, err
	}
	return toDomainSpeech(dbRow, entity.Tags()), nil
}

func (r *PgSpeechRepository) LinkTags(ctx context.Context, speechID uint, tagIDs []uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	for position, tagID := range tagIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO speech_tags (speech_id, tag_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (speech_id, tag_id) DO NOTHING`,
			speechID,
			tagID,
			position,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgSpeechRepository) tagsForSpeech(ctx context.Context, speechID uint) ([]*tag.Tag, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT t.id, t.name, t.category, t.created_at
		FROM tags t
		JOIN speech_tags st ON st.tag_id = t.id
		WHERE st.speech_id = $1
		ORDER BY st.position`,
		speechID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*tag.Tag
	for rows.Next() {
		var row models.Tag
		if err := rows.Scan(&row.ID, &row.Name, &row.Category, &row.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, toDomainTag(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}
