package persistence

import (
	"github.com/lingora/lingora/modules/library/domain/entities/speech"
	"github.com/lingora/lingora/modules/library/domain/entities/tag"
	"github.com/lingora/lingora/modules/library/infrastructure/persistence/models"
)

func toDomainTag(row *models.Tag) *tag.Tag {
	return tag.New(
		row.Name,
		tag.WithID(row.ID),
		tag.WithCategory(row.Category),
		tag.WithCreatedAt(row.CreatedAt),
	)
}

func toDBTag(entity *tag.Tag) *models.Tag {
	return &models.Tag{
		ID:        entity.ID(),
		Name:      entity.Name(),
		Category:  entity.Category(),
		CreatedAt: entity.CreatedAt(),
	}
}

func toDomainSpeech(row *models.Speech, tags []*tag.Tag) *speech.Speech {
	return speech.New(
		row.Text,
		row.Level,
		row.SpeechType,
		row.AudioRef,
		speech.WithID(row.ID),
		speech.WithTags(tags),
		speech.WithCreatedAt(row.CreatedAt),
		speech.WithUpdatedAt(row.UpdatedAt),
	)
}

func toDBSpeech(entity *speech.Speech) *models.Speech {
	return &models.Speech{
		ID:         entity.ID(),
		AudioRef:   entity.AudioRef(),
		Text:       entity.Text(),
		Level:      entity.Level(),
		SpeechType: entity.SpeechType(),
		CreatedAt:  entity.CreatedAt(),
		UpdatedAt:  entity.UpdatedAt(),
	}
}
