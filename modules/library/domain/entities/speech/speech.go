package speech

import (
	"time"

	"github.com/lingora/lingora/modules/library/domain/entities/tag"
)

// Type classifies a speech as the prompting or the responding side of a
// drill. The canonical value set is configuration-driven; these are the
// defaults.
const (
	TypeQuestion = "question"
	TypeAnswer   = "answer"
)

type Speech struct {
	id         uint
	audioRef   string
	text       string
	level      string
	speechType string
	tags       []*tag.Tag
	createdAt  time.Time
	updatedAt  time.Time
}

type Option func(*Speech)

func WithID(id uint) Option {
	return func(s *Speech) {
		s.id = id
	}
}

func WithTags(tags []*tag.Tag) Option {
	return func(s *Speech) {
		s.tags = tags
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(s *Speech) {
		s.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(s *Speech) {
		s.updatedAt = updatedAt
	}
}

func New(text, level, speechType, audioRef string, opts ...Option) *Speech {
	s := &Speech{
		text:       text,
		level:      level,
		speechType: speechType,
		audioRef:   audioRef,
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Speech) ID() uint {
	return s.id
}

func (s *Speech) AudioRef() string {
	return s.audioRef
}

func (s *Speech) Text() string {
	return s.text
}

func (s *Speech) Level() string {
	return s.level
}

func (s *Speech) SpeechType() string {
	return s.speechType
}

func (s *Speech) Tags() []*tag.Tag {
	return s.tags
}

func (s *Speech) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Speech) UpdatedAt() time.Time {
	return s.updatedAt
}
