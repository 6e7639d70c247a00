package tag

import (
	"time"
)

// CategoryImported marks tags minted automatically by a manifest import
// rather than curated by an editor.
const CategoryImported = "imported"

type Tag struct {
	id        uint
	name      string
	category  string
	createdAt time.Time
}

type Option func(*Tag)

func WithID(id uint) Option {
	return func(t *Tag) {
		t.id = id
	}
}

func WithCategory(category string) Option {
	return func(t *Tag) {
		t.category = category
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(t *Tag) {
		t.createdAt = createdAt
	}
}

func New(name string, opts ...Option) *Tag {
	t := &Tag{
		name:      name,
		category:  CategoryImported,
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tag) ID() uint {
	return t.id
}

func (t *Tag) Name() string {
	return t.name
}

func (t *Tag) Category() string {
	return t.category
}

func (t *Tag) CreatedAt() time.Time {
	return t.createdAt
}
