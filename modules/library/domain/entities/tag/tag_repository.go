package tag

import "context"

// Repository is the narrow persistence surface for tags. Tag names carry
// a unique constraint; Create surfaces a duplicate-name violation as a
// distinct sentinel so callers can fall back to a lookup.
type Repository interface {
	GetByName(ctx context.Context, name string) (*Tag, error)
	GetAll(ctx context.Context) ([]*Tag, error)
	Create(ctx context.Context, t *Tag) (*Tag, error)
}
