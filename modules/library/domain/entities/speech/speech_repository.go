package speech

import "context"

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Speech, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, s *Speech) (*Speech, error)
	// LinkTags associates tags with a speech, preserving list order.
	LinkTags(ctx context.Context, speechID uint, tagIDs []uint) error
}
