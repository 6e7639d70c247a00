package services

import (
	"context"
	"errors"

	"github.com/lingora/lingora/modules/library/domain/entities/tag"
	"github.com/lingora/lingora/modules/library/infrastructure/persistence"
)

// TagService resolves tag names to persistent tags, creating missing ones
// on the fly. Resolve runs inside the caller's transaction when one is in
// the context.
type TagService struct {
	repo     tag.Repository
	category string
}

func NewTagService(repo tag.Repository, category string) *TagService {
	if category == "" {
		category = tag.CategoryImported
	}
	return &TagService{repo: repo, category: category}
}

func (s *TagService) GetAll(ctx context.Context) ([]*tag.Tag, error) {
	return s.repo.GetAll(ctx)
}

// Resolve maps names to tags in input order, collapsing exact duplicates.
// A name that loses a creation race to a concurrent import is re-read
// rather than failed.
func (s *TagService) Resolve(ctx context.Context, names []string) ([]*tag.Tag, error) {
	resolved := make([]*tag.Tag, 0, len(names))
	seen := make(map[string]*tag.Tag, len(names))

	for _, name := range names {
		if t, ok := seen[name]; ok {
			resolved = append(resolved, t)
			continue
		}

		t, err := s.resolveOne(ctx, name)
		if err != nil {
			return nil, err
		}
		seen[name] = t
		resolved = append(resolved, t)
	}
	return resolved, nil
}

func (s *TagService) resolveOne(ctx context.Context, name string) (*tag.Tag, error) {
	existing, err := s.repo.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, persistence.ErrTagNotFound) {
		return nil, err
	}

	created, err := s.repo.Create(ctx, tag.New(name, tag.WithCategory(s.category)))
	if err == nil {
		return created, nil
	}
	if errors.Is(err, persistence.ErrTagDuplicate) {
		return s.repo.GetByName(ctx, name)
	}
	return nil, err
}
