package services

import (
	"context"

	"github.com/lingora/lingora/modules/library/domain/entities/speech"
)

// SpeechService exposes read access to the persistent speech library.
// Writes happen only through ImportService.
type SpeechService struct {
	repo speech.Repository
}

func NewSpeechService(repo speech.Repository) *SpeechService {
	return &SpeechService{repo: repo}
}

func (s *SpeechService) GetByID(ctx context.Context, id uint) (*speech.Speech, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SpeechService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
