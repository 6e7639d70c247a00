package dtos

import (
	"time"

	"github.com/lingora/lingora/modules/library/domain/entities/speech"
	"github.com/lingora/lingora/modules/library/domain/entities/staging"
	"github.com/lingora/lingora/modules/library/domain/entities/tag"
)

type UploadedFile struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"originalFilename"`
	StorageRef       string `json:"storageRef"`
	SizeBytes        int64  `json:"sizeBytes"`
}

// UploadResponse is returned by session creation and by incremental file
// uploads into an existing session.
type UploadResponse struct {
	UploadSessionID string         `json:"uploadSessionId"`
	UploadedFiles   []UploadedFile `json:"uploadedFiles"`
}

type SessionResponse struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Files     []UploadedFile `json:"files"`
}

type TagResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type SpeechResponse struct {
	ID         uint          `json:"id"`
	AudioRef   string        `json:"audioRef"`
	Text       string        `json:"text"`
	Level      string        `json:"level"`
	SpeechType string        `json:"speechType"`
	Tags       []TagResponse `json:"tags"`
	CreatedAt  time.Time     `json:"createdAt"`
}

func ToUploadedFile(f *staging.File) UploadedFile {
	return UploadedFile{
		ID:               f.ID.String(),
		OriginalFilename: f.OriginalFilename,
		StorageRef:       f.StorageKey,
		SizeBytes:        f.SizeBytes,
	}
}

func ToUploadedFiles(files []*staging.File) []UploadedFile {
	result := make([]UploadedFile, len(files))
	for i, f := range files {
		result[i] = ToUploadedFile(f)
	}
	return result
}

func ToSessionResponse(s *staging.Session) *SessionResponse {
	return &SessionResponse{
		ID:        s.ID.String(),
		CreatedAt: s.CreatedAt,
		Files:     ToUploadedFiles(s.Files),
	}
}

func ToTagResponse(t *tag.Tag) TagResponse {
	return TagResponse{
		ID:       t.ID(),
		Name:     t.Name(),
		Category: t.Category(),
	}
}

func ToSpeechResponse(s *speech.Speech) *SpeechResponse {
	tags := make([]TagResponse, len(s.Tags()))
	for i, t := range s.Tags() {
		tags[i] = ToTagResponse(t)
	}
	return &SpeechResponse{
		ID:         s.ID(),
		AudioRef:   s.AudioRef(),
		Text:       s.Text(),
		Level:      s.Level(),
		SpeechType: s.SpeechType(),
		Tags:       tags,
		CreatedAt:  s.CreatedAt(),
	}
}
