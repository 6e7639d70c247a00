package models

import "time"

type Tag struct {
	ID        uint
	Name      string
	Category  string
	CreatedAt time.Time
}

type Speech struct {
	ID         uint
	AudioRef   string
	Text       string
	Level      string
	SpeechType string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
