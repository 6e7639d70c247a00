package speech

import "github.com/google/uuid"

// ImportCompletedEvent is published after a manifest import commits.
type ImportCompletedEvent struct {
	SessionID uuid.UUID
	SpeechIDs []uint
}
