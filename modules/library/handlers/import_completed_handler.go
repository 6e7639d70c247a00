package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/lingora/lingora/modules/library/domain/entities/speech"
	"github.com/lingora/lingora/pkg/application"
	"github.com/lingora/lingora/pkg/configuration"
)

type ImportEventsHandler struct {
	logger *logrus.Logger
}

func RegisterImportEventHandlers(app application.Application) {
	handler := &ImportEventsHandler{
		logger: configuration.Use().Logger(),
	}
	app.EventPublisher().Subscribe(handler.onImportCompleted)
}

func (h *ImportEventsHandler) onImportCompleted(event *speech.ImportCompletedEvent) {
	h.logger.WithFields(logrus.Fields{
		"sessionId":   event.SessionID,
		"speechCount": len(event.SpeechIDs),
	}).Info("manifest import committed")
}
