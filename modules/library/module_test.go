package library

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingora/lingora/modules/library/domain/entities/speech"
	"github.com/lingora/lingora/modules/library/infrastructure/blob"
	stagingstore "github.com/lingora/lingora/modules/library/infrastructure/staging"
	"github.com/lingora/lingora/pkg/application"
	"github.com/lingora/lingora/pkg/eventbus"
)

func TestModule_RegisterSubscribesImportCompletedHandler(t *testing.T) {
	logger, hook := test.NewNullLogger()
	bus := eventbus.NewEventPublisher(logger)
	app := application.New(&application.ApplicationOptions{EventBus: bus})

	module := NewModule(ModuleOptions{
		Registry: stagingstore.NewMemoryRegistry(time.Hour),
		Blobs:    blob.NewLocalStore(t.TempDir()),
	})
	require.NoError(t, module.Register(app))
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Publish(&speech.ImportCompletedEvent{
		SessionID: uuid.New(),
		SpeechIDs: []uint{1, 2, 3},
	})

	// A consumed event must not trip the bus's unmatched-event warning.
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, entry.Level, entry.Message)
	}
}
