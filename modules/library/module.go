package library

import (
	"github.com/lingora/lingora/modules/library/domain/entities/staging"
	"github.com/lingora/lingora/modules/library/domain/manifest"
	"github.com/lingora/lingora/modules/library/handlers"
	"github.com/lingora/lingora/modules/library/infrastructure/blob"
	"github.com/lingora/lingora/modules/library/infrastructure/persistence"
	"github.com/lingora/lingora/modules/library/presentation/controllers"
	"github.com/lingora/lingora/modules/library/services"
	"github.com/lingora/lingora/pkg/application"
)

// ModuleOptions carries the externally-constructed collaborators: the
// session registry and blob store vary by deployment, so the entrypoint
// chooses them.
type ModuleOptions struct {
	Registry        staging.Registry
	Blobs           blob.Store
	Staging         services.StagingConfig
	Manifest        manifest.Options
	TagCategory     string
	MaxUploadMemory int64
}

func NewModule(opts ModuleOptions) application.Module {
	return &Module{opts: opts}
}

type Module struct {
	opts ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	tagService := services.NewTagService(persistence.NewTagRepository(), m.opts.TagCategory)
	speechRepo := persistence.NewSpeechRepository()

	app.RegisterServices(
		services.NewStagingService(m.opts.Registry, m.opts.Blobs, m.opts.Staging),
		tagService,
		services.NewSpeechService(speechRepo),
		services.NewImportService(
			m.opts.Registry,
			m.opts.Blobs,
			speechRepo,
			tagService,
			persistence.NewTransactor(),
			app.EventPublisher(),
			m.opts.Manifest,
		),
	)
	app.RegisterControllers(
		controllers.NewStagingController(app, m.opts.MaxUploadMemory),
		controllers.NewImportController(app, m.opts.MaxUploadMemory),
		controllers.NewLibraryController(app),
	)
	handlers.RegisterImportEventHandlers(app)
	return nil
}

func (m *Module) Name() string {
	return "library"
}
