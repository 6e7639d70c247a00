package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lingora/lingora/modules/library"
	domainstaging "github.com/lingora/lingora/modules/library/domain/entities/staging"
	"github.com/lingora/lingora/modules/library/domain/manifest"
	"github.com/lingora/lingora/modules/library/infrastructure/blob"
	stagingstore "github.com/lingora/lingora/modules/library/infrastructure/staging"
	"github.com/lingora/lingora/modules/library/services"
	"github.com/lingora/lingora/pkg/application"
	"github.com/lingora/lingora/pkg/configuration"
	"github.com/lingora/lingora/pkg/eventbus"
	"github.com/lingora/lingora/pkg/httpapi"
	"github.com/lingora/lingora/pkg/logging"
	"github.com/lingora/lingora/pkg/metrics"
	"github.com/lingora/lingora/pkg/middleware"
	"github.com/lingora/lingora/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		cleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer cleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to " + conf.OpenTelemetry.TempoURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	blobs, err := newBlobStore(ctx, conf)
	if err != nil {
		panic(err)
	}
	registry := newSessionRegistry(conf)

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
	})
	libraryModule := library.NewModule(library.ModuleOptions{
		Registry: registry,
		Blobs:    blobs,
		Staging: services.StagingConfig{
			AllowedExtensions: conf.Import.AllowedExtensions,
			MaxFileSize:       conf.Import.MaxFileSize,
		},
		Manifest: manifest.Options{
			Levels:            conf.Import.Levels,
			SpeechTypes:       conf.Import.SpeechTypes,
			DefaultSpeechType: conf.Import.DefaultSpeechType,
		},
		TagCategory:     conf.Import.TagCategory,
		MaxUploadMemory: conf.MaxUploadMemory,
	})
	if err := application.Load(app, libraryModule); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}
	app.RegisterMiddleware(
		middleware.WithLogger(logger),
		middleware.ProvidePool(pool),
	)

	sweeper := services.NewStagingSweeper(registry, blobs, conf.Staging.SweepInterval)
	sweeper.Start(context.Background())

	httpServer := server.NewHTTPServer(
		app,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
		}),
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
		}),
	)
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := httpServer.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func newBlobStore(ctx context.Context, conf *configuration.Configuration) (blob.Store, error) {
	switch conf.BlobStore.Driver {
	case "minio":
		return blob.NewMinioStore(ctx, blob.MinioOptions{
			Endpoint:  conf.BlobStore.MinioEndpoint,
			AccessKey: conf.BlobStore.MinioAccessKey,
			SecretKey: conf.BlobStore.MinioSecretKey,
			Bucket:    conf.BlobStore.MinioBucket,
			UseSSL:    conf.BlobStore.MinioUseSSL,
		})
	default:
		return blob.NewLocalStore(conf.BlobStore.LocalPath), nil
	}
}

func newSessionRegistry(conf *configuration.Configuration) domainstaging.Registry {
	switch conf.Staging.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: conf.Staging.RedisURL})
		return stagingstore.NewRedisRegistry(client, conf.Staging.SessionTTL)
	default:
		return stagingstore.NewMemoryRegistry(conf.Staging.SessionTTL)
	}
}
