package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lingora/lingora/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"lingora"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type BlobStoreOptions struct {
	// Driver selects the blob backend: "local" or "minio".
	Driver    string `env:"BLOB_DRIVER" envDefault:"local"`
	LocalPath string `env:"BLOB_LOCAL_PATH" envDefault:"static/audio"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"lingora-audio"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

type StagingOptions struct {
	// Backend selects the session registry: "memory" or "redis".
	Backend       string        `env:"STAGING_BACKEND" envDefault:"memory"`
	SessionTTL    time.Duration `env:"STAGING_SESSION_TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"STAGING_SWEEP_INTERVAL" envDefault:"10m"`
	RedisURL      string        `env:"STAGING_REDIS_URL" envDefault:"localhost:6379"`
}

type ImportOptions struct {
	AllowedExtensions []string `env:"IMPORT_ALLOWED_EXTENSIONS" envSeparator:"," envDefault:".mp3,.wav,.m4a,.ogg"`
	MaxFileSize       int64    `env:"IMPORT_MAX_FILE_SIZE" envDefault:"33554432"`
	Levels            []string `env:"IMPORT_LEVELS" envSeparator:"," envDefault:"A1,A2,B1,B2,C1,C2"`
	SpeechTypes       []string `env:"IMPORT_SPEECH_TYPES" envSeparator:"," envDefault:"question,answer"`
	DefaultSpeechType string   `env:"IMPORT_DEFAULT_SPEECH_TYPE" envDefault:"question"`
	TagCategory       string   `env:"IMPORT_TAG_CATEGORY" envDefault:"imported"`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"lingora"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	Database      DatabaseOptions
	BlobStore     BlobStoreOptions
	Staging       StagingOptions
	Import        ImportOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions

	MigrationsDir    string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	ServerPort       int    `env:"PORT" envDefault:"3300"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	MaxUploadMemory  int64  `env:"MAX_UPLOAD_MEMORY" envDefault:"33554432"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	// The server looks for this header on the request; absent, it generates a uuidv4.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	RealIPHeader    string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}

	return nil
}

func (c *Configuration) validate() error {
	switch c.BlobStore.Driver {
	case "local", "minio":
	default:
		return fmt.Errorf("invalid BLOB_DRIVER=%q (expected local|minio)", c.BlobStore.Driver)
	}

	switch c.Staging.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid STAGING_BACKEND=%q (expected memory|redis)", c.Staging.Backend)
	}

	if c.Staging.SessionTTL <= 0 {
		return fmt.Errorf("STAGING_SESSION_TTL must be positive, got %s", c.Staging.SessionTTL)
	}
	if c.Import.MaxFileSize <= 0 {
		return fmt.Errorf("IMPORT_MAX_FILE_SIZE must be positive, got %d", c.Import.MaxFileSize)
	}

	for i, ext := range c.Import.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("IMPORT_ALLOWED_EXTENSIONS entry %q must start with a dot", ext)
		}
		c.Import.AllowedExtensions[i] = ext
	}

	if !contains(c.Import.SpeechTypes, c.Import.DefaultSpeechType) {
		return fmt.Errorf(
			"IMPORT_DEFAULT_SPEECH_TYPE=%q is not among IMPORT_SPEECH_TYPES %v",
			c.Import.DefaultSpeechType, c.Import.SpeechTypes,
		)
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
