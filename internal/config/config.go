package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"sqlite"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"model-server.db"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address        string   `envconfig:"MODEL_SERVER_ADDRESS" default:":8080"`
	MetricsAddress string   `envconfig:"MODEL_SERVER_METRICS_ADDRESS" default:":8081"`
	LogLevel       string   `envconfig:"MODEL_SERVER_LOG_LEVEL" default:"info"`
	LogFormat      string   `envconfig:"MODEL_SERVER_LOG_FORMAT" default:"console"`
	CorsOrigins    []string `envconfig:"MODEL_SERVER_CORS_ORIGINS" default:"*"`
	// MigrationFolder overrides the migrations embedded in the binary.
	MigrationFolder string `envconfig:"MODEL_SERVER_MIGRATION_FOLDER" default:""`
	Importer        importerConfig
	Hub             hubConfig
	S3              s3Config
	Events          eventsConfig
}

type importerConfig struct {
	// StatusBufferSize is the capacity of the channel between workers and the status loop.
	StatusBufferSize int `envconfig:"MODEL_SERVER_STATUS_BUFFER_SIZE" default:"128"`
	// MaxConcurrentImports caps simultaneous fetches. Zero means unbounded.
	MaxConcurrentImports int           `envconfig:"MODEL_SERVER_MAX_CONCURRENT_IMPORTS" default:"0"`
	RegistrationTimeout  time.Duration `envconfig:"MODEL_SERVER_REGISTRATION_TIMEOUT" default:"30s"`
	ShutdownTimeout      time.Duration `envconfig:"MODEL_SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type hubConfig struct {
	BaseUrl  string `envconfig:"MODEL_SERVER_HUB_URL" default:"https://huggingface.co"`
	Token    string `envconfig:"MODEL_SERVER_HUB_TOKEN" default:""`
	Revision string `envconfig:"MODEL_SERVER_HUB_REVISION" default:"main"`
	CacheDir string `envconfig:"MODEL_SERVER_CACHE_DIR" default:"/var/cache/model-server"`
}

// eventsConfig enables publishing import job status changes as cloud events.
type eventsConfig struct {
	Enabled bool   `envconfig:"MODEL_SERVER_EVENTS_ENABLED" default:"false"`
	Topic   string `envconfig:"MODEL_SERVER_EVENTS_TOPIC" default:"model.server.events"`
}

// s3Config configures an optional S3 compatible mirror of the hub. The mirror is
// tried first when Endpoint and Bucket are set.
type s3Config struct {
	Endpoint  string `envconfig:"MODEL_SERVER_S3_ENDPOINT" default:""`
	Bucket    string `envconfig:"MODEL_SERVER_S3_BUCKET" default:""`
	AccessKey string `envconfig:"MODEL_SERVER_S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"MODEL_SERVER_S3_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"MODEL_SERVER_S3_USE_SSL" default:"false"`
}

func (s s3Config) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// LoadEnvFile exports the variables of a dotenv file before the configuration
// is read. Variables already set in the environment win. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// New reads the configuration from the environment once per process.
func New() (*Config, error) {
	if singleConfig == nil {
		cfg := new(Config)
		if err := envconfig.Process("", cfg); err != nil {
			return nil, err
		}
		singleConfig = cfg
	}
	return singleConfig, nil
}

// NewDefault returns a fresh configuration that is not shared with New.
// Tests use it to tweak single fields without leaking them to other suites.
func NewDefault() *Config {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) String() string {
	redacted := *c
	if c.Database != nil {
		db := *c.Database
		db.Password = "*****"
		redacted.Database = &db
	}
	if c.Service != nil {
		svc := *c.Service
		svc.Hub.Token = ""
		svc.S3.SecretKey = ""
		redacted.Service = &svc
	}
	val, _ := json.Marshal(redacted)
	return string(val)
}
