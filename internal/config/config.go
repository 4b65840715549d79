package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// API configures the REST backend.
type API struct {
	Port            string        `envconfig:"PORT" default:"5000"`
	MongoURI        string        `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string        `envconfig:"MONGODB_DATABASE" default:"takesandtastes"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CacheTTL        time.Duration `envconfig:"RESTAURANT_CACHE_TTL" default:"5m"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Client configures the foodcart command-line client.
type Client struct {
	APIURL         string        `envconfig:"API_URL" default:"http://localhost:5000/api"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	StorageBackend string        `envconfig:"STORAGE_BACKEND" default:"redis"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	MongoURI       string        `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase  string        `envconfig:"MONGODB_DATABASE" default:"takesandtastes_device"`
	Namespace      string        `envconfig:"STORAGE_NAMESPACE" default:"foodcart"`
	ConflictPolicy string        `envconfig:"CART_CONFLICT_POLICY" default:"reject"`
	Country        string        `envconfig:"DEFAULT_COUNTRY" default:"Pakistan"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"warn"`
}

const (
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

func LoadAPI() (*API, error) {
	var cfg API
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadClient() (*Client, error) {
	var cfg Client
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.StorageBackend != BackendRedis && cfg.StorageBackend != BackendMongo {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	return &cfg, nil
}

// SetupLogging applies the JSON formatter and the configured level.
func SetupLogging(level string) {
	log.SetFormatter(&log.JSONFormatter{})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
