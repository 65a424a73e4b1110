package main

import (
	"log"
	"os"
	"time"

	"github.com/hashicorp/logutils"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	ServerURL        string        `envconfig:"TRSST_SERVER_URL" default:"http://localhost:8181"`
	PollInterval     time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	NotifyDebounce   time.Duration `envconfig:"NOTIFY_DEBOUNCE" default:"500ms"`
	MaxPages         int           `envconfig:"MAX_PAGES" default:"1000"`
	HTTPTimeout      time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	CacheTTL         time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	CacheBackend     string        `envconfig:"CACHE_BACKEND" default:""`
	CacheRedisAddr   string        `envconfig:"CACHE_REDIS_ADDR" default:""`
	SeenDB           string        `envconfig:"SEEN_DB" default:""`
	StatusAddr       string        `envconfig:"STATUS_ADDR" default:""`
	MaxContentLength int           `envconfig:"MAX_CONTENT_LENGTH" default:"250"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"INFO"`
	Version          string        `envconfig:"VERSION" default:"unknown"`
}

func LoadConfig() (Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Config{}, errors.Wrap(err, "couldn't process envconfig")
	}
	return config, nil
}

func ConfigureLogging(level string) {
	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"},
		MinLevel: logutils.LogLevel(level),
		Writer:   os.Stderr,
	}
	log.SetOutput(filter)
}
