package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"livestock-registry/internal/platform/logger"

	"github.com/joho/godotenv"
)

// Upstream es un servicio HTTP externo opcional (URL vacía = no configurado).
type Upstream struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func (u Upstream) Enabled() bool { return u.URL != "" }

type Config struct {
	App  string
	Port string

	// DSN vacío = repos in-memory.
	DBDSN string

	LogLevel  logger.Level
	LogFormat logger.Format

	Auth       Upstream
	Directory  Upstream
	Recognizer Upstream

	// Confianza mínima aceptada del reconocedor de caravanas.
	RecognizerMinConfidence float64
}

func defaults() Config {
	return Config{
		App:                     "livestock-registry",
		Port:                    "8080",
		LogLevel:                logger.Info,
		LogFormat:               logger.FormatText,
		Auth:                    Upstream{Timeout: 5 * time.Second},
		Directory:               Upstream{Timeout: 5 * time.Second},
		Recognizer:              Upstream{Timeout: 15 * time.Second},
		RecognizerMinConfidence: 0.8,
	}
}

// Load lee el entorno. Si existe envFile (ej. ".env") se carga antes sin
// pisar variables ya definidas; si no existe se ignora.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg := defaults()
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("APP_NAME"); ok {
		cfg.App = v
	}
	if v, ok := get("PORT"); ok {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = v
	}
	if v, ok := get("DB_DSN"); ok {
		cfg.DBDSN = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = logger.ParseLevel(v)
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.LogFormat = logger.ParseFormat(v)
	}

	for prefix, u := range map[string]*Upstream{
		"AUTH":       &cfg.Auth,
		"DIRECTORY":  &cfg.Directory,
		"RECOGNIZER": &cfg.Recognizer,
	} {
		if v, ok := get(prefix + "_URL"); ok {
			u.URL = strings.TrimRight(v, "/")
		}
		if v, ok := get(prefix + "_API_KEY"); ok {
			u.APIKey = v
		}
		if v, ok := get(prefix + "_TIMEOUT"); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s_TIMEOUT %q: %w", prefix, v, err)
			}
			u.Timeout = d
		}
	}

	if v, ok := get("RECOGNIZER_MIN_CONFIDENCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid RECOGNIZER_MIN_CONFIDENCE %q: must be in [0,1]", v)
		}
		cfg.RecognizerMinConfidence = f
	}
	return nil
}

// Addr para http.Server.
func (c Config) Addr() string { return ":" + c.Port }
