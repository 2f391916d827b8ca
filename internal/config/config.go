// Package config loads StudyMate settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: STUDYMATE_DATA__PATH sets data.path.
const EnvPrefix = "STUDYMATE_"

// Config holds all application configuration.
type Config struct {
	Data          DataConfig          `koanf:"data"`
	Log           LogConfig           `koanf:"log"`
	Web           WebConfig           `koanf:"web"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Import        ImportConfig        `koanf:"import"`
}

// DataConfig locates the local store.
type DataConfig struct {
	Path        string        `koanf:"path" validate:"required"`
	BusyTimeout time.Duration `koanf:"busy_timeout" validate:"gte=0"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// WebConfig controls the web UI.
type WebConfig struct {
	Addr string `koanf:"addr" validate:"required,hostname_port"`
	// PollInterval is how often the page checks for reminders.
	PollInterval time.Duration `koanf:"poll_interval" validate:"gte=1s"`
}

// NotificationsConfig controls reminders.
type NotificationsConfig struct {
	// Permission is the initial permission of the terminal notifier.
	Permission string `koanf:"permission" validate:"oneof=default granted denied"`
	Title      string `koanf:"title" validate:"required"`
	Body       string `koanf:"body" validate:"required"`
}

// ImportConfig controls markdown imports.
type ImportConfig struct {
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := ".studymate"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".studymate")
	}
	return Config{
		Data: DataConfig{
			Path:        filepath.Join(dataDir, "studymate.db"),
			BusyTimeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "console"},
		Web: WebConfig{Addr: "127.0.0.1:8080", PollInterval: 30 * time.Second},
		Notifications: NotificationsConfig{
			Permission: "default",
			Title:      "StudyMate",
			Body:       "Time to study!",
		},
		Import: ImportConfig{ReposDir: filepath.Join(dataDir, "repos")},
	}
}

// FlagKeys maps command-line flag names onto configuration keys.
var FlagKeys = map[string]string{
	"db":         "data.path",
	"log-level":  "log.level",
	"log-format": "log.format",
	"addr":       "web.addr",
	"repos-dir":  "import.repos_dir",
}

// Load builds the configuration. path may be empty, in which case no file is read.
// A missing file at an explicit path is an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	// A .env file is optional.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			// Unchanged flags must not shadow defaults.
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// envKey turns STUDYMATE_DATA__BUSY_TIMEOUT into data.busy_timeout.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
