package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from YAML files and environment variables,
// validates it, and returns the resulting Config together with the viper
// instance for watching.
func Load() (*Config, *viper.Viper, error) {
	// Missing env files are fine; container deployments inject real env vars.
	_ = godotenv.Load(".env.local", ".env")

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, nil, err
	}
	cfg.AppEnv = env

	return cfg, v, nil
}

// Watch re-reads and re-validates the config whenever the file changes,
// passing each valid snapshot to onChange. Invalid edits are logged and
// dropped, keeping the previous configuration live.
func Watch(v *viper.Viper, log *slog.Logger, onChange func(Config)) {
	if v == nil || onChange == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := unmarshal(v)
		if err != nil {
			log.Error("ignoring invalid config change", slog.String("file", e.Name), slog.Any("error", err))
			return
		}

		log.Info("configuration reloaded", slog.String("file", e.Name))
		onChange(*cfg)
	})

	v.WatchConfig()
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
