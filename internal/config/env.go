package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Env struct {
	AppAddr   string `yaml:"app_addr"`
	GinMode   string `yaml:"gin_mode"`
	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`

	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	OfflineDir   string        `yaml:"offline_dir"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	SyncInterval time.Duration `yaml:"sync_interval"`

	JWTSecret   string   `yaml:"jwt_secret"`
	CORSOrigins []string `yaml:"cors_allowed_origins"`
}

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. LoadEnv refuses
// it in release mode.
const DefaultJWTSecret = "bus-booking-change-me"

func defaults() Env {
	return Env{
		AppAddr:      ":8080",
		LogLevel:     "info",
		DBHost:       "127.0.0.1",
		DBPort:       "3306",
		DBUser:       "root",
		DBName:       "bus_booking_system",
		OfflineDir:   "database/offline_data",
		ProbeTimeout: 2 * time.Second,
		JWTSecret:    DefaultJWTSecret,
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
	}
}

// LoadEnv builds the runtime configuration: defaults, then the optional YAML
// file named by CONFIG_FILE, then environment variables.
func LoadEnv() (Env, error) {
	env := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return env, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &env); err != nil {
			return env, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	overrideString(&env.AppAddr, "APP_ADDR")
	overrideString(&env.GinMode, "GIN_MODE")
	overrideString(&env.LogLevel, "LOG_LEVEL")
	overrideString(&env.DBHost, "DB_HOST")
	overrideString(&env.DBPort, "DB_PORT")
	overrideString(&env.DBUser, "DB_USER")
	overrideString(&env.DBPassword, "DB_PASSWORD")
	overrideString(&env.DBName, "DB_NAME")
	overrideString(&env.OfflineDir, "OFFLINE_DIR")
	overrideString(&env.JWTSecret, "JWT_SECRET")

	if v := strings.TrimSpace(os.Getenv("LOG_PRETTY")); v != "" {
		env.LogPretty = v == "1" || strings.EqualFold(v, "true")
	}
	if err := overrideDuration(&env.ProbeTimeout, "PROBE_TIMEOUT"); err != nil {
		return env, err
	}
	if err := overrideDuration(&env.SyncInterval, "SYNC_INTERVAL"); err != nil {
		return env, err
	}
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		env.CORSOrigins = env.CORSOrigins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSOrigins = append(env.CORSOrigins, o)
			}
		}
	}

	if env.ProbeTimeout <= 0 {
		return env, fmt.Errorf("probe timeout must be positive, got %s", env.ProbeTimeout)
	}
	if env.SyncInterval < 0 {
		return env, fmt.Errorf("sync interval must not be negative, got %s", env.SyncInterval)
	}
	if strings.TrimSpace(env.JWTSecret) == "" {
		return env, errors.New("jwt secret must not be empty")
	}
	if strings.EqualFold(env.GinMode, "release") && env.UsesDefaultSecret() {
		return env, errors.New("JWT_SECRET must be set when GIN_MODE=release")
	}
	return env, nil
}

// UsesDefaultSecret reports whether tokens are signed with the built-in
// development secret.
func (e Env) UsesDefaultSecret() bool {
	return e.JWTSecret == DefaultJWTSecret
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func overrideDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
