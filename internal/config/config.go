package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	minSecretLength = 32
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
	Database struct {
		Driver string
		Path   string
		DSN    string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		BcryptCost      int
	}
	Backup struct {
		Enabled  bool
		Interval time.Duration
		Retain   int
		Dir      string
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
}

// TokenTTL is the lifetime of issued session tokens.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env never overrides variables already set in the environment
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MESSAGELY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/messagely.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 24*60)
	v.SetDefault("auth.bcryptcost", 12)
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", time.Hour)
	v.SetDefault("backup.retain", 24)
	v.SetDefault("backup.dir", "data/backups")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "messagely-backups")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			errs = append(errs, errors.New("database path is required for sqlite"))
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			errs = append(errs, errors.New("database dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	if len(strings.TrimSpace(c.Auth.JWTSecret)) < minSecretLength {
		errs = append(errs, fmt.Errorf("auth jwt secret must be at least %d bytes", minSecretLength))
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		errs = append(errs, errors.New("auth token ttl must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	if c.Backup.Enabled {
		if c.Database.Driver != DriverSQLite {
			errs = append(errs, errors.New("backups are only supported for the sqlite driver"))
		}
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage bucket is required when backups are enabled"))
		}
		if c.Backup.Interval <= 0 {
			errs = append(errs, errors.New("backup interval must be positive"))
		}
		if c.Backup.Retain <= 0 {
			errs = append(errs, errors.New("backup retain must be positive"))
		}
	}

	return errors.Join(errs...)
}
