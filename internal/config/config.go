package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "EVENTSALES_"

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"

	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Storage   StorageConfig   `json:"storage"`
	Users     UsersConfig     `json:"users"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Log       LogConfig       `json:"log"`
}

type ServerConfig struct {
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	ReadTimeout     Duration `json:"read_timeout"`
	WriteTimeout    Duration `json:"write_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string   `json:"driver"`
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	User            string   `json:"user"`
	Password        string   `json:"password"`
	DBName          string   `json:"dbname"`
	SSLMode         string   `json:"sslmode"`
	MigrationsPath  string   `json:"migrations_path"`
	MaxOpenConns    int      `json:"max_open_conns"`
	MaxIdleConns    int      `json:"max_idle_conns"`
	ConnMaxLifetime Duration `json:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool     `json:"enabled"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Password string   `json:"password"`
	DB       int      `json:"db"`
	EventTTL Duration `json:"event_ttl"`
}

type StorageConfig struct {
	Backend string `json:"backend"`
}

type UsersConfig struct {
	BaseURL string   `json:"base_url"`
	Timeout Duration `json:"timeout"`
}

type SchedulerConfig struct {
	ActivityInterval Duration `json:"activity_interval"`
}

type LogConfig struct {
	Level string `json:"level"`
}

// Duration reads either a Go duration string ("30s") or whole seconds from JSON.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		d.Duration = time.Duration(v * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     Duration{10 * time.Second},
			WriteTimeout:    Duration{10 * time.Second},
			ShutdownTimeout: Duration{30 * time.Second},
		},
		Database: DatabaseConfig{
			Driver:          DriverPQ,
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			DBName:          "eventsales",
			SSLMode:         "disable",
			MigrationsPath:  "migrations",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: Duration{time.Hour},
		},
		Redis: RedisConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     6379,
			EventTTL: Duration{30 * time.Second},
		},
		Storage: StorageConfig{
			Backend: StorageBackendPostgres,
		},
		Users: UsersConfig{
			Timeout: Duration{2 * time.Second},
		},
		Scheduler: SchedulerConfig{
			ActivityInterval: Duration{time.Minute},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig starts from Default, overlays the JSON file when it exists,
// then applies EVENTSALES_* environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			decoder := json.NewDecoder(file)
			decoder.DisallowUnknownFields()
			if err := decoder.Decode(config); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.str("SERVER_HOST", &c.Server.Host)
	e.int("SERVER_PORT", &c.Server.Port)
	e.duration("SERVER_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)

	e.str("DATABASE_DRIVER", &c.Database.Driver)
	e.str("DATABASE_HOST", &c.Database.Host)
	e.int("DATABASE_PORT", &c.Database.Port)
	e.str("DATABASE_USER", &c.Database.User)
	e.str("DATABASE_PASSWORD", &c.Database.Password)
	e.str("DATABASE_DBNAME", &c.Database.DBName)
	e.str("DATABASE_SSLMODE", &c.Database.SSLMode)
	e.str("DATABASE_MIGRATIONS_PATH", &c.Database.MigrationsPath)
	e.int("DATABASE_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	e.int("DATABASE_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)

	e.bool("REDIS_ENABLED", &c.Redis.Enabled)
	e.str("REDIS_HOST", &c.Redis.Host)
	e.int("REDIS_PORT", &c.Redis.Port)
	e.str("REDIS_PASSWORD", &c.Redis.Password)
	e.int("REDIS_DB", &c.Redis.DB)
	e.duration("REDIS_EVENT_TTL", &c.Redis.EventTTL)

	e.str("STORAGE_BACKEND", &c.Storage.Backend)

	e.str("USERS_BASE_URL", &c.Users.BaseURL)
	e.duration("USERS_TIMEOUT", &c.Users.Timeout)

	e.duration("SCHEDULER_ACTIVITY_INTERVAL", &c.Scheduler.ActivityInterval)

	e.str("LOG_LEVEL", &c.Log.Level)

	return errors.Join(e.errs...)
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	switch c.Storage.Backend {
	case StorageBackendMemory:
	case StorageBackendPostgres:
		switch c.Database.Driver {
		case DriverPQ, DriverPGX:
		default:
			errs = append(errs, fmt.Errorf("database.driver %q must be %q or %q", c.Database.Driver, DriverPQ, DriverPGX))
		}
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q must be %q or %q",
			c.Storage.Backend, StorageBackendPostgres, StorageBackendMemory))
	}

	if c.Redis.Enabled && c.Redis.EventTTL.Duration <= 0 {
		errs = append(errs, errors.New("redis.event_ttl must be positive when redis is enabled"))
	}
	if c.Users.BaseURL != "" && !strings.HasPrefix(c.Users.BaseURL, "http") {
		errs = append(errs, fmt.Errorf("users.base_url %q must be an http(s) URL", c.Users.BaseURL))
	}
	if c.Scheduler.ActivityInterval.Duration <= 0 {
		errs = append(errs, errors.New("scheduler.activity_interval must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(envPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
		return
	}
	*dst = n
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
		return
	}
	dst.Duration = d
}
