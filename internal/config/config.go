package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bandly-go/pkg/logger"
)

const (
	StorageDriverFile     = "file"
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverBolt     = "bolt"
)

type Config struct {
	HTTPPort  string
	Env       string
	HTTP      HTTPConfig
	Storage   StorageConfig
	DB        DBConfig
	Dashboard DashboardConfig
	CORS      CORSConfig
	Metrics   MetricsConfig
}

type HTTPConfig struct {
	RequestTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type StorageConfig struct {
	Driver     string
	DataKey    string
	UserKey    string
	FileDir    string
	SQLitePath string
	BoltPath   string
	BoltBucket string
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type DashboardConfig struct {
	UpcomingLimit   int
	TopMembersLimit int
	Timezone        string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		HTTP: HTTPConfig{
			RequestTimeout:  getEnvDuration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverFile)),
			DataKey:    getEnv("STORAGE_DATA_KEY", "bandly-data"),
			UserKey:    getEnv("STORAGE_USER_KEY", "bandly-user"),
			FileDir:    getEnv("STORAGE_FILE_DIR", "data"),
			SQLitePath: getEnv("STORAGE_SQLITE_PATH", "bandly.db"),
			BoltPath:   getEnv("STORAGE_BOLT_PATH", "bandly.bolt"),
			BoltBucket: getEnv("STORAGE_BOLT_BUCKET", "bandly"),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "bandly"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Dashboard: DashboardConfig{
			UpcomingLimit:   getEnvInt("DASHBOARD_UPCOMING_LIMIT", 3),
			TopMembersLimit: getEnvInt("DASHBOARD_TOP_MEMBERS_LIMIT", 5),
			Timezone:        getEnv("DASHBOARD_TIMEZONE", "Local"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverFile, StorageDriverMemory, StorageDriverPostgres, StorageDriverSQLite, StorageDriverBolt:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.DataKey == "" || c.Storage.UserKey == "" {
		return fmt.Errorf("config: storage keys must not be empty")
	}
	if c.Storage.DataKey == c.Storage.UserKey {
		return fmt.Errorf("config: STORAGE_DATA_KEY and STORAGE_USER_KEY must differ")
	}
	if _, err := c.Dashboard.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the dashboard timezone. "Local" and "" mean the host zone.
func (c DashboardConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: DASHBOARD_TIMEZONE: %w", err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
