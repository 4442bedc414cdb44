package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Directory backends.
const (
	DirectoryBackendSheets   = "sheets"
	DirectoryBackendPostgres = "postgres"
)

// Session cache backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Directory DirectoryConfig
	Session   SessionConfig
	Assets    AssetsConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
}

type ServiceConfig struct {
	Name                       string
	Version                    string
	Env                        string
	Port                       string
	ShutdownTimeoutSeconds     int
	ReadinessDrainDelaySeconds int
}

type LoggingConfig struct {
	Level string
}

// DirectoryConfig selects and configures the backing user store.
// The sheets backend reads the tab named SheetName inside the spreadsheet
// SheetID; the postgres backend scans the UsersTable relation.
type DirectoryConfig struct {
	Backend         string
	SheetID         string
	SheetName       string
	CredentialsFile string
	DatabaseURL     string
	UsersTable      string
}

type SessionConfig struct {
	Backend    string
	RedisAddr  string
	TTLSeconds int
}

// AssetsConfig configures the banner asset and its cache. CacheTTLSeconds is
// a ceiling: a single cache put never exceeds it.
type AssetsConfig struct {
	LogoFileID      string
	CacheTTLSeconds int
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// Load reads configuration from the environment, sourcing a .env file first
// in dev environments.
func Load() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		Service: ServiceConfig{
			Name:                       getEnv("SERVICE_NAME", "authgate"),
			Version:                    getEnv("SERVICE_VERSION", "dev"),
			Env:                        getEnv("ENV", "production"),
			Port:                       getEnv("SERVICE_PORT", "8080"),
			ShutdownTimeoutSeconds:     getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 15),
			ReadinessDrainDelaySeconds: getEnvInt("READINESS_DRAIN_DELAY_SECONDS", 0),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Directory: DirectoryConfig{
			Backend:         getEnv("DIRECTORY_BACKEND", DirectoryBackendPostgres),
			SheetID:         getEnv("SHEET_ID", ""),
			SheetName:       getEnv("SHEET_NAME", "login_credential"),
			CredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
			DatabaseURL:     getEnv("DATABASE_URL", ""),
			UsersTable:      getEnv("USERS_TABLE", "login_credential"),
		},
		Session: SessionConfig{
			Backend:    getEnv("SESSION_BACKEND", SessionBackendMemory),
			RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
			TTLSeconds: getEnvInt("SESSION_TTL_SECONDS", 3600),
		},
		Assets: AssetsConfig{
			LogoFileID:      getEnv("LOGO_FILE_ID", ""),
			CacheTTLSeconds: getEnvInt("ASSET_CACHE_TTL_SECONDS", 21600),
			MinioEndpoint:   getEnv("MINIO_ENDPOINT", ""),
			MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
			MinioSecretKey:  getEnv("MINIO_SECRET_KEY", ""),
			MinioBucket:     getEnv("MINIO_BUCKET", ""),
			MinioUseSSL:     getEnvBool("MINIO_USE_SSL", false),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
	}
}

// Validate fails fast on settings that would only surface as runtime errors
// deep inside a request.
func (c Config) Validate() error {
	if c.Service.Port == "" {
		return fmt.Errorf("SERVICE_PORT must not be empty")
	}

	switch c.Directory.Backend {
	case DirectoryBackendSheets:
		if c.Directory.SheetID == "" {
			return fmt.Errorf("SHEET_ID is required for the sheets directory backend")
		}
		if c.Directory.SheetName == "" {
			return fmt.Errorf("SHEET_NAME is required for the sheets directory backend")
		}
	case DirectoryBackendPostgres:
		if c.Directory.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres directory backend")
		}
		if c.Directory.UsersTable == "" {
			return fmt.Errorf("USERS_TABLE is required for the postgres directory backend")
		}
	default:
		return fmt.Errorf("unknown DIRECTORY_BACKEND %q", c.Directory.Backend)
	}

	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}

	if c.Session.TTLSeconds <= 0 {
		return fmt.Errorf("SESSION_TTL_SECONDS must be positive, got %d", c.Session.TTLSeconds)
	}
	if c.Assets.CacheTTLSeconds <= 0 {
		return fmt.Errorf("ASSET_CACHE_TTL_SECONDS must be positive, got %d", c.Assets.CacheTTLSeconds)
	}

	if c.Assets.LogoFileID != "" {
		if c.Assets.MinioEndpoint == "" || c.Assets.MinioAccessKey == "" || c.Assets.MinioSecretKey == "" || c.Assets.MinioBucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET are required when LOGO_FILE_ID is set")
		}
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be within [0, 1], got %g", c.Tracing.SampleRate)
	}

	return nil
}

// SessionTTL returns the session time-to-live as a duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}

// AssetCacheTTL returns the asset cache ceiling as a duration.
func (c Config) AssetCacheTTL() time.Duration {
	return time.Duration(c.Assets.CacheTTLSeconds) * time.Second
}

// GetShutdownTimeoutDuration returns how long graceful shutdown may take.
func (c Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.Service.ShutdownTimeoutSeconds) * time.Second
}

// GetReadinessDrainDelayDuration returns how long to keep serving after the
// readiness probe starts failing.
func (c Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.Service.ReadinessDrainDelaySeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}
