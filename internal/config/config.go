package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      string

	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string

	StateBackend            string
	LeagueKey               string
	DBURL                   string
	DBDisablePreparedBinary bool
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	RedisStateKey           string
	LocalStatePath          string
	StateHistoryLimit       int

	RemoteCircuitEnabled        bool
	RemoteCircuitFailureCount   int
	RemoteCircuitOpenTimeout    time.Duration
	RemoteCircuitHalfOpenMaxReq int

	CacheEnabled bool
	CacheTTL     time.Duration

	DeadlineCheckSpec        string
	DeadlineLocation         *time.Location
	DraftReverseChiltonOrder bool
	ScoringWorkers           int

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

// LoadDotEnv reads variables from the given files (default ".env") without
// overriding the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormat := logging.FormatJSON
	if appEnv == EnvDev {
		logFormat = logging.FormatConsole
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "f1-draft-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("APP_LOG_FORMAT", logFormat)),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LeagueKey:          strings.TrimSpace(getEnv("LEAGUE_KEY", "default")),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		RedisAddr:          strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379")),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisStateKey:      strings.TrimSpace(getEnv("REDIS_STATE_KEY", "f1draft:state")),
		LocalStatePath:     strings.TrimSpace(getEnv("LOCAL_STATE_PATH", "")),
		DeadlineCheckSpec:  strings.TrimSpace(getEnv("DEADLINE_CHECK_SPEC", "@every 10s")),
		UptraceDSN:         strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PprofAddr:          strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),

		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if cfg.LogFormat != logging.FormatJSON && cfg.LogFormat != logging.FormatConsole {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are json, console", cfg.LogFormat)
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.ReadTimeout, err = parsePositiveDuration("HTTP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = parsePositiveDuration("HTTP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}

	cfg.StateBackend = strings.ToLower(strings.TrimSpace(getEnv("STATE_BACKEND", BackendMemory)))
	switch cfg.StateBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.DBURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required when STATE_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("invalid STATE_BACKEND %q: valid values are %s, %s, %s", cfg.StateBackend, BackendMemory, BackendPostgres, BackendRedis)
	}
	if cfg.LeagueKey == "" {
		return Config{}, fmt.Errorf("LEAGUE_KEY cannot be empty")
	}

	if cfg.DBDisablePreparedBinary, err = parseBool("DB_DISABLE_PREPARED_BINARY_RESULT", "true"); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if cfg.RedisDB < 0 {
		return Config{}, fmt.Errorf("REDIS_DB must be >= 0")
	}
	if cfg.StateHistoryLimit, err = getEnvAsInt("STATE_HISTORY_LIMIT", 50); err != nil {
		return Config{}, fmt.Errorf("parse STATE_HISTORY_LIMIT: %w", err)
	}
	if cfg.StateHistoryLimit < 0 {
		return Config{}, fmt.Errorf("STATE_HISTORY_LIMIT must be >= 0")
	}

	if cfg.RemoteCircuitEnabled, err = parseBool("REMOTE_CIRCUIT_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.RemoteCircuitFailureCount, err = getEnvAsInt("REMOTE_CIRCUIT_FAILURE_COUNT", 3); err != nil {
		return Config{}, fmt.Errorf("parse REMOTE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.RemoteCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("REMOTE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.RemoteCircuitOpenTimeout, err = parsePositiveDuration("REMOTE_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return Config{}, err
	}
	if cfg.RemoteCircuitHalfOpenMaxReq, err = getEnvAsInt("REMOTE_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return Config{}, fmt.Errorf("parse REMOTE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.RemoteCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("REMOTE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if cfg.CacheEnabled, err = parseBool("CACHE_ENABLED", "true"); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = parsePositiveDuration("CACHE_TTL", "30s"); err != nil {
		return Config{}, err
	}

	if cfg.DeadlineCheckSpec == "" {
		return Config{}, fmt.Errorf("DEADLINE_CHECK_SPEC cannot be empty")
	}
	tz := strings.TrimSpace(getEnv("DEADLINE_TIMEZONE", "UTC"))
	if cfg.DeadlineLocation, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("parse DEADLINE_TIMEZONE: %w", err)
	}
	if cfg.DraftReverseChiltonOrder, err = parseBool("DRAFT_REVERSE_CHILTON_ORDER", "false"); err != nil {
		return Config{}, err
	}
	if cfg.ScoringWorkers, err = getEnvAsInt("SCORING_WORKERS", 4); err != nil {
		return Config{}, fmt.Errorf("parse SCORING_WORKERS: %w", err)
	}
	if cfg.ScoringWorkers < 1 {
		return Config{}, fmt.Errorf("SCORING_WORKERS must be >= 1")
	}

	if cfg.UptraceEnabled, err = parseBool("UPTRACE_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = parseBool("PYROSCOPE_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = parsePositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return Config{}, err
	}

	if cfg.PprofEnabled, err = parseBool("PPROF_ENABLED", "false"); err != nil {
		return Config{}, err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return cfg, nil
}

func parseBool(key, fallback string) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return v, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}
	return ""
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
