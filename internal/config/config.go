package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/strikerlab/debutform/internal/platform/logging"
)

// Config stores runtime configuration for the pipeline.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string

	TransfersSnapshot string
	ClubsSnapshot     string
	MatchLogsDir      string
	MappingsDir       string
	EloDir            string
	OutputDir         string

	SnapshotBaseURL      string
	SnapshotFetchTimeout time.Duration
	SnapshotMaxBytes     int

	TopCompetitions     []string
	SeasonsKept         []string
	TransferCutoff      time.Time
	PostTransferMatches int
	FeatureWindowSize   int
	EloMinFromDate      time.Time

	StageWorkers  int
	PlayerWorkers int

	StorageDriver           string
	DBURL                   string
	DBDisablePreparedBinary bool

	CacheEnabled bool
	CacheTTL     time.Duration

	ClubEloEnabled               bool
	ClubEloBaseURL               string
	ClubEloTimeout               time.Duration
	ClubEloMaxRetries            int
	ClubEloRequestDelay          time.Duration
	ClubEloCircuitEnabled        bool
	ClubEloCircuitFailureCount   int
	ClubEloCircuitOpenTimeout    time.Duration
	ClubEloCircuitHalfOpenMaxReq int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	BetterStackEnabled  bool
	BetterStackEndpoint string
	BetterStackToken    string
	BetterStackTimeout  time.Duration
	BetterStackMinLevel logging.Level

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	LogLevel  logging.Level
	LogFormat string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormatDefault := LogFormatJSON
	if appEnv == EnvDev {
		logFormatDefault = LogFormatConsole
	}
	logFormat, err := parseLogFormat(getEnv("APP_LOG_FORMAT", logFormatDefault))
	if err != nil {
		return Config{}, err
	}

	snapshotFetchTimeout, err := time.ParseDuration(getEnv("SNAPSHOT_FETCH_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SNAPSHOT_FETCH_TIMEOUT: %w", err)
	}
	if snapshotFetchTimeout <= 0 {
		return Config{}, fmt.Errorf("SNAPSHOT_FETCH_TIMEOUT must be > 0")
	}
	snapshotMaxBytes, err := getEnvAsInt("SNAPSHOT_MAX_BYTES", 64<<20)
	if err != nil {
		return Config{}, fmt.Errorf("parse SNAPSHOT_MAX_BYTES: %w", err)
	}
	if snapshotMaxBytes <= 0 {
		return Config{}, fmt.Errorf("SNAPSHOT_MAX_BYTES must be > 0")
	}

	topCompetitions := splitCSV(getEnv("PIPELINE_TOP_COMPETITIONS", "FR1,GB1,ES1,IT1,L1"))
	if len(topCompetitions) == 0 {
		return Config{}, fmt.Errorf("PIPELINE_TOP_COMPETITIONS cannot be empty")
	}
	seasonsKept := splitCSV(getEnv("PIPELINE_SEASONS", "20/21,21/22,22/23,23/24,24/25"))
	if len(seasonsKept) == 0 {
		return Config{}, fmt.Errorf("PIPELINE_SEASONS cannot be empty")
	}
	transferCutoff, err := parseDate(getEnv("PIPELINE_TRANSFER_CUTOFF", "2025-04-01"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_TRANSFER_CUTOFF: %w", err)
	}
	postTransferMatches, err := getEnvAsInt("PIPELINE_POST_TRANSFER_MATCHES", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_POST_TRANSFER_MATCHES: %w", err)
	}
	if postTransferMatches < 1 {
		return Config{}, fmt.Errorf("PIPELINE_POST_TRANSFER_MATCHES must be >= 1")
	}
	featureWindowSize, err := getEnvAsInt("PIPELINE_FEATURE_WINDOW", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_FEATURE_WINDOW: %w", err)
	}
	if featureWindowSize < 1 {
		return Config{}, fmt.Errorf("PIPELINE_FEATURE_WINDOW must be >= 1")
	}
	eloMinFromDate, err := parseDate(getEnv("PIPELINE_ELO_MIN_FROM_DATE", "2020-01-01"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_ELO_MIN_FROM_DATE: %w", err)
	}

	stageWorkers, err := getEnvAsInt("PIPELINE_STAGE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_STAGE_WORKERS: %w", err)
	}
	if stageWorkers < 1 {
		return Config{}, fmt.Errorf("PIPELINE_STAGE_WORKERS must be >= 1")
	}
	playerWorkers, err := getEnvAsInt("PIPELINE_PLAYER_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_PLAYER_WORKERS: %w", err)
	}
	if playerWorkers < 1 {
		return Config{}, fmt.Errorf("PIPELINE_PLAYER_WORKERS must be >= 1")
	}

	storageDriver, err := parseStorageDriver(getEnv("STORAGE_DRIVER", DriverMemory))
	if err != nil {
		return Config{}, err
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storageDriver == DriverPostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORAGE_DRIVER=postgres")
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	clubEloEnabled, err := strconv.ParseBool(getEnv("CLUBELO_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBELO_ENABLED: %w", err)
	}
	clubEloBaseURL := strings.TrimSpace(getEnv("CLUBELO_BASE_URL", "http://api.clubelo.com"))
	if clubEloEnabled && clubEloBaseURL == "" {
		return Config{}, fmt.Errorf("CLUBELO_BASE_URL is required when CLUBELO_ENABLED=true")
	}
	clubEloTimeout, err := time.ParseDuration(getEnv("CLUBELO_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBELO_TIMEOUT: %w", err)
	}
	if clubEloTimeout <= 0 {
		return Config{}, fmt.Errorf("CLUBELO_TIMEOUT must be > 0")
	}
	clubEloMaxRetries, err := getEnvAsInt("CLUBELO_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBELO_MAX_RETRIES: %w", err)
	}
	if clubEloMaxRetries < 0 {
		return Config{}, fmt.Errorf("CLUBELO_MAX_RETRIES must be >= 0")
	}
	clubEloRequestDelay, err := time.ParseDuration(getEnv("CLUBELO_REQUEST_DELAY", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBELO_REQUEST_DELAY: %w", err)
	}
	if clubEloRequestDelay < 0 {
		return Config{}, fmt.Errorf("CLUBELO_REQUEST_DELAY must be >= 0")
	}
	clubEloCircuitEnabled, err := strconv.ParseBool(getEnv("CLUBELO_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBELO_CIRCUIT_ENABLED: %w", err)
	}
	clubEloCircuitFailureCount, err := getEnvAsInt("CLUBELO_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBELO_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if clubEloCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CLUBELO_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	clubEloCircuitOpenTimeout, err := time.ParseDuration(getEnv("CLUBELO_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBELO_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if clubEloCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CLUBELO_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	clubEloCircuitHalfOpenMaxReq, err := getEnvAsInt("CLUBELO_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUBELO_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if clubEloCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("CLUBELO_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofAddr == "" {
		pprofAddr = ":6060"
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackMinLevel := parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "debutform-pipeline"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		TransfersSnapshot:            getEnv("PIPELINE_TRANSFERS_SNAPSHOT", "./data/transfermarkt/transfers.csv"),
		ClubsSnapshot:                getEnv("PIPELINE_CLUBS_SNAPSHOT", "./data/transfermarkt/clubs.csv"),
		MatchLogsDir:                 getEnv("PIPELINE_MATCH_LOGS_DIR", "./data/fbref/match-logs"),
		MappingsDir:                  getEnv("PIPELINE_MAPPINGS_DIR", "./data/mappings"),
		EloDir:                       getEnv("PIPELINE_ELO_DIR", "./data/club-elo"),
		OutputDir:                    getEnv("PIPELINE_OUTPUT_DIR", "./data/output"),
		SnapshotBaseURL:              strings.TrimSpace(getEnv("SNAPSHOT_BASE_URL", "")),
		SnapshotFetchTimeout:         snapshotFetchTimeout,
		SnapshotMaxBytes:             snapshotMaxBytes,
		TopCompetitions:              topCompetitions,
		SeasonsKept:                  seasonsKept,
		TransferCutoff:               transferCutoff,
		PostTransferMatches:          postTransferMatches,
		FeatureWindowSize:            featureWindowSize,
		EloMinFromDate:               eloMinFromDate,
		StageWorkers:                 stageWorkers,
		PlayerWorkers:                playerWorkers,
		StorageDriver:                storageDriver,
		DBURL:                        dbURL,
		DBDisablePreparedBinary:      dbDisablePreparedBinary,
		CacheEnabled:                 cacheEnabled,
		CacheTTL:                     cacheTTL,
		ClubEloEnabled:               clubEloEnabled,
		ClubEloBaseURL:               clubEloBaseURL,
		ClubEloTimeout:               clubEloTimeout,
		ClubEloMaxRetries:            clubEloMaxRetries,
		ClubEloRequestDelay:          clubEloRequestDelay,
		ClubEloCircuitEnabled:        clubEloCircuitEnabled,
		ClubEloCircuitFailureCount:   clubEloCircuitFailureCount,
		ClubEloCircuitOpenTimeout:    clubEloCircuitOpenTimeout,
		ClubEloCircuitHalfOpenMaxReq: clubEloCircuitHalfOpenMaxReq,
		PprofEnabled:                 pprofEnabled,
		PprofAddr:                    pprofAddr,
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		UptraceLogsEnabled:           uptraceLogsEnabled,
		BetterStackEnabled:           betterStackEnabled,
		BetterStackEndpoint:          betterStackEndpoint,
		BetterStackToken:             strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:           betterStackTimeout,
		BetterStackMinLevel:          betterStackMinLevel,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
		LogLevel:                     parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                    logFormat,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if !cfg.TransferCutoff.After(cfg.EloMinFromDate) {
		return Config{}, fmt.Errorf("PIPELINE_TRANSFER_CUTOFF must be after PIPELINE_ELO_MIN_FROM_DATE")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
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

func parseDate(v string) (time.Time, error) {
	out, err := time.Parse("2006-01-02", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, err
	}

	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseStorageDriver(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case DriverMemory, DriverPostgres:
		return value, nil
	default:
		return "", fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", v, DriverMemory, DriverPostgres)
	}
}

func parseLogFormat(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case LogFormatJSON, LogFormatConsole:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are %s, %s", v, LogFormatJSON, LogFormatConsole)
	}
}
