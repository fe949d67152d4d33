package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_PipelineDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.TopCompetitions) != 5 || cfg.TopCompetitions[0] != "FR1" {
		t.Fatalf("unexpected top competitions: %+v", cfg.TopCompetitions)
	}
	if len(cfg.SeasonsKept) != 5 || cfg.SeasonsKept[0] != "20/21" {
		t.Fatalf("unexpected seasons: %+v", cfg.SeasonsKept)
	}
	if got := cfg.TransferCutoff.Format("2006-01-02"); got != "2025-04-01" {
		t.Fatalf("unexpected transfer cutoff: %s", got)
	}
	if cfg.PostTransferMatches != 10 {
		t.Fatalf("unexpected post transfer match count: %d", cfg.PostTransferMatches)
	}
	if cfg.FeatureWindowSize != 5 {
		t.Fatalf("unexpected feature window: %d", cfg.FeatureWindowSize)
	}
	if cfg.StorageDriver != DriverMemory {
		t.Fatalf("unexpected storage driver: %s", cfg.StorageDriver)
	}
	if cfg.SnapshotBaseURL != "" {
		t.Fatalf("expected empty snapshot base url by default, got %q", cfg.SnapshotBaseURL)
	}
	if cfg.LogFormat != LogFormatConsole {
		t.Fatalf("expected console log format in dev, got %s", cfg.LogFormat)
	}
}

func TestLoad_ProdDefaultsToJSONLogs(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_LOG_FORMAT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Fatalf("expected json log format in prod, got %s", cfg.LogFormat)
	}
}

func TestLoad_SelectionConstantOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PIPELINE_TOP_COMPETITIONS", " GB1 , ES1 ")
	t.Setenv("PIPELINE_SEASONS", "23/24,24/25")
	t.Setenv("PIPELINE_TRANSFER_CUTOFF", "2024-06-30")
	t.Setenv("PIPELINE_POST_TRANSFER_MATCHES", "5")
	t.Setenv("PIPELINE_FEATURE_WINDOW", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.TopCompetitions) != 2 || cfg.TopCompetitions[1] != "ES1" {
		t.Fatalf("unexpected top competitions: %+v", cfg.TopCompetitions)
	}
	if len(cfg.SeasonsKept) != 2 {
		t.Fatalf("unexpected seasons length: %d", len(cfg.SeasonsKept))
	}
	if got := cfg.TransferCutoff.Format("2006-01-02"); got != "2024-06-30" {
		t.Fatalf("unexpected cutoff: %s", got)
	}
	if cfg.PostTransferMatches != 5 {
		t.Fatalf("unexpected post transfer match count: %d", cfg.PostTransferMatches)
	}
	if cfg.FeatureWindowSize != 3 {
		t.Fatalf("unexpected feature window: %d", cfg.FeatureWindowSize)
	}
}

func TestLoad_InvalidCutoffDate(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PIPELINE_TRANSFER_CUTOFF", "04/01/2025")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid PIPELINE_TRANSFER_CUTOFF")
	}
}

func TestLoad_PostgresRequiresDBURL(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when STORAGE_DRIVER=postgres without DB_URL")
	}
}

func TestLoad_InvalidStorageDriver(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid STORAGE_DRIVER")
	}
}

func TestLoad_ClubEloConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("CLUBELO_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.ClubEloEnabled {
			t.Fatalf("expected ClubEloEnabled=false by default")
		}
		if cfg.ClubEloBaseURL != "http://api.clubelo.com" {
			t.Fatalf("unexpected default base url: %q", cfg.ClubEloBaseURL)
		}
		if cfg.ClubEloRequestDelay != time.Second {
			t.Fatalf("unexpected default request delay: %s", cfg.ClubEloRequestDelay)
		}
	})

	t.Run("negative delay rejected", func(t *testing.T) {
		t.Setenv("CLUBELO_REQUEST_DELAY", "-1s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative CLUBELO_REQUEST_DELAY")
		}
	})

	t.Run("enabled with overrides", func(t *testing.T) {
		t.Setenv("CLUBELO_ENABLED", "true")
		t.Setenv("CLUBELO_REQUEST_DELAY", "250ms")
		t.Setenv("CLUBELO_MAX_RETRIES", "2")
		t.Setenv("CLUBELO_TIMEOUT", "10s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.ClubEloEnabled {
			t.Fatalf("expected ClubEloEnabled=true")
		}
		if cfg.ClubEloRequestDelay != 250*time.Millisecond {
			t.Fatalf("unexpected request delay: %s", cfg.ClubEloRequestDelay)
		}
		if cfg.ClubEloMaxRetries != 2 {
			t.Fatalf("unexpected max retries: %d", cfg.ClubEloMaxRetries)
		}
		if cfg.ClubEloTimeout != 10*time.Second {
			t.Fatalf("unexpected timeout: %s", cfg.ClubEloTimeout)
		}
	})
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_BetterStackRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "debutform-pipeline-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "debutform-pipeline-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_WorkerCountValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PIPELINE_PLAYER_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for PIPELINE_PLAYER_WORKERS=0")
	}
}
