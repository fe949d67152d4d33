package observability

import (
	"context"
	"strings"

	"github.com/strikerlab/debutform/internal/config"
	"github.com/strikerlab/debutform/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// InitUptrace points the global OpenTelemetry providers at Uptrace and
// installs the log mirror when log export is on. A disabled config clears
// any mirror left from an earlier init and returns a no-op shutdown.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	dsn := strings.TrimSpace(cfg.UptraceDSN)
	if !cfg.UptraceEnabled || dsn == "" {
		reason := "UPTRACE_ENABLED=false"
		if cfg.UptraceEnabled {
			reason = "UPTRACE_DSN empty"
		}
		logging.SetMirror(nil)
		logger.Info("uptrace disabled", "reason", reason)
		return noopTracingShutdown, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(dsn),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)

	var mirror logging.MirrorFunc
	if cfg.UptraceLogsEnabled {
		mirror = newUptraceLogMirror(cfg.ServiceVersion)
	}
	logging.SetMirror(mirror)

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)

	return func(ctx context.Context) error {
		logging.SetMirror(nil)
		return uptrace.Shutdown(ctx)
	}, nil
}

func noopTracingShutdown(context.Context) error { return nil }
