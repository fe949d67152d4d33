package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"

	"github.com/strikerlab/debutform/internal/app"
	"github.com/strikerlab/debutform/internal/config"
	"github.com/strikerlab/debutform/internal/observability"
	"github.com/strikerlab/debutform/internal/platform/logging"
	"github.com/strikerlab/debutform/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	stage := usecase.StageAll
	if len(os.Args) > 1 {
		stage = strings.TrimSpace(os.Args[1])
	}
	if stage == "-h" || stage == "--help" {
		printUsage()
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	baseLogger := logging.NewJSON(cfg.LogLevel)
	if cfg.LogFormat == config.LogFormatConsole {
		baseLogger = logging.NewConsole(cfg.LogLevel)
	}

	logger, flushLogs, err := observability.InitBetterStackLogger(cfg, baseLogger)
	if err != nil {
		baseLogger.Error("init log shipping", "error", err)
		return 1
	}
	logging.SetDefault(logger)

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
			logger.Error("stop pprof server", "error", err)
		}
		if err := stopProfiler(); err != nil {
			logger.Error("stop profiler", "error", err)
		}
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("shutdown tracing", "error", err)
		}
		if err := flushLogs(flushCtx); err != nil {
			logger.Error("flush shipped logs", "error", err)
		}
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("close app", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := application.Pipeline.Run(ctx, usecase.PipelineInput{Stage: stage})
	if err != nil {
		logger.Error("pipeline run failed", "stage", stage, "error", err)
		return 1
	}

	body, err := sonic.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode run result", "error", err)
		return 1
	}
	fmt.Println(string(body))

	if result.FailedCount > 0 {
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Println("usage: pipeline [stage]")
	fmt.Println()
	fmt.Println("Runs the dataset construction pipeline. With no stage, every")
	fmt.Println("stage runs in dependency order. Stages:")
	for _, stage := range usecase.PipelineStages() {
		fmt.Printf("  %s\n", stage)
	}
}
