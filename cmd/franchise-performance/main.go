package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/salemate/franchise-performance/internal/commission"
	"github.com/salemate/franchise-performance/internal/comparison"
	"github.com/salemate/franchise-performance/internal/config"
	"github.com/salemate/franchise-performance/internal/insight"
	"github.com/salemate/franchise-performance/internal/metrics"
	"github.com/salemate/franchise-performance/internal/report"
	"github.com/salemate/franchise-performance/internal/server"
	"github.com/salemate/franchise-performance/internal/store"
	"github.com/salemate/franchise-performance/pkg/constants"
	"github.com/salemate/franchise-performance/pkg/format"
	"github.com/salemate/franchise-performance/pkg/output"
	"github.com/salemate/franchise-performance/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	logFormat := loggingConfig.Format
	if logFormat == "" {
		logFormat = "json"
	}

	var zapConfig zap.Config
	switch logFormat {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", logFormat)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	// Reports go to stdout, so logs default to stderr.
	zapConfig.OutputPaths = []string{"stderr"}
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// openSource builds the record source selected by the configuration.
func openSource(conf config.DataConfig, logger *zap.Logger) (store.Source, error) {
	switch conf.Source {
	case config.SourceDatabase:
		return store.OpenDatabase(conf.DSN, logger)
	default:
		return store.OpenFile(conf.File, logger)
	}
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file; without one, defaults and FRANCHISE_* environment apply")
	dataFile := flag.String("data", "", "record dataset override; selects the file source")
	franchiseID := flag.String("franchise", "", "franchise ID or slug to report on")
	compareFlag := flag.String("compare", "", "comma-separated franchise IDs to compare, or 'all'")
	timeFrameFlag := flag.String("timeframe", "", "time frame: weekly, monthly, quarterly, half-year, yearly, all-time")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	languageFlag := flag.String("lang", "", "language of pretty insights (defaults to the primary language)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	importFlag := flag.String("import", "", "dataset file to import into the configured database")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of printing a report")
	serverConfig := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flag.Parse()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	configPath := *configLocation
	if configPath == constants.DefaultConfigFile {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			configPath = ""
		}
	}

	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *dataFile != "" {
		conf.Data.Source = config.SourceFile
		conf.Data.File = *dataFile
	}

	var srvConf *server.Config
	loggingConfig := conf.Logging
	if *serve {
		srvConf, err = server.LoadConfig(*serverConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfig, err)
			os.Exit(1)
		}
		if srvConf.Logging.Level != "" {
			loggingConfig.Level = srvConf.Logging.Level
		}
		if srvConf.Logging.Format != "" {
			loggingConfig.Format = srvConf.Logging.Format
		}
		if srvConf.Logging.OutputFile != "" {
			loggingConfig.OutputFile = srvConf.Logging.OutputFile
		}
	}

	logger, err := initializeLogger(loggingConfig, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning, zap.String("op", "main"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *importFlag != "" {
		runImport(ctx, logger, conf.Data, *importFlag)
		return
	}

	src, err := openSource(conf.Data, logger)
	if err != nil {
		logger.Fatal("failed to open record source",
			zap.String("op", "main"),
			zap.String("source", conf.Data.Source),
			zap.Error(err),
		)
	}

	primary, secondary, err := conf.Insights.Tags()
	if err != nil {
		logger.Fatal("invalid insight languages", zap.String("op", "main"), zap.Error(err))
	}
	rates := conf.Rates.Model()
	insights := insight.NewEngine(logger, format.NewLocaleFormatter(conf.Insights.Currency), primary, secondary)

	var m *metrics.Metrics
	if *serve {
		m = metrics.New()
	}
	builder := report.NewBuilder(logger, rates, src, insights, m).WithComparisonWorkers(conf.Comparison.Workers)

	if *serve {
		runServer(ctx, logger, srvConf, builder, commission.NewCalculator(logger, rates), m)
		return
	}

	tag := primary
	if *languageFlag != "" {
		parsed, err := language.Parse(*languageFlag)
		if err != nil {
			logger.Fatal("invalid language", zap.String("op", "main"), zap.Error(err))
		}
		tag = parsed
	}

	switch {
	case *compareFlag != "":
		tf := conf.Comparison.TimeFrame()
		if *timeFrameFlag != "" {
			if tf, err = comparison.ParseTimeFrame(*timeFrameFlag); err != nil {
				logger.Fatal("invalid time frame", zap.String("op", "main"), zap.Error(err))
			}
		}
		var ids []string
		if strings.TrimSpace(*compareFlag) != "all" {
			ids = comparison.ParseIDs(*compareFlag)
		}
		result, err := builder.Compare(ctx, ids, tf)
		if err != nil {
			logger.Fatal("failed to compare franchises", zap.String("op", "main"), zap.Error(err))
		}
		if err := output.WriteComparison(os.Stdout, outputFormat, result); err != nil {
			logger.Fatal("failed to write comparison", zap.String("op", "main"), zap.Error(err))
		}

	case *franchiseID != "":
		var tf comparison.TimeFrame
		if *timeFrameFlag != "" {
			if tf, err = comparison.ParseTimeFrame(*timeFrameFlag); err != nil {
				logger.Fatal("invalid time frame", zap.String("op", "main"), zap.Error(err))
			}
		}
		rep, err := builder.Franchise(ctx, *franchiseID, tf)
		if err != nil {
			logger.Fatal("failed to build report",
				zap.String("op", "main"),
				zap.String("franchise", *franchiseID),
				zap.Error(err),
			)
		}
		if err := output.WriteReport(os.Stdout, outputFormat, rep, tag); err != nil {
			logger.Fatal("failed to write report", zap.String("op", "main"), zap.Error(err))
		}

	default:
		franchises, err := src.Franchises(ctx)
		if err != nil {
			logger.Fatal("failed to list franchises", zap.String("op", "main"), zap.Error(err))
		}
		for _, f := range franchises {
			fmt.Printf("%s\t%s\t%s\t%d agents\n", f.ID, f.Slug, f.Name, f.Headcount)
		}
	}
}

func runImport(ctx context.Context, logger *zap.Logger, conf config.DataConfig, path string) {
	if conf.Source != config.SourceDatabase {
		logger.Fatal("import requires the database data source", zap.String("op", "main.runImport"))
	}
	file, err := store.OpenFile(path, logger)
	if err != nil {
		logger.Fatal("failed to read dataset", zap.String("op", "main.runImport"), zap.Error(err))
	}
	db, err := store.OpenDatabase(conf.DSN, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("op", "main.runImport"), zap.Error(err))
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("failed to migrate database", zap.String("op", "main.runImport"), zap.Error(err))
	}
	n, err := db.Import(ctx, file)
	if err != nil {
		logger.Fatal("failed to import dataset", zap.String("op", "main.runImport"), zap.Error(err))
	}
	fmt.Printf("imported %d franchises from %s\n", n, path)
}

func runServer(ctx context.Context, logger *zap.Logger, conf *server.Config, builder *report.Builder, calculator *commission.Calculator, m *metrics.Metrics) {
	handler := server.NewHandler(logger, builder, calculator, m, server.Options{
		MaxBodySize: conf.BodySizeBytes(),
		Version:     version,
		TimeFrame:   conf.TimeFrame(),
	})
	srv := &http.Server{
		Addr:         conf.Address,
		Handler:      handler,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("op", "main.runServer"),
			zap.String("address", conf.Address),
			zap.String("version", version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.String("op", "main.runServer"), zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down server", zap.String("op", "main.runServer"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shut down", zap.String("op", "main.runServer"), zap.Error(err))
		}
	}
}
