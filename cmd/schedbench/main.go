package main

import (
	"flag"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"schedbench/internal/app"
	"schedbench/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")

	// Инициализация логгера
	logger := initLogger("info")
	defer logger.Sync()

	configReader := infrastructure.NewYAMLConfigReader(logger)
	configReader.RegisterFlags(flag.CommandLine)
	flag.Parse()

	// Чтение конфигурации
	config, err := configReader.ReadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to read config", zap.Error(err))
	}

	// Обновляем уровень логирования
	if config.LogFile != "" {
		logger = initLogger(config.LogLevel, "stderr", config.LogFile)
	} else {
		logger = initLogger(config.LogLevel)
	}

	// Базовое значение GOMAXPROCS с учётом квоты контейнера
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof)); err != nil {
		logger.Warn("Failed to set GOMAXPROCS", zap.Error(err))
	}

	bench := app.NewBench(logger, config,
		infrastructure.NewPPMFileWriter(logger),
		infrastructure.NewPPMFileReader(logger),
		infrastructure.NewConsoleReporter(logger, os.Stdout))

	logger.Info("Starting benchmark",
		zap.Ints("threads", config.Threads),
		zap.Bool("histogram", config.Histogram.Enabled),
		zap.Bool("mandelbrot", config.Mandelbrot.Enabled))

	if err := bench.Run(); err != nil {
		logger.Fatal("Benchmark aborted", zap.Error(err))
	}

	logger.Info("Benchmark completed successfully")
}

// initLogger initializes the logger with the specified level and output paths.
func initLogger(level string, outputPaths ...string) *zap.Logger {
	config := zap.NewProductionConfig()

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if len(outputPaths) == 0 {
		outputPaths = []string{"stderr"}
	}

	config.OutputPaths = outputPaths
	config.ErrorOutputPaths = outputPaths
	config.EncoderConfig.TimeKey = "t"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	config.DisableCaller = false

	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
