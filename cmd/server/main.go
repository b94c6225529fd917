package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/gmolate/anonimizarpy/internal/observability/metrics"
	"github.com/gmolate/anonimizarpy/internal/server"
	"github.com/gmolate/anonimizarpy/pkg/constants"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()

	config := server.NewDefaultConfig()
	if port := viper.GetInt("port"); port != 0 {
		config.Server.Port = port
	}
	if env := viper.GetString("environment"); env != "" {
		config.Environment = env
	}
	if err := config.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	collector, err := metrics.NewCollector(nil, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize metrics")
	}

	handlers := server.NewHandlers(config, logger, collector)
	router := server.NewRouter(config, handlers, collector, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := router.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}
