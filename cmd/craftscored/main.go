package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-craftscore"
	"github.com/anatolykoptev/go-craftscore/internal/config"
	"github.com/anatolykoptev/go-craftscore/internal/logger"
	"github.com/anatolykoptev/go-craftscore/internal/transport"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded; using process environment")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)

	scorer := cfg.Scorer()
	scorer.OnPanic = func(tag string, r any) {
		logger.WithFields(logrus.Fields{"extractor": tag, "panic": r}).Warn("Extractor recovered from panic")
	}

	logger.WithFields(logrus.Fields{
		"detected": craftscore.Detected().String(),
		"disabled": cfg.Disabled.String(),
	}).Info("Capabilities probed")

	// The write timeout leaves room to answer after a detection hits its deadline.
	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      transport.NewHandler(scorer, cfg),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"address": cfg.ServerAddress(),
			"timeout": cfg.RequestTimeout,
		}).Info("Starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Logger.Info("Server exited")
}
