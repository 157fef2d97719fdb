package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/docdiff/internal/config"
	"github.com/aleister1102/docdiff/internal/datastore"
	"github.com/aleister1102/docdiff/internal/extractor"
	"github.com/aleister1102/docdiff/internal/logger"
	"github.com/aleister1102/docdiff/internal/server"
	"github.com/aleister1102/docdiff/internal/session"
	"github.com/aleister1102/docdiff/internal/summarizer"
)

func main() {
	// Flags
	globalConfigFile := flag.String("globalconfig", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("gc", "", "Alias for --globalconfig")

	listenAddr := flag.String("listen", "", "Listen address for the HTTP server (overrides config file if set)")
	flag.Parse()

	// Consolidate alias flags
	if *globalConfigFile == "" && *globalConfigFileAlias != "" {
		*globalConfigFile = *globalConfigFileAlias
	}

	gCfg, err := config.LoadGlobalConfig(*globalConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", *globalConfigFile, err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}
	zLogger.Info().Msg("Logger initialized successfully.")

	if *listenAddr != "" {
		gCfg.ServerConfig.ListenAddr = *listenAddr
		zLogger.Info().Str("listen_addr", *listenAddr).Msg("Listen address overridden by command line flag.")
	}

	if gCfg.SummarizerConfig.APIKey == "" {
		zLogger.Warn().Msg("No summarizer API key configured (config or GEMINI_API_KEY). Comparisons of differing documents will fail at the summarization step.")
	}

	historyStore, err := datastore.NewHistoryStore(&gCfg.StorageConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Str("db_path", gCfg.StorageConfig.SQLiteDBPath).Msg("Failed to initialize history store")
	}
	defer historyStore.Close()

	summaryClient := summarizer.NewClient(gCfg.SummarizerConfig, zLogger, &http.Client{
		Timeout: time.Duration(gCfg.SummarizerConfig.TimeoutSecs) * time.Second,
	})

	sessionManager := session.NewManager(zLogger, summaryClient, historyStore)
	textExtractor := extractor.NewExtractor(zLogger)

	srv := server.NewServer(gCfg.ServerConfig, zLogger, sessionManager, textExtractor)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, initiating graceful shutdown...")
		if err := srv.Stop(context.Background()); err != nil {
			zLogger.Error().Err(err).Msg("HTTP server shutdown error")
		}
		cancel()
	}()

	if err := srv.Start(); err != nil {
		zLogger.Fatal().Err(err).Msg("HTTP server failed")
	}

	<-ctx.Done()
	zLogger.Info().Msg("Application finished.")
}
