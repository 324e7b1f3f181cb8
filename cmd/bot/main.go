package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/linkgrab/linkgrab/internal/api"
	"github.com/linkgrab/linkgrab/internal/api/handler"
	"github.com/linkgrab/linkgrab/internal/config"
	"github.com/linkgrab/linkgrab/internal/downloader"
	"github.com/linkgrab/linkgrab/internal/instagram"
	"github.com/linkgrab/linkgrab/internal/repository"
	"github.com/linkgrab/linkgrab/internal/service"
	"github.com/linkgrab/linkgrab/internal/telegram"
	"github.com/linkgrab/linkgrab/internal/youtube"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("linkgrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting linkgrab",
		"version", Version,
		"build_time", BuildTime,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	for _, dir := range []string{cfg.Storage.MediaPath, cfg.Storage.InstagramDir(), cfg.Storage.YouTubeDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create media directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := repository.NewSQLiteUserRepository(db)
	fileRepo := repository.NewSQLiteFileRepository(db)
	linkRepo := repository.NewSQLiteLinkRepository(db)

	dl := downloader.NewHTTPDownloader(cfg.Download)
	instaClient := instagram.NewClient(cfg.Instagram, cfg.Download, cfg.Storage.InstagramDir(), dl, logger)
	ytRunner := youtube.NewRunner(cfg.YouTube, cfg.Storage.YouTubeDir(), dl, logger)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("failed to connect to telegram", "error", err)
		os.Exit(1)
	}
	botAPI.Debug = cfg.Telegram.Debug

	sender := telegram.NewSender(botAPI)
	linkSvc := service.NewLinkService(linkRepo, fileRepo, instaClient, ytRunner, sender, logger)
	userSvc := service.NewUserService(userRepo, logger)
	statsSvc := service.NewStatsService(userRepo, fileRepo, linkRepo)

	bot := telegram.NewBot(botAPI, linkSvc, userSvc, logger)

	router := api.NewRouter(
		handler.NewHealthHandler(statsSvc),
		handler.NewLinkHandler(statsSvc),
		handler.NewMediaHandler(cfg.Storage.MediaPath),
		cfg.Server.APIKey,
	)
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	go func() {
		if err := bot.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("bot loop error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
