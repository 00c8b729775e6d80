package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"photopost/internal/adapters/postgres"
	"photopost/internal/adapters/telegram"
	"photopost/internal/bot/handlers"
	"photopost/internal/dialogue"
	"photopost/internal/pipeline"
	"photopost/internal/queue"
	"photopost/internal/reactions"
	"photopost/internal/shared/config"
	"photopost/internal/shared/logger"
	"photopost/internal/shared/metrics"
)

const version = "1.1.0"

const pollingWorkers = 4

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	baseLogger := logger.New(cfg.AppEnv)
	baseLogger.Info().Str("version", version).Msg("Logger initialized")

	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Int64("channel_id", cfg.ChannelID).
		Str("scratch_dir", cfg.ScratchDir).
		Msg("Configuration loaded")

	// 3. Initialize Database
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.DatabaseURL, baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// 4. Initialize Repositories
	userRepo := postgres.NewUserRepository(db, baseLogger)
	subRepo := postgres.NewSubmissionRepository(db, baseLogger)
	reactionRepo := postgres.NewReactionRepository(db, baseLogger)
	banRepo := postgres.NewBanRepository(db, baseLogger)
	workQueue := postgres.NewWorkQueue(db, baseLogger)
	dialogueStore := postgres.NewDialogueStore(db, baseLogger)

	// 5. Initialize the Telegram API client
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize Telegram API")
	}
	baseLogger.Info().Str("bot", api.Self.UserName).Msg("Authorized on Telegram")
	botClient := telegram.NewClient(api, baseLogger)

	// 6. Assemble the publish pipeline and its queue consumer
	converter := pipeline.NewHeifConverter(cfg.HeifConvertBin, baseLogger)
	publisher := pipeline.NewPublisher(botClient, cfg.ChannelID, baseLogger)
	pipe := pipeline.New(subRepo, userRepo, botClient, publisher, converter, cfg.ScratchDir, baseLogger)

	worker := queue.NewWorker(subRepo, pipe, botClient, baseLogger)
	consumer := queue.NewConsumer(
		workQueue, worker,
		cfg.QueueLease, cfg.QueuePoll,
		cfg.RetryAttempts, cfg.RetryDelay,
		baseLogger,
	)
	go consumer.Run(ctx)

	// 7. Assemble the bot surface
	machine := dialogue.NewMachine(dialogueStore, baseLogger)
	reconciler := reactions.NewReconciler(subRepo, reactionRepo, cfg.ChannelID, baseLogger)

	router := telegram.NewRouter(userRepo, banRepo, baseLogger)
	router.RegisterCommandHandler(handlers.NewStartHandler(botClient, baseLogger))
	router.RegisterCommandHandler(handlers.NewHelpHandler(botClient, version, baseLogger))
	router.SetCallbackHandler(handlers.NewModerationHandler(machine, workQueue, subRepo, botClient, baseLogger))
	router.SetMessageHandler(handlers.NewMessageHandler(machine, workQueue, subRepo, banRepo, botClient, cfg.AdminUserID, baseLogger))
	router.SetReactionHandler(reconciler)

	// 8. Metrics listener
	if cfg.MetricsAddr != "" {
		go metrics.Serve(cfg.MetricsAddr, baseLogger)
	}

	// 9. Run until a shutdown signal arrives
	server := telegram.NewBotServer(api, router, pollingWorkers, baseLogger)
	if err := server.Start(ctx); err != nil {
		baseLogger.Fatal().Err(err).Msg("Bot server failed")
	}
	baseLogger.Info().Msg("Shutdown complete")
}
