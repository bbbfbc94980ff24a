package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/usecase"
	"github.com/DevRickLin/feishu-persona-bot/internal/conf"
	"github.com/DevRickLin/feishu-persona-bot/internal/data"
	"github.com/DevRickLin/feishu-persona-bot/internal/infra/feishu"
	"github.com/DevRickLin/feishu-persona-bot/internal/infra/logging"
	"github.com/DevRickLin/feishu-persona-bot/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	personaCfg, personaPath, err := conf.LoadPersonaConfig(cfg.PersonaPath)
	if err != nil {
		logger.Fatal("failed to load persona", zap.Error(err))
	}
	if personaPath == "" {
		logger.Info("using built-in persona")
	} else {
		logger.Info("loaded persona", zap.String("path", personaPath))
	}
	persona := personaCfg.ToPersona()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Restore or create the session, then log in
	store, source, err := data.BootstrapSession(ctx, cfg.SessionFile(), cfg.Session.JSON, logger.Named("session"))
	if err != nil {
		logger.Fatal("failed to open session", zap.Error(err))
	}
	defer store.Close()

	feishuClient := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret, store, logger.Named("feishu"), cfg.Debug)
	bot, err := feishuClient.Login(ctx)
	if err != nil {
		logger.Error("login failed", zap.Error(err))
		os.Exit(1)
	}
	if source == data.SessionNew {
		logger.Info("logged in and saved session", zap.String("path", cfg.SessionFile()))
	}
	if cfg.Feishu.BotHandle == "" {
		cfg.Feishu.BotHandle = bot.AppName
	}
	logger.Info("bot running",
		zap.String("app_id", feishuClient.AppID()),
		zap.String("name", bot.AppName),
		zap.String("open_id", bot.OpenID),
	)

	// Initialize repository layer
	repos := data.NewRepositories(feishuClient, cfg, logger)

	// Initialize usecase layer
	ucs := biz.NewUsecases(repos.Message, repos.Completion, persona, biz.UsecaseConfig{
		SkipInitialBacklog: cfg.Bot.SkipInitialBacklog,
		Decision:           cfg.ToDecisionConfig(),
		Generator:          usecase.DefaultGeneratorConfig(),
	}, usecase.DefaultRandom(), usecase.SleepContext, logger.Named("openai"))

	// Initialize service layer
	loop := service.NewChatLoop(
		service.LoopConfig{
			ThreadID:       cfg.Bot.ThreadID,
			FetchAmount:    cfg.Bot.FetchAmount,
			PollInterval:   cfg.Bot.PollInterval,
			MaxReplyLength: cfg.Bot.MaxReplyLength,
		},
		persona,
		repos.Message,
		ucs.Intake,
		ucs.Decision,
		ucs.Generator,
		ucs.Delivery,
		logger.Named("loop"),
	)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("loop stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutting down")
}
