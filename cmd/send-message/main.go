// Command send-message posts one line to the configured thread through the
// bot's saved session, with the same typing delay the bot uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/DevRickLin/feishu-persona-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-persona-bot/internal/biz/usecase"
	"github.com/DevRickLin/feishu-persona-bot/internal/conf"
	"github.com/DevRickLin/feishu-persona-bot/internal/data"
	"github.com/DevRickLin/feishu-persona-bot/internal/infra/feishu"
	"github.com/DevRickLin/feishu-persona-bot/internal/infra/logging"
)

func main() {
	threadID := flag.String("thread", "", "Chat to post to (default THREAD_ID)")
	noDelay := flag.Bool("no-delay", false, "Send immediately without the typing delay")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("Usage: send-message [-thread <chat_id>] [-no-delay] <message>")
		os.Exit(1)
	}
	text := strings.Join(flag.Args(), " ")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.ValidateFeishu(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if *threadID == "" {
		*threadID = cfg.Bot.ThreadID
	}
	if *threadID == "" {
		log.Fatalf("Invalid config: %v", &conf.ConfigError{Field: "THREAD_ID", Message: "required"})
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, _, err := data.BootstrapSession(ctx, cfg.SessionFile(), cfg.Session.JSON, logger.Named("session"))
	if err != nil {
		logger.Fatal("failed to open session", zap.Error(err))
	}
	defer store.Close()

	client := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret, store, logger.Named("feishu"), cfg.Debug)
	if _, err := client.Login(ctx); err != nil {
		logger.Fatal("login failed", zap.Error(err))
	}

	sleep := usecase.SleepContext
	if *noDelay {
		sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	}
	delivery := usecase.NewDeliveryUsecase(data.NewFeishuRepo(client, logger.Named("feishu")), nil, sleep)

	reply := domain.ShapeReply(text, cfg.Bot.MaxReplyLength)
	delay, err := delivery.Deliver(ctx, *threadID, reply)
	if err != nil {
		logger.Fatal("send failed", zap.Error(err))
	}
	logger.Info("message sent", zap.String("thread_id", *threadID), zap.Duration("delay", delay))
}
