// Command tgbot answers Vsa calculations over Telegram long polling.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Vsa/internal/config"
	"Vsa/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if cfg.TokenBot == "" {
		slog.Error("TOKEN_BOT missing")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b := &bot{api: newClient(apiBase, cfg.TokenBot), defaultRho: cfg.DefaultRho}
	b.poll(ctx)
	slog.Info("bot stopped")
}

func (b *bot) poll(ctx context.Context) {
	offset := 0
	for {
		updates, err := b.api.getUpdates(ctx, offset)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			slog.Warn("getUpdates", "error", err)
			if !sleep(ctx, 2*time.Second) {
				return
			}
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			reply := b.handle(u.Message.Text)
			if reply == "" {
				continue
			}
			if err := b.api.sendMessage(ctx, u.Message.Chat.ID, reply); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("sendMessage", "chat", u.Message.Chat.ID, "error", err)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
