package service

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// StatusSource answers the /status command.
type StatusSource interface {
	Ready() bool
	Scheduled() int
	LastCycle() time.Time
	LastTrade() time.Time
	Uptime() time.Duration
}

// Telegram: алерты оператору + команда /status.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	status StatusSource
	log    *zap.Logger
}

func NewTelegram(token string, chatID int64, status StatusSource, log *zap.Logger) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
		status: status,
		log:    log,
	}, nil
}

func (t *Telegram) Send(msg string) error {
	_, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg))
	return err
}

// Alert never fails the caller; delivery errors are only logged.
func (t *Telegram) Alert(_ context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if err := t.Send(msg); err != nil {
		t.log.Warn("telegram alert not delivered", zap.String("alert", msg), zap.Error(err))
	}
}

// Start: long-polling для команд из чата оператора.
func (t *Telegram) Start(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				if upd.Message == nil || upd.Message.Chat == nil ||
					upd.Message.Chat.ID != t.chatID || !upd.Message.IsCommand() {
					continue
				}
				switch upd.Message.Command() {
				case "status":
					if err := t.Send(FormatStatus(t.status)); err != nil {
						t.log.Warn("telegram status not delivered", zap.Error(err))
					}
				}
			}
		}
	}()
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}

// FormatStatus renders the health snapshot for the chat.
func FormatStatus(s StatusSource) string {
	ready := "⏳ starting"
	if s.Ready() {
		ready = "✅ ready"
	}
	return fmt.Sprintf("🩺 %s | scheduled=%d | uptime=%s\nlast cycle: %s\nlast trade: %s",
		ready,
		s.Scheduled(),
		s.Uptime().Truncate(time.Second),
		formatTime(s.LastCycle()),
		formatTime(s.LastTrade()),
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}

// Stdout: заглушка без токена, алерты уходят в лог.
type Stdout struct {
	log *zap.Logger
}

func NewStdout(log *zap.Logger) *Stdout { return &Stdout{log: log} }

func (s *Stdout) Alert(_ context.Context, format string, args ...any) {
	s.log.Warn("ALERT", zap.String("alert", fmt.Sprintf(format, args...)))
}
