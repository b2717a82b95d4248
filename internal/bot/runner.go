package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-presence-bot/internal/repo"
)

// Runner drives the long-poll update loop and feeds inbound messages to the
// dispatcher.
type Runner struct {
	API      *tgbotapi.BotAPI
	Dispatch *Dispatcher
	Log      zerolog.Logger

	// PollTimeout is the long-poll timeout in seconds.
	PollTimeout int
}

// Connect authenticates against the Bot API. An invalid token is a startup
// precondition failure and must abort the service.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("verify bot token: %w", err)
	}
	return api, nil
}

// Run blocks consuming updates until ctx is cancelled. Each message is
// handled on its own goroutine so a slow chat cannot stall the poll loop.
func (r *Runner) Run(ctx context.Context) error {
	r.Log.Info().Str("bot", r.API.Self.UserName).Msg("bot is starting")
	defer r.Log.Info().Msg("bot is stopping")

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = r.PollTimeout
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30
	}
	cfg.AllowedUpdates = []string{tgbotapi.UpdateTypeMessage}
	updates := r.API.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			r.API.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := update.Message
			if msg == nil || msg.From == nil || !msg.IsCommand() {
				continue
			}

			inbound := Message{
				UserID:    msg.From.ID,
				ChatID:    msg.Chat.ID,
				MessageID: msg.MessageID,
				Private:   msg.Chat.IsPrivate(),
				Name: repo.NameFields{
					NickName:  msg.From.UserName,
					FirstName: msg.From.FirstName,
					LastName:  msg.From.LastName,
				},
				Text: msg.Text,
			}

			go func() {
				if err := r.Dispatch.HandleMessage(ctx, inbound); err != nil {
					r.Log.Error().Err(err).
						Int64("chat_id", inbound.ChatID).
						Int64("user_id", inbound.UserID).
						Msg("command handling failed")
				}
			}()
		}
	}
}
