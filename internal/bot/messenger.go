// Package bot hosts the Telegram transport: the Messenger implementation over
// the Bot API, the command dispatcher, and the long-poll runner.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// LinkButton is a transport-agnostic inline URL button.
type LinkButton struct {
	Label string
	URL   string
}

// KeyboardSender posts a message carrying inline URL buttons.
type KeyboardSender interface {
	SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]LinkButton) (int, error)
}

// TelegramMessenger adapts the Bot API client to the messenger contract used
// by the synchronizer and dispatcher. The underlying client has no context
// support; cancellation is handled at the call sites that poll it.
type TelegramMessenger struct {
	API *tgbotapi.BotAPI
}

// NewTelegramMessenger wraps an authenticated Bot API client.
func NewTelegramMessenger(api *tgbotapi.BotAPI) *TelegramMessenger {
	return &TelegramMessenger{API: api}
}

// SendText posts an HTML-formatted message and returns its message id.
func (m *TelegramMessenger) SendText(_ context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	sent, err := m.API.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditText rewrites an existing message in place, keeping HTML formatting.
func (m *TelegramMessenger) EditText(_ context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML

	_, err := m.API.Send(edit)
	return err
}

// Pin pins a message; silent suppresses the member notification.
func (m *TelegramMessenger) Pin(_ context.Context, chatID int64, messageID int, silent bool) error {
	_, err := m.API.Request(tgbotapi.PinChatMessageConfig{
		ChatID:              chatID,
		MessageID:           messageID,
		DisableNotification: silent,
	})
	return err
}

// Unpin unpins a message.
func (m *TelegramMessenger) Unpin(_ context.Context, chatID int64, messageID int) error {
	_, err := m.API.Request(tgbotapi.UnpinChatMessageConfig{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}

// Delete removes a message.
func (m *TelegramMessenger) Delete(_ context.Context, chatID int64, messageID int) error {
	_, err := m.API.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// ChatTitle resolves a chat's display title and invite link.
func (m *TelegramMessenger) ChatTitle(_ context.Context, chatID int64) (string, string, error) {
	chat, err := m.API.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return "", "", err
	}
	return chat.Title, chat.InviteLink, nil
}

// SendKeyboard posts a message with inline URL buttons and returns its id.
func (m *TelegramMessenger) SendKeyboard(_ context.Context, chatID int64, text string, rows [][]LinkButton) (int, error) {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
		}
		keyboard = append(keyboard, buttons)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)

	sent, err := m.API.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}
