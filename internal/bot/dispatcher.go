package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-presence-bot/internal/domain"
	"github.com/tbourn/go-presence-bot/internal/presenter"
	"github.com/tbourn/go-presence-bot/internal/repo"
	"github.com/tbourn/go-presence-bot/internal/services"
)

// DefaultRemovalDelay is how long transient bot replies stay in a chat.
const DefaultRemovalDelay = 5 * time.Minute

// StatusOps is the slice of the status service the dispatcher consumes.
type StatusOps interface {
	SetStatus(ctx context.Context, userID, chatID int64, broadcast bool, name repo.NameFields, status domain.Status) ([]int64, error)
	Report(ctx context.Context, userID, chatID int64, broadcast bool) ([]domain.ChatStatusReport, error)
	WebhookTokens(ctx context.Context, userID int64) (map[int64]string, error)
	SetName(ctx context.Context, userID int64, part services.NamePart, value string) error
}

// Anchorer pins a freshly posted message as the chat's current report.
type Anchorer interface {
	Anchor(ctx context.Context, chatID int64, messageID int, msgType domain.MessageType) error
}

// RemovalSink accepts messages for delayed deletion.
type RemovalSink interface {
	ScheduleRemoval(ctx context.Context, chatID int64, messageID int, delay time.Duration)
}

// Message is one inbound chat message, already reduced to what the command
// handlers need.
type Message struct {
	UserID    int64
	ChatID    int64
	MessageID int
	Private   bool
	Name      repo.NameFields
	Text      string
}

// Dispatcher routes inbound commands to the presence core. Replies are
// transient: every bot reply (and, in group chats, the triggering command
// message) is scheduled for delayed removal to keep chats clean.
type Dispatcher struct {
	Statuses  StatusOps
	Anchor    Anchorer
	Removals  RemovalSink
	Messenger services.Messenger
	Keyboard  KeyboardSender
	Present   *presenter.Presenter

	// WebhookBase is the public base URL of the webhook endpoint, without a
	// trailing slash.
	WebhookBase string
	// RemovalDelay is how long transient replies live; zero means the default.
	RemovalDelay time.Duration

	Log zerolog.Logger
}

// HandleMessage processes one inbound message. Unknown commands and plain
// text are ignored. Errors are returned for the caller to log; the dispatcher
// itself already replied to the user where that makes sense.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg Message) error {
	cmd, args := ParseCommand(msg.Text)
	if cmd == CmdUnknown {
		// Plain text is ignored; an unrecognized slash command gets a
		// visible rejection.
		if !strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
			return nil
		}
		d.Log.Info().
			Int64("user_id", msg.UserID).
			Int64("chat_id", msg.ChatID).
			Str("command", msg.Text).
			Msg("unknown command")
		if !msg.Private {
			d.Removals.ScheduleRemoval(ctx, msg.ChatID, msg.MessageID, d.removalDelay())
		}
		return d.replyTransient(ctx, msg.ChatID,
			"Unknown command. Try /came, /left, /stay, /stats or /web_handlers.")
	}

	d.Log.Info().
		Int64("user_id", msg.UserID).
		Int64("chat_id", msg.ChatID).
		Str("command", msg.Text).
		Msg("command received")

	if !msg.Private {
		d.Removals.ScheduleRemoval(ctx, msg.ChatID, msg.MessageID, d.removalDelay())
	}

	switch cmd {
	case CmdStart:
		return d.handleStart(ctx, msg)
	case CmdCame:
		return d.handleStatus(ctx, msg, domain.StatusCameToWork)
	case CmdLeft:
		return d.handleStatus(ctx, msg, domain.StatusLeftWork)
	case CmdStay:
		return d.handleStatus(ctx, msg, domain.StatusStayAtHome)
	case CmdStats:
		return d.handleStats(ctx, msg)
	case CmdWebHandlers:
		return d.handleWebHandlers(ctx, msg)
	case CmdSetNickname:
		return d.handleSetName(ctx, msg, services.NamePartNick, args)
	case CmdSetFirstname:
		return d.handleSetName(ctx, msg, services.NamePartFirst, args)
	case CmdSetLastname:
		return d.handleSetName(ctx, msg, services.NamePartLast, args)
	}
	return nil
}

func (d *Dispatcher) handleStart(ctx context.Context, msg Message) error {
	text := "Hello! I keep track of who is at work and who is at home.\n" +
		"Use /came, /left or /stay to update your status, /stats for the report " +
		"and /web_handlers for your personal webhook links."
	return d.replyTransient(ctx, msg.ChatID, text)
}

func (d *Dispatcher) handleStatus(ctx context.Context, msg Message, status domain.Status) error {
	if _, err := d.Statuses.SetStatus(ctx, msg.UserID, msg.ChatID, msg.Private, msg.Name, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return d.replyTransient(ctx, msg.ChatID, d.Present.StatusConfirmation(status))
}

func (d *Dispatcher) handleStats(ctx context.Context, msg Message) error {
	reports, err := d.Statuses.Report(ctx, msg.UserID, msg.ChatID, msg.Private)
	if err != nil {
		return fmt.Errorf("status report: %w", err)
	}

	sections := make([]presenter.ChatSection, 0, len(reports))
	for _, r := range reports {
		title, _, err := d.Messenger.ChatTitle(ctx, r.ChatID)
		if err != nil {
			d.Log.Warn().Err(err).Int64("chat_id", r.ChatID).Msg("chat title lookup failed")
			title = "not found"
		}
		sections = append(sections, presenter.ChatSection{Title: title, Views: r.Statuses})
	}

	messageID, err := d.Messenger.SendText(ctx, msg.ChatID, d.Present.Stats(sections))
	if err != nil {
		return fmt.Errorf("send stats: %w", err)
	}
	d.Removals.ScheduleRemoval(ctx, msg.ChatID, messageID, d.removalDelay())

	// In a group chat the fresh report becomes the pinned message.
	if !msg.Private {
		if err := d.Anchor.Anchor(ctx, msg.ChatID, messageID, domain.MessageTypeStatus); err != nil {
			return fmt.Errorf("anchor stats message: %w", err)
		}
	}
	return nil
}

func (d *Dispatcher) handleWebHandlers(ctx context.Context, msg Message) error {
	hooks, err := d.Statuses.WebhookTokens(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("webhook tokens: %w", err)
	}
	if len(hooks) == 0 {
		return d.replyTransient(ctx, msg.ChatID, "There are no registered chats for this user!")
	}

	rows := make([][]LinkButton, 0, 2*len(hooks))
	for chatID, hook := range hooks {
		title, invite, err := d.Messenger.ChatTitle(ctx, chatID)
		if err != nil {
			d.Log.Warn().Err(err).Int64("chat_id", chatID).Msg("chat title lookup failed")
			title = "not found"
		}
		if invite != "" {
			rows = append(rows, []LinkButton{{Label: "Chat: " + title, URL: invite}})
		}
		rows = append(rows, []LinkButton{
			{Label: "Came to work", URL: fmt.Sprintf("%s/%s/came", d.WebhookBase, hook)},
			{Label: "Left work", URL: fmt.Sprintf("%s/%s/left", d.WebhookBase, hook)},
			{Label: "Stay at home", URL: fmt.Sprintf("%s/%s/stay", d.WebhookBase, hook)},
		})
	}

	messageID, err := d.Keyboard.SendKeyboard(ctx, msg.ChatID, "Your personal status handlers:", rows)
	if err != nil {
		return fmt.Errorf("send webhook keyboard: %w", err)
	}
	d.Removals.ScheduleRemoval(ctx, msg.ChatID, messageID, d.removalDelay())
	return nil
}

func (d *Dispatcher) handleSetName(ctx context.Context, msg Message, part services.NamePart, value string) error {
	if value == "" {
		return d.replyTransient(ctx, msg.ChatID, "Please provide a value, e.g. /set_nickname neo")
	}

	if err := d.Statuses.SetName(ctx, msg.UserID, part, value); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return d.replyTransient(ctx, msg.ChatID, "Set your status first, then rename yourself.")
		}
		return fmt.Errorf("set name: %w", err)
	}
	return d.replyTransient(ctx, msg.ChatID, "Saved!")
}

// replyTransient sends a reply and schedules it for delayed removal.
func (d *Dispatcher) replyTransient(ctx context.Context, chatID int64, text string) error {
	messageID, err := d.Messenger.SendText(ctx, chatID, text)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	d.Removals.ScheduleRemoval(ctx, chatID, messageID, d.removalDelay())
	return nil
}

func (d *Dispatcher) removalDelay() time.Duration {
	if d.RemovalDelay > 0 {
		return d.RemovalDelay
	}
	return DefaultRemovalDelay
}
