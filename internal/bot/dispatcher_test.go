package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/tbourn/go-presence-bot/internal/domain"
	"github.com/tbourn/go-presence-bot/internal/presenter"
	"github.com/tbourn/go-presence-bot/internal/repo"
	"github.com/tbourn/go-presence-bot/internal/services"
)

type setStatusCall struct {
	userID    int64
	chatID    int64
	broadcast bool
	status    domain.Status
}

type fakeStatusOps struct {
	setCalls  []setStatusCall
	setErr    error
	reports   []domain.ChatStatusReport
	hooks     map[int64]string
	nameParts []services.NamePart
	nameVals  []string
	nameErr   error
}

func (f *fakeStatusOps) SetStatus(_ context.Context, userID, chatID int64, broadcast bool, _ repo.NameFields, status domain.Status) ([]int64, error) {
	if f.setErr != nil {
		return nil, f.setErr
	}
	f.setCalls = append(f.setCalls, setStatusCall{userID, chatID, broadcast, status})
	return []int64{chatID}, nil
}

func (f *fakeStatusOps) Report(_ context.Context, _, chatID int64, _ bool) ([]domain.ChatStatusReport, error) {
	if f.reports != nil {
		return f.reports, nil
	}
	return []domain.ChatStatusReport{{ChatID: chatID}}, nil
}

func (f *fakeStatusOps) WebhookTokens(_ context.Context, _ int64) (map[int64]string, error) {
	return f.hooks, nil
}

func (f *fakeStatusOps) SetName(_ context.Context, _ int64, part services.NamePart, value string) error {
	if f.nameErr != nil {
		return f.nameErr
	}
	f.nameParts = append(f.nameParts, part)
	f.nameVals = append(f.nameVals, value)
	return nil
}

type anchorCall struct {
	chatID    int64
	messageID int
}

type fakeAnchorer struct {
	calls []anchorCall
}

func (f *fakeAnchorer) Anchor(_ context.Context, chatID int64, messageID int, _ domain.MessageType) error {
	f.calls = append(f.calls, anchorCall{chatID, messageID})
	return nil
}

type removalCall struct {
	chatID    int64
	messageID int
	delay     time.Duration
}

type fakeRemovals struct {
	calls []removalCall
}

func (f *fakeRemovals) ScheduleRemoval(_ context.Context, chatID int64, messageID int, delay time.Duration) {
	f.calls = append(f.calls, removalCall{chatID, messageID, delay})
}

type keyboardMsg struct {
	chatID int64
	rows   [][]LinkButton
}

type fakeTransport struct {
	nextMessageID int
	sent          []string
	keyboards     []keyboardMsg
	title         string
	invite        string
	titleErr      error
}

func (f *fakeTransport) SendText(_ context.Context, _ int64, text string) (int, error) {
	f.nextMessageID++
	f.sent = append(f.sent, text)
	return f.nextMessageID, nil
}

func (f *fakeTransport) EditText(context.Context, int64, int, string) error { return nil }

func (f *fakeTransport) Pin(context.Context, int64, int, bool) error { return nil }

func (f *fakeTransport) Unpin(context.Context, int64, int) error { return nil }

func (f *fakeTransport) Delete(context.Context, int64, int) error { return nil }

func (f *fakeTransport) ChatTitle(context.Context, int64) (string, string, error) {
	return f.title, f.invite, f.titleErr
}

func (f *fakeTransport) SendKeyboard(_ context.Context, chatID int64, _ string, rows [][]LinkButton) (int, error) {
	f.nextMessageID++
	f.keyboards = append(f.keyboards, keyboardMsg{chatID: chatID, rows: rows})
	return f.nextMessageID, nil
}

type dispatcherFixture struct {
	d        *Dispatcher
	statuses *fakeStatusOps
	anchor   *fakeAnchorer
	removals *fakeRemovals
	tr       *fakeTransport
}

func newDispatcherFixture() *dispatcherFixture {
	statuses := &fakeStatusOps{}
	anchor := &fakeAnchorer{}
	removals := &fakeRemovals{}
	tr := &fakeTransport{title: "Team"}
	return &dispatcherFixture{
		d: &Dispatcher{
			Statuses:     statuses,
			Anchor:       anchor,
			Removals:     removals,
			Messenger:    tr,
			Keyboard:     tr,
			Present:      presenter.New(time.UTC, language.English),
			WebhookBase:  "https://bot.example.com",
			RemovalDelay: time.Minute,
			Log:          zerolog.Nop(),
		},
		statuses: statuses,
		anchor:   anchor,
		removals: removals,
		tr:       tr,
	}
}

func groupMessage(text string) Message {
	return Message{UserID: 42, ChatID: 100, MessageID: 9, Private: false, Text: text}
}

func privateMessage(text string) Message {
	return Message{UserID: 42, ChatID: 42, MessageID: 9, Private: true, Text: text}
}

func TestHandleMessage_StatusCommand(t *testing.T) {
	fx := newDispatcherFixture()

	if err := fx.d.HandleMessage(context.Background(), groupMessage("/came")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(fx.statuses.setCalls) != 1 {
		t.Fatalf("setCalls = %+v", fx.statuses.setCalls)
	}
	call := fx.statuses.setCalls[0]
	if call.status != domain.StatusCameToWork || call.broadcast {
		t.Fatalf("group /came recorded as %+v", call)
	}

	if len(fx.tr.sent) != 1 || !strings.Contains(fx.tr.sent[0], "at work") {
		t.Fatalf("confirmation = %+v", fx.tr.sent)
	}
	// Command message and confirmation are both transient in a group chat.
	if len(fx.removals.calls) != 2 {
		t.Fatalf("removals = %+v", fx.removals.calls)
	}
}

func TestHandleMessage_PrivateStatusBroadcasts(t *testing.T) {
	fx := newDispatcherFixture()

	if err := fx.d.HandleMessage(context.Background(), privateMessage("/stay")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	call := fx.statuses.setCalls[0]
	if !call.broadcast || call.status != domain.StatusStayAtHome {
		t.Fatalf("private /stay recorded as %+v", call)
	}
	// The user's own message is left alone in a private chat.
	if len(fx.removals.calls) != 1 {
		t.Fatalf("removals = %+v", fx.removals.calls)
	}
}

func TestHandleMessage_BotNameSuffix(t *testing.T) {
	fx := newDispatcherFixture()

	if err := fx.d.HandleMessage(context.Background(), groupMessage("/left@PresenceBot")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(fx.statuses.setCalls) != 1 || fx.statuses.setCalls[0].status != domain.StatusLeftWork {
		t.Fatalf("setCalls = %+v", fx.statuses.setCalls)
	}
}

func TestHandleMessage_StatsAnchorsInGroup(t *testing.T) {
	fx := newDispatcherFixture()

	if err := fx.d.HandleMessage(context.Background(), groupMessage("/stats")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(fx.tr.sent) != 1 || !strings.Contains(fx.tr.sent[0], "Team") {
		t.Fatalf("stats reply = %+v", fx.tr.sent)
	}
	if len(fx.anchor.calls) != 1 || fx.anchor.calls[0].chatID != 100 {
		t.Fatalf("anchor calls = %+v", fx.anchor.calls)
	}
	// Incoming command plus the report itself.
	if len(fx.removals.calls) != 2 {
		t.Fatalf("removals = %+v", fx.removals.calls)
	}
}

func TestHandleMessage_StatsPrivateDoesNotAnchor(t *testing.T) {
	fx := newDispatcherFixture()

	if err := fx.d.HandleMessage(context.Background(), privateMessage("/stats")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(fx.anchor.calls) != 0 {
		t.Fatalf("anchor must not run in a private chat: %+v", fx.anchor.calls)
	}
}

func TestHandleMessage_WebHandlersKeyboard(t *testing.T) {
	fx := newDispatcherFixture()
	fx.statuses.hooks = map[int64]string{100: "aaaa-bbbb"}
	fx.tr.invite = "https://t.me/joinchat/xyz"

	if err := fx.d.HandleMessage(context.Background(), privateMessage("/web_handlers")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(fx.tr.keyboards) != 1 {
		t.Fatalf("keyboards = %+v", fx.tr.keyboards)
	}
	rows := fx.tr.keyboards[0].rows
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want chat row plus action row", rows)
	}
	if rows[1][0].URL != "https://bot.example.com/aaaa-bbbb/came" {
		t.Fatalf("came URL = %q", rows[1][0].URL)
	}
	if rows[1][1].URL != "https://bot.example.com/aaaa-bbbb/left" ||
		rows[1][2].URL != "https://bot.example.com/aaaa-bbbb/stay" {
		t.Fatalf("action row = %+v", rows[1])
	}
}

func TestHandleMessage_WebHandlersWithoutChats(t *testing.T) {
	fx := newDispatcherFixture()

	if err := fx.d.HandleMessage(context.Background(), privateMessage("/web_handlers")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(fx.tr.sent) != 1 || !strings.Contains(fx.tr.sent[0], "no registered chats") {
		t.Fatalf("reply = %+v", fx.tr.sent)
	}
}

func TestHandleMessage_SetNickname(t *testing.T) {
	fx := newDispatcherFixture()

	if err := fx.d.HandleMessage(context.Background(), privateMessage("/set_nickname neo")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(fx.statuses.nameParts) != 1 || fx.statuses.nameParts[0] != services.NamePartNick || fx.statuses.nameVals[0] != "neo" {
		t.Fatalf("SetName calls = %+v %+v", fx.statuses.nameParts, fx.statuses.nameVals)
	}
}

func TestHandleMessage_SetNameUnknownUser(t *testing.T) {
	fx := newDispatcherFixture()
	fx.statuses.nameErr = services.ErrUserNotFound

	if err := fx.d.HandleMessage(context.Background(), privateMessage("/set_lastname anderson")); err != nil {
		t.Fatalf("unknown user must be answered, not escalated: %v", err)
	}
	if len(fx.tr.sent) != 1 || !strings.Contains(fx.tr.sent[0], "status first") {
		t.Fatalf("reply = %+v", fx.tr.sent)
	}
}

func TestHandleMessage_IgnoresPlainText(t *testing.T) {
	fx := newDispatcherFixture()

	if err := fx.d.HandleMessage(context.Background(), groupMessage("good morning")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(fx.tr.sent) != 0 || len(fx.removals.calls) != 0 {
		t.Fatal("plain text must be ignored entirely")
	}
}

func TestHandleMessage_StatusErrorPropagates(t *testing.T) {
	fx := newDispatcherFixture()
	fx.statuses.setErr = errors.New("db locked")

	if err := fx.d.HandleMessage(context.Background(), groupMessage("/came")); err == nil {
		t.Fatal("expected error from failing store")
	}
	if len(fx.tr.sent) != 0 {
		t.Fatalf("no confirmation on failure, got %+v", fx.tr.sent)
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text string
		cmd  Command
		args string
	}{
		{"/came", CmdCame, ""},
		{"/left@PresenceBot", CmdLeft, ""},
		{"/set_nickname neo", CmdSetNickname, "neo"},
		{"/set_firstname  Thomas ", CmdSetFirstname, "Thomas"},
		{"/stats", CmdStats, ""},
		{"/web_handlers", CmdWebHandlers, ""},
		{"hello", CmdUnknown, ""},
		{"/dance", CmdUnknown, ""},
	}
	for _, tc := range cases {
		cmd, args := ParseCommand(tc.text)
		if cmd != tc.cmd || args != tc.args {
			t.Errorf("ParseCommand(%q) = (%v, %q), want (%v, %q)", tc.text, cmd, args, tc.cmd, tc.args)
		}
	}
}

func TestHandleMessage_UnknownCommandRejected(t *testing.T) {
	fx := newDispatcherFixture()

	if err := fx.d.HandleMessage(context.Background(), groupMessage("/frobnicate")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(fx.statuses.setCalls) != 0 {
		t.Fatalf("unknown command changed state: %+v", fx.statuses.setCalls)
	}
	if len(fx.tr.sent) != 1 || !strings.Contains(fx.tr.sent[0], "Unknown command") {
		t.Fatalf("rejection = %+v", fx.tr.sent)
	}
	// Command message and rejection are both transient in a group chat.
	if len(fx.removals.calls) != 2 {
		t.Fatalf("removals = %+v", fx.removals.calls)
	}
}
