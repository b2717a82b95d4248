// Package presenter renders stored presence data into the HTML fragments the
// chat transport sends out: the pinned status report, the /stats reply, the
// webhook confirmation lines, and the inline keyboard labels. All user
// supplied text is escaped before it reaches the HTML parse mode.
package presenter

import (
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/go-presence-bot/internal/domain"
)

// ChatSection is one chat's slice of a status report: a resolved display
// title plus the chat's status views, newest first.
type ChatSection struct {
	Title string
	Views []domain.StatusView
}

// Presenter formats report and confirmation text. Times are rendered in Loc.
type Presenter struct {
	Loc *time.Location

	// Now returns the current time; overridable in tests.
	Now func() time.Time

	printer *message.Printer
}

// New constructs a Presenter for the given display timezone and language.
func New(loc *time.Location, lang language.Tag) *Presenter {
	if loc == nil {
		loc = time.UTC
	}
	return &Presenter{
		Loc:     loc,
		Now:     time.Now,
		printer: message.NewPrinter(lang),
	}
}

// Status renders the pinned report body for a single chat.
func (p *Presenter) Status(title string, views []domain.StatusView) string {
	return p.Stats([]ChatSection{{Title: title, Views: views}})
}

// Stats renders the full status report: a timestamp header followed by one
// block per chat, members grouped into at-work and at-home.
func (p *Presenter) Stats(sections []ChatSection) string {
	if len(sections) == 0 {
		return p.printer.Sprintf("There are no registered chats for this user!")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<i>Data as of %s</i>\n\n", p.Now().In(p.Loc).Format("2006-01-02 15:04:05"))

	for _, s := range sections {
		fmt.Fprintf(&b, "*** <b>%s</b> ***\n", html.EscapeString(s.Title))

		b.WriteString("At work 🏢\n")
		for _, v := range s.Views {
			if v.Status == domain.StatusCameToWork {
				p.writeMemberLine(&b, v)
			}
		}

		b.WriteString("At home 🏠\n")
		for _, v := range s.Views {
			if v.Status != domain.StatusCameToWork {
				p.writeMemberLine(&b, v)
			}
		}

		b.WriteString("\n")
	}

	return b.String()
}

// HookConfirmation renders the webhook endpoint's plain-text success body.
// The shorter form is used when the status did not actually change.
func (p *Presenter) HookConfirmation(previous, current domain.Status, at time.Time) string {
	ts := at.In(p.Loc).Format("2006-01-02 15:04:05")
	if previous == current {
		return p.printer.Sprintf("Success! Status updated to %s at %s.", current, ts)
	}
	return p.printer.Sprintf("Success! Status updated from %s to %s at %s.", previous, current, ts)
}

// StatusConfirmation renders the chat reply for a direct status command.
func (p *Presenter) StatusConfirmation(status domain.Status) string {
	switch status {
	case domain.StatusCameToWork:
		return p.printer.Sprintf("Your status changed to: at work 🏢")
	case domain.StatusLeftWork, domain.StatusStayAtHome:
		return p.printer.Sprintf("Your status changed to: at home 🏠")
	default:
		return p.printer.Sprintf("Your status changed to: unknown")
	}
}

func (p *Presenter) writeMemberLine(b *strings.Builder, v domain.StatusView) {
	fmt.Fprintf(b, "• <a href=\"tg://user?id=%d\">@%s</a> <i>%s</i>\n",
		v.UserID, html.EscapeString(v.DisplayName), p.formatTime(v.Time))
}

// formatTime drops the date part for same-day timestamps.
func (p *Presenter) formatTime(t time.Time) string {
	local := t.In(p.Loc)
	now := p.Now().In(p.Loc)
	if local.Year() == now.Year() && local.YearDay() == now.YearDay() {
		return local.Format("15:04:05")
	}
	return local.Format("15:04:05 02 Jan")
}
