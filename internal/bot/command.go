package bot

import "strings"

// Command identifies a bot command addressed to the presence tracker.
type Command int

const (
	CmdUnknown Command = iota
	CmdStart
	CmdCame
	CmdLeft
	CmdStay
	CmdStats
	CmdWebHandlers
	CmdSetNickname
	CmdSetFirstname
	CmdSetLastname
)

// ParseCommand extracts the command and its argument string from a message
// text. The "@BotName" suffix used in group chats is stripped. Non-command
// text and unrecognized commands map to CmdUnknown.
func ParseCommand(text string) (Command, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return CmdUnknown, ""
	}

	head, args, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")

	switch head {
	case "start":
		return CmdStart, strings.TrimSpace(args)
	case "came":
		return CmdCame, strings.TrimSpace(args)
	case "left":
		return CmdLeft, strings.TrimSpace(args)
	case "stay":
		return CmdStay, strings.TrimSpace(args)
	case "stats":
		return CmdStats, strings.TrimSpace(args)
	case "web_handlers":
		return CmdWebHandlers, strings.TrimSpace(args)
	case "set_nickname":
		return CmdSetNickname, strings.TrimSpace(args)
	case "set_firstname":
		return CmdSetFirstname, strings.TrimSpace(args)
	case "set_lastname":
		return CmdSetLastname, strings.TrimSpace(args)
	default:
		return CmdUnknown, ""
	}
}
