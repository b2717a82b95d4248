// Package domain defines the persistence models and core value types for the
// presence tracker: users, chats, per-chat status records, and pinned message
// bookkeeping.
package domain

// Status is a user's presence state within a chat.
type Status int

// Possible presence states. The zero value is Unknown so freshly created
// records are explicit about never having received a status change.
const (
	StatusUnknown Status = iota
	StatusStayAtHome
	StatusCameToWork
	StatusLeftWork
)

// String returns the human-readable form used in confirmations and reports.
func (s Status) String() string {
	switch s {
	case StatusStayAtHome:
		return "StayAtHome"
	case StatusCameToWork:
		return "CameToWork"
	case StatusLeftWork:
		return "LeftWork"
	default:
		return "Unknown"
	}
}

// ParseStatusToken maps a webhook/command token to a Status. The token set
// ("came", "left", "stay") is part of the public webhook contract.
func ParseStatusToken(token string) (Status, bool) {
	switch token {
	case "came":
		return StatusCameToWork, true
	case "left":
		return StatusLeftWork, true
	case "stay":
		return StatusStayAtHome, true
	default:
		return StatusUnknown, false
	}
}

// MessageType classifies a pinned message slot. A chat holds at most one
// pinned message per type.
type MessageType int

const (
	// MessageTypeStatus is the aggregate presence report kept pinned in a chat.
	MessageTypeStatus MessageType = iota
	// MessageTypePoll is reserved for pinned poll messages.
	MessageTypePoll
)

// String returns the symbolic name of the message type.
func (t MessageType) String() string {
	switch t {
	case MessageTypePoll:
		return "Poll"
	default:
		return "Status"
	}
}
