package models

import "time"

// Event kinds delivered by the messaging platform. Kinds other than
// message and postback are ignored by the dispatcher.
const (
	EventKindMessage  = "message"
	EventKindPostback = "postback"
)

// WebhookRequest is the parsed body of one webhook delivery: a batch of
// events for this bot. The raw bytes are verified before parsing; this
// struct is never re-serialized for signature purposes.
type WebhookRequest struct {
	Destination string  `json:"destination,omitempty"`
	Events      []Event `json:"events"`
}

// Event is one unit of work from a webhook batch.
type Event struct {
	Type       string       `json:"type"`
	Timestamp  int64        `json:"timestamp,omitempty"`
	ReplyToken string       `json:"replyToken,omitempty"`
	Source     EventSource  `json:"source"`
	Message    *MessageBody `json:"message,omitempty"`
	Postback   *Postback    `json:"postback,omitempty"`
}

// EventSource identifies the sender on the messaging platform.
type EventSource struct {
	Type   string `json:"type,omitempty"`
	UserID string `json:"userId"`
}

// MessageBody carries the free-text payload of a message event.
type MessageBody struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Postback carries the structured payload of a postback event,
// e.g. "action=checkin".
type Postback struct {
	Data string `json:"data"`
}

// LinkedUser maps an external chat-platform identity to a local account.
// Rows are created by the web portal's linking flow; this service only
// reads them on the webhook path.
type LinkedUser struct {
	SourceID    string    `json:"source_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	LinkedAt    time.Time `json:"linked_at"`
}

// Command is the canonical bot command resolved from message text or a
// postback action key. Alias strings are normalized into these values at
// parse time; handlers never compare raw text.
type Command string

const (
	CommandCheckIn  Command = "checkin"
	CommandCheckOut Command = "checkout"
	CommandStatus   Command = "status"
	CommandMenu     Command = "menu"
	CommandUnknown  Command = ""
)
