package messenger

// Message is one outgoing message body. Implementations marshal to the
// platform's message JSON.
type Message interface {
	messageType() string
}

// TextMessage is a plain text message.
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (TextMessage) messageType() string { return "text" }

// NewText creates a plain text message.
func NewText(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// TemplateMessage is an interactive template with selectable actions.
type TemplateMessage struct {
	Type     string          `json:"type"`
	AltText  string          `json:"altText"`
	Template ButtonsTemplate `json:"template"`
}

func (TemplateMessage) messageType() string { return "template" }

// ButtonsTemplate renders a titled text block with postback buttons.
type ButtonsTemplate struct {
	Type    string           `json:"type"`
	Text    string           `json:"text"`
	Actions []PostbackAction `json:"actions"`
}

// PostbackAction is one selectable button. Data carries the structured
// action key delivered back in a postback event, e.g. "action=checkin".
type PostbackAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Data  string `json:"data"`
}

// NewButtons creates a buttons template message.
func NewButtons(altText, text string, actions ...PostbackAction) TemplateMessage {
	return TemplateMessage{
		Type:    "template",
		AltText: altText,
		Template: ButtonsTemplate{
			Type:    "buttons",
			Text:    text,
			Actions: actions,
		},
	}
}

// NewPostbackAction creates a postback button.
func NewPostbackAction(label, data string) PostbackAction {
	return PostbackAction{Type: "postback", Label: label, Data: data}
}
