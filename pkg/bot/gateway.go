package bot

import (
	"context"
	"time"
)

// Command names.
const (
	CommandReport = "report"
	CommandInfo   = "info"
)

// Command option names.
const (
	OptionName  = "name"
	OptionFact  = "fact"
	OptionClass = "class"
)

// Invocation identifies the user interaction an event belongs to. Replies are
// addressed to it.
type Invocation struct {
	ID        string
	ChannelID string
	UserID    string
	UserTag   string
}

// Event is an inbound gateway event: *CommandEvent, *ClickEvent or
// *AutocompleteEvent.
type Event interface {
	invocation() Invocation
}

// CommandEvent is a slash command invocation.
type CommandEvent struct {
	Invocation
	Name    string
	Options map[string]string
}

// ClickEvent is a button press on a message sent with SendWithButtons.
type ClickEvent struct {
	Invocation
	MessageID string
	CustomID  string
}

// AutocompleteEvent asks for suggestions for the focused option of a command
// that is still being typed.
type AutocompleteEvent struct {
	Invocation
	Command string
	Option  string
	Value   string
}

func (e *CommandEvent) invocation() Invocation      { return e.Invocation }
func (e *ClickEvent) invocation() Invocation        { return e.Invocation }
func (e *AutocompleteEvent) invocation() Invocation { return e.Invocation }

// Field is a titled section of an Embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich card.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
	Timestamp   time.Time
}

// Message is a reply. Ephemeral messages are only shown to the invoker.
type Message struct {
	Content   string
	Embeds    []Embed
	Ephemeral bool
}

// ButtonStyle selects the colour of a Button.
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

// Button is an interactive component attached to a message.
type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
}

// MessageRef identifies a sent message so it can be edited later.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Choice is one autocomplete suggestion.
type Choice struct {
	Name  string
	Value string
}

// Stats describes the gateway connection.
type Stats struct {
	IsOnline    bool `json:"isOnline"`
	ServerCount int  `json:"serverCount"`
	UserCount   int  `json:"userCount"`
}

// Gateway is the chat platform the bot talks to.
type Gateway interface {
	// Events delivers inbound events. It is closed when the gateway stops.
	Events() <-chan Event

	// Reply answers an invocation that has not been deferred.
	Reply(ctx context.Context, inv Invocation, msg Message) error

	// Defer acknowledges an invocation whose answer will follow.
	Defer(ctx context.Context, inv Invocation, ephemeral bool) error

	// FollowUp sends a further message for a replied or deferred invocation.
	FollowUp(ctx context.Context, inv Invocation, msg Message) error

	// SendWithButtons sends an ephemeral follow-up carrying buttons.
	SendWithButtons(ctx context.Context, inv Invocation, content string, buttons []Button) (MessageRef, error)

	// Edit replaces the content of a sent message and removes its buttons.
	Edit(ctx context.Context, ref MessageRef, content string) error

	// Respond answers an autocomplete request.
	Respond(ctx context.Context, inv Invocation, choices []Choice) error

	// Stats reports the connection state.
	Stats() Stats
}
