package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/dossier/pkg/bot"
)

// Prompt is a message sent with buttons through MockGateway.
type Prompt struct {
	Invocation bot.Invocation
	Ref        bot.MessageRef
	Content    string
	Buttons    []bot.Button
}

// Edit is a message edit recorded by MockGateway.
type Edit struct {
	Ref     bot.MessageRef
	Content string
}

// MockGateway is an in-memory bot.Gateway that records every outbound call.
type MockGateway struct {
	mu sync.Mutex

	events chan bot.Event
	nextID int

	replies   []bot.Message
	deferred  []bot.Invocation
	followUps []bot.Message
	prompts   []Prompt
	edits     []Edit
	choices   [][]bot.Choice

	// Stat is returned by Stats.
	Stat bot.Stats
}

// NewMockGateway creates a gateway with a buffered event channel.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		events: make(chan bot.Event, 64),
		Stat:   bot.Stats{IsOnline: true, ServerCount: 1, UserCount: 3},
	}
}

// Emit queues an inbound event.
func (g *MockGateway) Emit(ev bot.Event) {
	g.events <- ev
}

// Stop closes the event channel.
func (g *MockGateway) Stop() {
	close(g.events)
}

func (g *MockGateway) Events() <-chan bot.Event {
	return g.events
}

func (g *MockGateway) Reply(_ context.Context, _ bot.Invocation, msg bot.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies = append(g.replies, msg)
	return nil
}

func (g *MockGateway) Defer(_ context.Context, inv bot.Invocation, _ bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deferred = append(g.deferred, inv)
	return nil
}

func (g *MockGateway) FollowUp(_ context.Context, _ bot.Invocation, msg bot.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.followUps = append(g.followUps, msg)
	return nil
}

func (g *MockGateway) SendWithButtons(_ context.Context, inv bot.Invocation, content string, buttons []bot.Button) (bot.MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	ref := bot.MessageRef{ChannelID: inv.ChannelID, MessageID: fmt.Sprintf("msg-%d", g.nextID)}
	g.prompts = append(g.prompts, Prompt{Invocation: inv, Ref: ref, Content: content, Buttons: buttons})
	return ref, nil
}

func (g *MockGateway) Edit(_ context.Context, ref bot.MessageRef, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edits = append(g.edits, Edit{Ref: ref, Content: content})
	return nil
}

func (g *MockGateway) Respond(_ context.Context, _ bot.Invocation, choices []bot.Choice) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.choices = append(g.choices, choices)
	return nil
}

func (g *MockGateway) Stats() bot.Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Stat
}

// Replies returns the direct replies sent so far.
func (g *MockGateway) Replies() []bot.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]bot.Message{}, g.replies...)
}

// Deferred returns the invocations that were deferred.
func (g *MockGateway) Deferred() []bot.Invocation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]bot.Invocation{}, g.deferred...)
}

// FollowUps returns the follow-up messages sent so far.
func (g *MockGateway) FollowUps() []bot.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]bot.Message{}, g.followUps...)
}

// Prompts returns the messages sent with buttons.
func (g *MockGateway) Prompts() []Prompt {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Prompt{}, g.prompts...)
}

// Edits returns the message edits.
func (g *MockGateway) Edits() []Edit {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Edit{}, g.edits...)
}

// Choices returns every autocomplete response.
func (g *MockGateway) Choices() [][]bot.Choice {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]bot.Choice{}, g.choices...)
}
