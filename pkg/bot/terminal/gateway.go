// Package terminal is a bot.Gateway that reads slash commands from a line
// oriented input and prints replies to a terminal. It lets the bot be run and
// exercised locally without a chat platform.
//
// Input syntax:
//
//	/report <name> | <fact> [| <class>]
//	/info <name>
//	/yes, /no               answer the latest pending prompt
//	/complete name <text>   autocomplete a stored name
//	/complete class <text>  autocomplete a class label
//	/as <user>              act as another user
//	/help, /quit
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/dossier/pkg/bot"
	"github.com/papercomputeco/dossier/pkg/cliui"
)

const defaultUser = "local"

const helpText = `Commands:
  /report <name> | <fact> [| <class>]
  /info <name>
  /yes, /no
  /complete name <text>
  /complete class <text>
  /as <user>
  /quit`

// Config configures a Gateway.
type Config struct {
	In  io.Reader
	Out io.Writer

	// User is the initial user id. Defaults to "local".
	User string

	// Markdown forces markdown rendering on or off. By default it is enabled
	// when Out is a terminal.
	Markdown *bool

	Logger *zap.Logger
}

type pendingPrompt struct {
	ref     bot.MessageRef
	inv     bot.Invocation
	buttons []bot.Button
}

// Gateway implements bot.Gateway over a reader and a writer.
type Gateway struct {
	in       io.Reader
	out      io.Writer
	markdown bool
	logger   *zap.Logger

	events chan bot.Event

	mu      sync.Mutex
	user    string
	users   map[string]bool
	online  bool
	nextMsg int
	prompts []pendingPrompt
}

// New creates a Gateway.
func New(c Config) *Gateway {
	if c.In == nil {
		c.In = os.Stdin
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.User == "" {
		c.User = defaultUser
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	markdown := isTerminal(c.Out)
	if c.Markdown != nil {
		markdown = *c.Markdown
	}

	return &Gateway{
		in:       c.In,
		out:      c.Out,
		markdown: markdown,
		logger:   c.Logger,
		events:   make(chan bot.Event, 16),
		user:     c.User,
		users:    map[string]bool{c.User: true},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run reads input until EOF, /quit or ctx cancellation, then closes the event
// channel.
func (g *Gateway) Run(ctx context.Context) error {
	defer close(g.events)

	g.setOnline(true)
	defer g.setOnline(false)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(g.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	g.printf("%s\n", cliui.DimStyle.Render("Type /help for commands."))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := g.handleLine(ctx, line); quit {
				return nil
			}
		}
	}
}

func (g *Gateway) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		g.printf("%s\n", helpText)
	case "/as":
		if rest == "" {
			g.printf("%s\n", cliui.WarnStyle.Render("usage: /as <user>"))
			return false
		}
		g.mu.Lock()
		g.user = rest
		g.users[rest] = true
		g.mu.Unlock()
		g.printf("%s %s\n", cliui.DimStyle.Render("now acting as"), cliui.NameStyle.Render(rest))
	case "/report":
		parts := strings.Split(rest, "|")
		opts := map[string]string{bot.OptionName: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			opts[bot.OptionFact] = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			opts[bot.OptionClass] = strings.TrimSpace(parts[2])
		}
		g.emit(ctx, &bot.CommandEvent{Invocation: g.invocation(), Name: bot.CommandReport, Options: opts})
	case "/info":
		g.emit(ctx, &bot.CommandEvent{
			Invocation: g.invocation(),
			Name:       bot.CommandInfo,
			Options:    map[string]string{bot.OptionName: rest},
		})
	case "/yes", "/no":
		g.click(ctx, cmd == "/yes")
	case "/complete":
		option, value, _ := strings.Cut(rest, " ")
		command := bot.CommandReport
		if option == bot.OptionName {
			command = bot.CommandInfo
		}
		g.emit(ctx, &bot.AutocompleteEvent{
			Invocation: g.invocation(),
			Command:    command,
			Option:     option,
			Value:      strings.TrimSpace(value),
		})
	default:
		g.printf("%s %s\n", cliui.WarnStyle.Render("unknown command"), cmd)
	}

	return false
}

func (g *Gateway) invocation() bot.Invocation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return bot.Invocation{
		ID:        uuid.NewString(),
		ChannelID: "terminal",
		UserID:    g.user,
		UserTag:   g.user,
	}
}

func (g *Gateway) emit(ctx context.Context, ev bot.Event) {
	select {
	case g.events <- ev:
	case <-ctx.Done():
	}
}

// click answers the most recent prompt that is still open.
func (g *Gateway) click(ctx context.Context, yes bool) {
	g.mu.Lock()
	if len(g.prompts) == 0 {
		g.mu.Unlock()
		g.printf("%s\n", cliui.WarnStyle.Render("no pending prompt"))
		return
	}
	p := g.prompts[len(g.prompts)-1]
	g.mu.Unlock()

	idx := 1
	if yes {
		idx = 0
	}
	if idx >= len(p.buttons) {
		return
	}

	inv := g.invocation()
	g.emit(ctx, &bot.ClickEvent{Invocation: inv, MessageID: p.ref.MessageID, CustomID: p.buttons[idx].CustomID})
}

func (g *Gateway) setOnline(online bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.online = online
}

func (g *Gateway) printf(format string, args ...any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintf(g.out, format, args...)
}

func (g *Gateway) render(content string) string {
	if !g.markdown {
		return content
	}
	rendered, err := cliui.RenderMarkdown(content)
	if err != nil {
		g.logger.Debug("rendering markdown", zap.Error(err))
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

func (g *Gateway) writeMessage(msg bot.Message) {
	var b strings.Builder
	if msg.Content != "" {
		b.WriteString(g.render(msg.Content))
		b.WriteString("\n")
	}
	for _, e := range msg.Embeds {
		b.WriteString(g.renderEmbed(e))
		b.WriteString("\n")
	}
	if msg.Ephemeral {
		b.WriteString(cliui.DimStyle.Render("(only you can see this)"))
		b.WriteString("\n")
	}
	g.printf("%s", b.String())
}

func (g *Gateway) renderEmbed(e bot.Embed) string {
	var md strings.Builder
	fmt.Fprintf(&md, "## %s\n\n", e.Title)
	if e.Description != "" {
		fmt.Fprintf(&md, "%s\n\n", e.Description)
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&md, "**%s**\n%s\n\n", f.Name, f.Value)
	}
	if e.Footer != "" {
		fmt.Fprintf(&md, "_%s_\n", e.Footer)
	}
	return cliui.CardStyle.Render(strings.TrimRight(g.render(md.String()), "\n"))
}

func (g *Gateway) Events() <-chan bot.Event {
	return g.events
}

func (g *Gateway) Reply(_ context.Context, _ bot.Invocation, msg bot.Message) error {
	g.writeMessage(msg)
	return nil
}

func (g *Gateway) Defer(_ context.Context, _ bot.Invocation, _ bool) error {
	g.printf("%s\n", cliui.DimStyle.Render("thinking..."))
	return nil
}

func (g *Gateway) FollowUp(_ context.Context, _ bot.Invocation, msg bot.Message) error {
	g.writeMessage(msg)
	return nil
}

func (g *Gateway) SendWithButtons(_ context.Context, inv bot.Invocation, content string, buttons []bot.Button) (bot.MessageRef, error) {
	g.mu.Lock()
	g.nextMsg++
	ref := bot.MessageRef{ChannelID: inv.ChannelID, MessageID: "m" + strconv.Itoa(g.nextMsg)}
	g.prompts = append(g.prompts, pendingPrompt{ref: ref, inv: inv, buttons: buttons})
	g.mu.Unlock()

	labels := make([]string, 0, len(buttons))
	for i, b := range buttons {
		key := "/no"
		if i == 0 {
			key = "/yes"
		}
		labels = append(labels, buttonStyle(b.Style).Render(b.Label)+" "+cliui.DimStyle.Render(key))
	}

	g.printf("%s\n%s\n", g.render(content), strings.Join(labels, "  "))
	return ref, nil
}

func buttonStyle(s bot.ButtonStyle) lipgloss.Style {
	switch s {
	case bot.ButtonSuccess:
		return cliui.ButtonStyles["success"]
	case bot.ButtonDanger:
		return cliui.ButtonStyles["danger"]
	default:
		return cliui.ButtonStyles["default"]
	}
}

func (g *Gateway) Edit(_ context.Context, ref bot.MessageRef, content string) error {
	g.mu.Lock()
	for i, p := range g.prompts {
		if p.ref == ref {
			g.prompts = append(g.prompts[:i], g.prompts[i+1:]...)
			break
		}
	}
	g.mu.Unlock()

	g.printf("%s %s\n", cliui.DimStyle.Render("["+ref.MessageID+"]"), g.render(content))
	return nil
}

func (g *Gateway) Respond(_ context.Context, _ bot.Invocation, choices []bot.Choice) error {
	if len(choices) == 0 {
		g.printf("%s\n", cliui.DimStyle.Render("no suggestions"))
		return nil
	}
	names := make([]string, 0, len(choices))
	for _, c := range choices {
		names = append(names, cliui.ValueStyle.Render(c.Name))
	}
	g.printf("%s\n", strings.Join(names, ", "))
	return nil
}

func (g *Gateway) Stats() bot.Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return bot.Stats{IsOnline: g.online, ServerCount: 1, UserCount: len(g.users)}
}
