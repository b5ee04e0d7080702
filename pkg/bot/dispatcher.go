package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/confirm"
	"github.com/papercomputeco/dossier/pkg/metrics"
	"github.com/papercomputeco/dossier/pkg/registry"
)

// DispatcherConfig is the configuration options for a Dispatcher.
type DispatcherConfig struct {
	// Service runs the commands. Required.
	Service *Service

	// Gateway delivers events and carries replies. Required.
	Gateway Gateway

	// Clock drives confirmation deadlines. Defaults to the wall clock.
	Clock confirm.Clock

	// ConfirmTimeout overrides confirm.DefaultTimeout.
	ConfirmTimeout time.Duration

	// Metrics is optional.
	Metrics *metrics.Metrics

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Dispatcher consumes gateway events and handles each one on its own
// goroutine, so a pending confirmation never blocks other users.
type Dispatcher struct {
	service *Service
	gateway Gateway
	router  *ClickRouter
	clock   confirm.Clock
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(c *DispatcherConfig) (*Dispatcher, error) {
	if c.Service == nil {
		return nil, errors.New("dispatcher requires a service")
	}
	if c.Gateway == nil {
		return nil, errors.New("dispatcher requires a gateway")
	}

	d := &Dispatcher{
		service: c.Service,
		gateway: c.Gateway,
		clock:   c.Clock,
		timeout: c.ConfirmTimeout,
		metrics: c.Metrics,
		logger:  c.Logger,
	}
	if d.clock == nil {
		d.clock = confirm.SystemClock()
	}
	if d.timeout <= 0 {
		d.timeout = confirm.DefaultTimeout
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	d.router = NewClickRouter(d.logger)

	return d, nil
}

// Router returns the click router shared by every pending confirmation.
func (d *Dispatcher) Router() *ClickRouter {
	return d.router
}

// Run handles events until the gateway closes its event channel or ctx is
// cancelled, then waits for in-flight handlers.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.wg.Wait()

	events := d.gateway.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				d.logger.Info("gateway closed, dispatcher stopping")
				return nil
			}
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				d.Handle(ctx, ev)
			}()
		}
	}
}

// Handle processes a single event synchronously.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case *CommandEvent:
		d.handleCommand(ctx, e)
	case *ClickEvent:
		if !d.router.Route(e) {
			d.logger.Debug("click ignored",
				zap.String("custom_id", e.CustomID),
				zap.String("user_id", e.UserID),
			)
		}
	case *AutocompleteEvent:
		d.handleAutocomplete(ctx, e)
	default:
		d.logger.Warn("unknown event type")
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, e *CommandEvent) {
	start := time.Now()
	var err error

	switch e.Name {
	case CommandReport:
		err = d.handleReport(ctx, e)
	case CommandInfo:
		err = d.handleInfo(ctx, e)
	default:
		err = d.gateway.Reply(ctx, e.Invocation, Message{Content: msgCommandFailed, Ephemeral: true})
	}

	if d.metrics != nil {
		d.metrics.ObserveCommand(e.Name, start)
	}
	if err != nil {
		d.logger.Error("handling command",
			zap.String("command", e.Name),
			zap.String("user_id", e.UserID),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) recordError(command string, err error) {
	if d.metrics != nil {
		d.metrics.RecordCommandError(command, errorKind(err))
	}
}

func (d *Dispatcher) handleReport(ctx context.Context, e *CommandEvent) error {
	req := ReportRequest{
		Name:         e.Options[OptionName],
		Fact:         e.Options[OptionFact],
		Class:        e.Options[OptionClass],
		SubmitterID:  e.UserID,
		SubmitterTag: e.UserTag,
	}

	// Input errors are answered before the reply is deferred.
	if _, err := d.service.ValidateReport(req); err != nil {
		d.recordError(CommandReport, err)
		return d.gateway.Reply(ctx, e.Invocation, Message{
			Content:   userMessage(err, msgSaveFailed),
			Ephemeral: true,
		})
	}

	if err := d.gateway.Defer(ctx, e.Invocation, false); err != nil {
		return err
	}

	confirmer := &promptConfirmer{
		gateway: d.gateway,
		router:  d.router,
		inv:     e.Invocation,
		clock:   d.clock,
		timeout: d.timeout,
		metrics: d.metrics,
		logger:  d.logger,
	}

	outcome, err := d.service.SubmitReport(ctx, req, confirmer)
	switch {
	case err == nil:
	case errors.Is(err, confirm.ErrCancelled), errors.Is(err, confirm.ErrTimeout):
		// The prompt has already been edited to say so.
		d.recordError(CommandReport, err)
		return nil
	default:
		d.recordError(CommandReport, err)
		d.logger.Error("submitting report", zap.Error(err))
		return d.gateway.FollowUp(ctx, e.Invocation, Message{
			Content:   userMessage(err, msgSaveFailed),
			Ephemeral: true,
		})
	}

	if outcome.Warning != nil {
		d.logger.Warn("report saved in memory only",
			zap.String("report_id", outcome.Report.ID),
			zap.Error(outcome.Warning),
		)
	}

	return d.gateway.FollowUp(ctx, e.Invocation, Message{Embeds: []Embed{reportEmbed(outcome)}})
}

func (d *Dispatcher) handleInfo(ctx context.Context, e *CommandEvent) error {
	name := e.Options[OptionName]

	if err := d.gateway.Defer(ctx, e.Invocation, false); err != nil {
		return err
	}

	outcome, err := d.service.Info(ctx, name)
	if err != nil {
		d.recordError(CommandInfo, err)

		content := userMessage(err, msgInfoFailed)
		if registry.IsNotFound(err) {
			content = notFoundMessage(name)
		}
		return d.gateway.FollowUp(ctx, e.Invocation, Message{Content: content, Ephemeral: true})
	}

	if outcome.Empty() {
		return d.gateway.FollowUp(ctx, e.Invocation, Message{
			Content:   noReportsMessage(outcome.Person.Name),
			Ephemeral: true,
		})
	}

	return d.gateway.FollowUp(ctx, e.Invocation, Message{Embeds: []Embed{infoEmbed(outcome)}})
}

func (d *Dispatcher) handleAutocomplete(ctx context.Context, e *AutocompleteEvent) {
	choices := []Choice{}

	switch e.Option {
	case OptionName:
		for _, name := range d.service.SuggestNames(e.Value) {
			choices = append(choices, Choice{Name: name, Value: name})
		}
	case OptionClass:
		for _, l := range d.service.SuggestClasses(e.Value) {
			choices = append(choices, Choice{Name: l.String(), Value: l.String()})
		}
	}

	if err := d.gateway.Respond(ctx, e.Invocation, choices); err != nil {
		d.logger.Warn("responding to autocomplete",
			zap.String("option", e.Option),
			zap.Error(err),
		)
	}
}

