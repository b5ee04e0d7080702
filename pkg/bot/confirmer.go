package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/confirm"
	"github.com/papercomputeco/dossier/pkg/identity"
	"github.com/papercomputeco/dossier/pkg/metrics"
)

// promptConfirmer runs a confirmation workflow through a Gateway: it sends a
// prompt with confirm and cancel buttons, waits for the submitter, then edits
// the prompt to show the outcome.
type promptConfirmer struct {
	gateway Gateway
	router  *ClickRouter
	inv     Invocation
	clock   confirm.Clock
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func (c *promptConfirmer) Confirm(ctx context.Context, req ReportRequest, res identity.Resolution) (confirm.State, error) {
	wf := confirm.New(req.SubmitterID,
		confirm.WithClock(c.clock),
		confirm.WithTimeout(c.timeout),
		confirm.WithLogger(c.logger),
	)

	clicks, unsubscribe := c.router.Subscribe(wf.Token())
	defer unsubscribe()

	ref, err := c.gateway.SendWithButtons(ctx, c.inv, conflictPrompt(res), []Button{
		{CustomID: wf.ConfirmID(), Label: labelConfirm, Style: ButtonSuccess},
		{CustomID: wf.CancelID(), Label: labelCancel, Style: ButtonDanger},
	})
	if err != nil {
		return wf.State(), fmt.Errorf("sending confirmation prompt: %w", err)
	}

	if _, err := wf.Begin(); err != nil {
		return wf.State(), err
	}

	if c.metrics != nil {
		c.metrics.PendingConfirmations.Inc()
		defer c.metrics.PendingConfirmations.Dec()
	}

	state, err := wf.Await(ctx, clicks)
	unsubscribe()

	content := msgTimedOut
	switch state {
	case confirm.StateCommitted:
		content = msgConfirmed
	case confirm.StateAborted:
		content = msgCancelled
	}

	if editErr := c.gateway.Edit(context.WithoutCancel(ctx), ref, content); editErr != nil {
		c.logger.Warn("editing confirmation prompt",
			zap.String("message_id", ref.MessageID),
			zap.Error(editErr),
		)
	}

	return state, err
}
