package bot

import (
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/confirm"
)

// clickBuffer bounds how many clicks can queue for one pending prompt.
const clickBuffer = 8

// ClickRouter delivers button clicks to the confirmation workflow whose token
// is embedded in the button's custom id. Clicks for unknown or finished
// workflows are dropped.
type ClickRouter struct {
	mu     sync.Mutex
	subs   map[string]chan confirm.Click
	logger *zap.Logger
}

// NewClickRouter creates an empty router.
func NewClickRouter(logger *zap.Logger) *ClickRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickRouter{
		subs:   make(map[string]chan confirm.Click),
		logger: logger,
	}
}

// Subscribe registers token and returns the channel its clicks arrive on,
// plus a function that unregisters it. Subscribe before sending the prompt.
func (r *ClickRouter) Subscribe(token string) (<-chan confirm.Click, func()) {
	ch := make(chan confirm.Click, clickBuffer)

	r.mu.Lock()
	r.subs[token] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.subs[token] == ch {
				delete(r.subs, token)
			}
		})
	}
}

// Route hands ev to its workflow. It reports whether a subscriber took it.
func (r *ClickRouter) Route(ev *ClickEvent) bool {
	_, token, ok := confirm.ParseCustomID(ev.CustomID)
	if !ok {
		r.logger.Debug("click with foreign custom id", zap.String("custom_id", ev.CustomID))
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.subs[token]
	if !ok {
		r.logger.Debug("click for finished or unknown prompt",
			zap.String("custom_id", ev.CustomID),
			zap.String("user_id", ev.UserID),
		)
		return false
	}

	select {
	case ch <- confirm.Click{MessageID: ev.MessageID, CustomID: ev.CustomID, UserID: ev.UserID}:
		return true
	default:
		r.logger.Warn("click dropped, prompt queue full",
			zap.String("custom_id", ev.CustomID),
			zap.String("user_id", ev.UserID),
		)
		return false
	}
}

// Pending returns the number of prompts awaiting clicks.
func (r *ClickRouter) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
