package testutil

import (
	"context"
	"sync"

	"github.com/iliyamo/publicvoice/internal/enrich"
	"github.com/iliyamo/publicvoice/internal/mailer"
)

// Enricher returns a canned result and records the text it was given.
type Enricher struct {
	Result enrich.Result
	OK     bool
	Calls  []string
}

func (e *Enricher) Enrich(_ context.Context, raw string) (enrich.Result, bool) {
	e.Calls = append(e.Calls, raw)
	return e.Result, e.OK
}

// Notifier records reset notices instead of sending them.
type Notifier struct {
	mu      sync.Mutex
	Notices []mailer.ResetNotice
	Err     error
}

func (n *Notifier) NotifyPasswordReset(_ context.Context, notice mailer.ResetNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notices = append(n.Notices, notice)
	return n.Err
}

// Last returns the most recent notice.
func (n *Notifier) Last() (mailer.ResetNotice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Notices) == 0 {
		return mailer.ResetNotice{}, false
	}
	return n.Notices[len(n.Notices)-1], true
}
