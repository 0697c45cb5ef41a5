package client

import (
	"context"
	"fmt"
	"log/slog"
)

// actionApproved is the feedback action recorded for an accepted suggestion.
const actionApproved = "approved"

// InsertTarget locates a comment box on the host page and inserts text into
// it. Implementations wrap whatever automation layer is available.
type InsertTarget interface {
	// Find returns an opaque handle to the comment box, false if none is
	// visible right now.
	Find() (handle any, ok bool)
	// Insert writes the text into the located comment box.
	Insert(handle any, text string) error
}

// ClipboardFunc copies text to the system clipboard.
type ClipboardFunc func(text string) error

// Approver carries an approved suggestion to the user's environment: the
// clipboard always, the page's comment box when one can be found.
type Approver struct {
	api       *Client
	clipboard ClipboardFunc
	target    InsertTarget
	logger    *slog.Logger
}

// NewApprover wires the approve flow. target may be nil when no page
// automation is available; clipboard must not be.
func NewApprover(api *Client, clipboard ClipboardFunc, target InsertTarget, logger *slog.Logger) *Approver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Approver{api: api, clipboard: clipboard, target: target, logger: logger}
}

// Approve marks the suggestion approved, copies it to the clipboard, and
// best-effort inserts it into the page's comment box. The clipboard write is
// the contract; insertion failure is logged, never returned.
func (a *Approver) Approve(ctx context.Context, s Suggestion) error {
	if err := a.clipboard(s.Text); err != nil {
		return fmt.Errorf("clipboard copy failed: %w", err)
	}

	if err := a.api.Feedback(ctx, s.ID, actionApproved); err != nil {
		// The user already has the text; feedback is bookkeeping.
		a.logger.Warn("failed to record approval", slog.String("error", err.Error()))
	}

	if a.target == nil {
		return nil
	}
	handle, ok := a.target.Find()
	if !ok {
		a.logger.Debug("no comment box found, clipboard only")
		return nil
	}
	if err := a.target.Insert(handle, s.Text); err != nil {
		a.logger.Warn("comment box insert failed, clipboard only",
			slog.String("error", err.Error()))
	}
	return nil
}
