package panel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bassamadnan/mailpanel/assistant"
)

// Backend is the subset of the assistant client the panel drives.
type Backend interface {
	Sync(ctx context.Context) (int, error)
	ListEmails(ctx context.Context) ([]assistant.Email, error)
	GenerateDraft(ctx context.Context, req assistant.DraftRequest) (string, error)
	SendDraft(ctx context.Context, req assistant.SendRequest) (assistant.SendAck, error)
}

// DraftOptions are the caller's choices for a draft request.
type DraftOptions struct {
	Tone              assistant.Tone
	ExtraInstructions string
}

// SyncResult is the outcome of TriggerSync.
type SyncResult struct {
	Count int
	Err   error
}

// Notice is the user-facing confirmation of a successful sync.
func (r SyncResult) Notice() string {
	return fmt.Sprintf("Synced %d emails", r.Count)
}

// LoadResult is the outcome of LoadEmails.
type LoadResult struct {
	Emails []assistant.Email
	Err    error
}

// DraftResult is the outcome of GenerateDraft.
type DraftResult struct {
	MessageID string
	Draft     string
	Err       error
}

// SendResult is the outcome of SendDraft.
type SendResult struct {
	MessageID string
	Err       error
}

// Notice is the user-facing confirmation of a successful send.
func (r SendResult) Notice() string {
	return "Sent (simulated) " + r.MessageID
}

// Controller runs the backend calls behind each panel action. It holds no
// view state, so its methods may run concurrently from command goroutines.
type Controller struct {
	backend  Backend
	defaults DraftOptions
	logger   *slog.Logger
}

// NewController creates a controller. defaults.Tone falls back to the
// assistant default when empty.
func NewController(backend Backend, defaults DraftOptions, logger *slog.Logger) *Controller {
	if defaults.Tone == "" {
		defaults.Tone = assistant.DefaultTone
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{backend: backend, defaults: defaults, logger: logger}
}

// Defaults returns the draft options used when a caller has no preference.
func (c *Controller) Defaults() DraftOptions { return c.defaults }

// TriggerSync asks the backend to sync mail.
func (c *Controller) TriggerSync(ctx context.Context) SyncResult {
	n, err := c.backend.Sync(ctx)
	if err != nil {
		c.logger.Warn("sync failed", "error", err)
		return SyncResult{Err: fmt.Errorf("sync emails: %w", err)}
	}
	c.logger.Info("sync complete", "synced", n)
	return SyncResult{Count: n}
}

// LoadEmails fetches the full list.
func (c *Controller) LoadEmails(ctx context.Context) LoadResult {
	emails, err := c.backend.ListEmails(ctx)
	if err != nil {
		c.logger.Warn("load emails failed", "error", err)
		return LoadResult{Err: fmt.Errorf("load emails: %w", err)}
	}
	if dups := duplicateIDs(emails); len(dups) > 0 {
		c.logger.Warn("backend returned duplicate message ids; only the first of each is addressable", "ids", dups)
	}
	c.logger.Debug("emails loaded", "count", len(emails))
	return LoadResult{Emails: emails}
}

func duplicateIDs(emails []assistant.Email) []string {
	seen := make(map[string]bool, len(emails))
	var dups []string
	for _, e := range emails {
		if seen[e.MessageID] {
			dups = append(dups, e.MessageID)
			continue
		}
		seen[e.MessageID] = true
	}
	return dups
}

// GenerateDraft requests a draft for messageID with the given options.
func (c *Controller) GenerateDraft(ctx context.Context, messageID string, opts DraftOptions) DraftResult {
	if opts.Tone == "" {
		opts.Tone = c.defaults.Tone
	}
	draft, err := c.backend.GenerateDraft(ctx, assistant.DraftRequest{
		MessageID:         messageID,
		Tone:              opts.Tone,
		ExtraInstructions: opts.ExtraInstructions,
	})
	if err != nil {
		c.logger.Warn("draft failed", "message_id", messageID, "tone", opts.Tone, "error", err)
		return DraftResult{MessageID: messageID, Err: fmt.Errorf("generate draft: %w", err)}
	}
	c.logger.Info("draft generated", "message_id", messageID, "tone", opts.Tone)
	return DraftResult{MessageID: messageID, Draft: draft}
}

// SendDraft submits text exactly as given.
func (c *Controller) SendDraft(ctx context.Context, messageID, text string) SendResult {
	if _, err := c.backend.SendDraft(ctx, assistant.SendRequest{MessageID: messageID, DraftText: text}); err != nil {
		c.logger.Warn("send failed", "message_id", messageID, "error", err)
		return SendResult{MessageID: messageID, Err: fmt.Errorf("send draft: %w", err)}
	}
	c.logger.Info("draft sent", "message_id", messageID)
	return SendResult{MessageID: messageID}
}
