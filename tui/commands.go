package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bassamadnan/mailpanel/panel"
)

// loadEmailsCmd fetches the full list.
func loadEmailsCmd(ctx context.Context, c *panel.Controller) tea.Cmd {
	return func() tea.Msg {
		return EmailsLoadedMsg(c.LoadEmails(ctx))
	}
}

// syncCmd triggers a backend sync.
func syncCmd(ctx context.Context, c *panel.Controller) tea.Cmd {
	return func() tea.Msg {
		return SyncedMsg(c.TriggerSync(ctx))
	}
}

// generateDraftCmd requests a draft for one message.
func generateDraftCmd(ctx context.Context, c *panel.Controller, messageID string, opts panel.DraftOptions) tea.Cmd {
	return func() tea.Msg {
		return DraftGeneratedMsg(c.GenerateDraft(ctx, messageID, opts))
	}
}

// sendDraftCmd sends text for one message.
func sendDraftCmd(ctx context.Context, c *panel.Controller, messageID, text string) tea.Cmd {
	return func() tea.Msg {
		return DraftSentMsg(c.SendDraft(ctx, messageID, text))
	}
}

// clearStatusCmd schedules the removal of temporary status seq.
func clearStatusCmd(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearTempStatusMsg{seq: seq}
	})
}
