package tui

import "github.com/bassamadnan/mailpanel/panel"

// EmailsLoadedMsg carries the outcome of a list load.
type EmailsLoadedMsg panel.LoadResult

// SyncedMsg carries the outcome of a sync.
type SyncedMsg panel.SyncResult

// DraftGeneratedMsg carries the outcome of a draft request.
type DraftGeneratedMsg panel.DraftResult

// DraftSentMsg carries the outcome of a send.
type DraftSentMsg panel.SendResult

// Message to clear a temporary status message after a timeout.
// seq ties it to the status it was scheduled for.
type clearTempStatusMsg struct{ seq int }
