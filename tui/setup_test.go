package tui

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bassamadnan/mailpanel/assistant"
	"github.com/bassamadnan/mailpanel/panel"
)

// ansiStart is the escape sequence prefix found in styled terminal output.
const ansiStart = "\x1b["

// colorProfileMu serializes tests that mutate the global lipgloss color profile.
var colorProfileMu sync.Mutex

// forceColorProfile sets lipgloss to ANSI color output for tests that assert
// on styled output and restores the original profile via t.Cleanup.
func forceColorProfile(t *testing.T) {
	t.Helper()
	colorProfileMu.Lock()
	orig := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(orig)
		colorProfileMu.Unlock()
	})
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// fakeBackend is an in-memory panel.Backend. Commands run on their own
// goroutines, so every field is guarded by mu.
type fakeBackend struct {
	mu     sync.Mutex
	synced int
	emails []assistant.Email
	draft  string
	err    error

	listed int
	drafts []assistant.DraftRequest
	sends  []assistant.SendRequest
}

func (f *fakeBackend) Sync(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.synced, f.err
}

func (f *fakeBackend) ListEmails(context.Context) ([]assistant.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed++
	if f.err != nil {
		return nil, f.err
	}
	return f.emails, nil
}

func (f *fakeBackend) GenerateDraft(_ context.Context, req assistant.DraftRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, req)
	if f.err != nil {
		return "", f.err
	}
	return f.draft, nil
}

func (f *fakeBackend) SendDraft(_ context.Context, req assistant.SendRequest) (assistant.SendAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, req)
	if f.err != nil {
		return nil, f.err
	}
	return assistant.SendAck{"status": "sent"}, nil
}

func (f *fakeBackend) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listed
}

func (f *fakeBackend) draftRequests() []assistant.DraftRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]assistant.DraftRequest(nil), f.drafts...)
}

func (f *fakeBackend) sendRequests() []assistant.SendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]assistant.SendRequest(nil), f.sends...)
}

func testEmails() []assistant.Email {
	draft := "Sounds good, see you at noon."
	return []assistant.Email{
		{MessageID: "m1", Subject: "Quarterly report", Sender: "Alice <alice@example.com>", Classification: "work", Snippet: "Please review the <b>attached</b> report."},
		{MessageID: "m2", Subject: "Lunch?", Sender: "Bob <bob@example.com>", Classification: "personal", Draft: &draft},
		{MessageID: "m3", Subject: "Invoice #42", Sender: "billing@vendor.example", Classification: "finance"},
	}
}

// newTestModel builds a sized model with no config persistence.
func newTestModel(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	c := panel.NewController(b, panel.DraftOptions{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := NewModel(context.Background(), c, nil, "http://assistant.test")
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

// loadedModel is newTestModel after a successful load of the backend's emails.
func loadedModel(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	m := newTestModel(t, b)
	return update(t, m, EmailsLoadedMsg{Emails: b.emails})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := updateCmd(t, m, msg)
	return next
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collectResults runs cmd (expanding batches) and returns the backend result
// messages it produced. It returns once want results arrived, or after a
// short grace period when want is zero.
func collectResults(t *testing.T, cmd tea.Cmd, want int) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	out := make(chan tea.Msg, 64)
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			out <- msg
		}()
	}
	run(cmd)

	wait := 2 * time.Second
	if want == 0 {
		wait = 200 * time.Millisecond
	}
	timeout := time.After(wait)

	var results []tea.Msg
	for {
		select {
		case msg := <-out:
			switch msg.(type) {
			case EmailsLoadedMsg, SyncedMsg, DraftGeneratedMsg, DraftSentMsg:
				results = append(results, msg)
				if want > 0 && len(results) >= want {
					return results
				}
			}
		case <-timeout:
			if want > 0 {
				t.Fatalf("got %d result messages, want %d", len(results), want)
			}
			return results
		}
	}
}
