package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/bassamadnan/mailpanel/assistant"
	"github.com/bassamadnan/mailpanel/config"
	"github.com/bassamadnan/mailpanel/panel"
)

func TestInit_LoadsEmails(t *testing.T) {
	b := &fakeBackend{emails: testEmails()}
	m := newTestModel(t, b)
	if m.currentView != viewLoading {
		t.Fatalf("currentView = %v, want loading", m.currentView)
	}

	msgs := collectResults(t, m.Init(), 1)
	loaded, ok := msgs[0].(EmailsLoadedMsg)
	if !ok {
		t.Fatalf("Init produced %T, want EmailsLoadedMsg", msgs[0])
	}
	m = update(t, m, loaded)

	if m.currentView != viewDashboard {
		t.Errorf("currentView = %v, want dashboard", m.currentView)
	}
	if m.panel.Len() != 3 {
		t.Errorf("panel.Len() = %d, want 3", m.panel.Len())
	}
	if b.listCount() != 1 {
		t.Errorf("ListEmails called %d times, want 1", b.listCount())
	}
}

func TestRenderEmailList_OneBlockPerEmail(t *testing.T) {
	m := loadedModel(t, &fakeBackend{emails: testEmails()})
	listWidth, _ := m.paneWidths()

	out := stripANSI(m.renderEmailList(listWidth, m.height-1))
	if got := strings.Count(out, BoxTopLeft); got != 3 {
		t.Errorf("rendered %d item blocks, want 3:\n%s", got, out)
	}
	for _, want := range []string{
		"Emails (3)",
		markerNoDraft + " Quarterly report",
		markerHasDraft + " Lunch?",
		"Alice [work]",
		"billing@vendor.example [finance]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmailList_EmptyAfterLoad(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m = update(t, m, EmailsLoadedMsg{Emails: []assistant.Email{}})
	listWidth, _ := m.paneWidths()

	out := stripANSI(m.renderEmailList(listWidth, m.height-1))
	if strings.Contains(out, BoxTopLeft) {
		t.Errorf("empty list rendered item blocks:\n%s", out)
	}
	if !strings.Contains(out, "No emails") {
		t.Errorf("empty list missing hint:\n%s", out)
	}
}

func TestView_Idempotent(t *testing.T) {
	b := &fakeBackend{emails: testEmails()}
	m := loadedModel(t, b)

	first := m.View()
	if second := m.View(); first != second {
		t.Error("rendering the same state twice differs")
	}

	m = update(t, m, EmailsLoadedMsg{Emails: testEmails()})
	if again := m.View(); again != first {
		t.Errorf("reloading identical data changed the view:\n%s", cmp.Diff(first, again))
	}
}

func TestView_NotSized(t *testing.T) {
	b := &fakeBackend{}
	m := newTestModel(t, b)
	m.width, m.height = 0, 0
	if got := m.View(); got != "Initializing terminal size..." {
		t.Errorf("View() = %q", got)
	}
}

func TestGenerateDraft_UpdatesOnlyThatItem(t *testing.T) {
	b := &fakeBackend{emails: testEmails(), draft: "Thanks Alice, I will review it today."}
	m := loadedModel(t, b)
	othersBefore := m.panel.Items()[1:]

	m, cmd := updateCmd(t, m, keyRunes("g"))
	if it, _ := m.panel.Lookup("m1"); !it.Pending {
		t.Error("m1 should be pending while the draft is generated")
	}

	msgs := collectResults(t, cmd, 1)
	m, cmd = updateCmd(t, m, msgs[0])

	it, _ := m.panel.Lookup("m1")
	if it.State() != panel.HasDraft || it.DraftText() != "Thanks Alice, I will review it today." {
		t.Errorf("m1 = %+v, want the generated draft", it)
	}
	if it.Pending {
		t.Error("m1 still pending after the result")
	}
	if diff := cmp.Diff(othersBefore, m.panel.Items()[1:]); diff != "" {
		t.Errorf("other items changed (-before +after):\n%s", diff)
	}

	wantReq := []assistant.DraftRequest{{MessageID: "m1", Tone: assistant.ToneProfessional}}
	if diff := cmp.Diff(wantReq, b.draftRequests()); diff != "" {
		t.Errorf("draft requests mismatch (-want +got):\n%s", diff)
	}

	if res := collectResults(t, cmd, 0); len(res) != 0 {
		t.Errorf("draft result triggered %d backend calls, want none", len(res))
	}
	if b.listCount() != 0 {
		t.Errorf("ListEmails called %d times, want 0", b.listCount())
	}

	view := stripANSI(m.View())
	for _, want := range []string{"Thanks Alice, I will review it today.", "[x] Send"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestGenerateDraft_SkipsItemWithDraft(t *testing.T) {
	b := &fakeBackend{emails: testEmails()}
	m := loadedModel(t, b)
	m = update(t, m, keyRunes("j"))

	m, cmd := updateCmd(t, m, keyRunes("g"))
	collectResults(t, cmd, 0)
	if n := len(b.draftRequests()); n != 0 {
		t.Errorf("GenerateDraft called %d times for an item with a draft", n)
	}
	if it, _ := m.panel.Lookup("m2"); it.Pending {
		t.Error("m2 should not be pending")
	}
}

func TestGenerateDraft_FailureLeavesItem(t *testing.T) {
	b := &fakeBackend{emails: testEmails()}
	m := loadedModel(t, b)

	m = update(t, m, keyRunes("g"))
	m = update(t, m, DraftGeneratedMsg{MessageID: "m1", Err: errors.New("backend error (500): model overloaded")})

	it, _ := m.panel.Lookup("m1")
	if it.State() != panel.NoDraft || it.Pending {
		t.Errorf("m1 = %+v, want unchanged with no draft", it)
	}
	if !m.statusIsError || !strings.Contains(m.statusBarText, "model overloaded") {
		t.Errorf("status = %q (error=%v), want the failure", m.statusBarText, m.statusIsError)
	}
}

func TestDraftResult_UnknownMessageDiscarded(t *testing.T) {
	m := loadedModel(t, &fakeBackend{emails: testEmails()})
	before := m.panel.Items()

	m = update(t, m, DraftGeneratedMsg{MessageID: "gone", Draft: "late"})
	if diff := cmp.Diff(before, m.panel.Items()); diff != "" {
		t.Errorf("items changed (-before +after):\n%s", diff)
	}
	if m.statusIsError {
		t.Errorf("stale result reported as error: %q", m.statusBarText)
	}
}

func TestSendDraft_UsesDisplayedTextAndReloads(t *testing.T) {
	b := &fakeBackend{emails: testEmails()}
	m := loadedModel(t, b)
	m = update(t, m, keyRunes("j"))

	displayed, ok := m.panel.DraftText("m2")
	if !ok {
		t.Fatal("m2 should have a draft")
	}

	m, cmd := updateCmd(t, m, keyRunes("x"))
	msgs := collectResults(t, cmd, 1)

	wantSend := []assistant.SendRequest{{MessageID: "m2", DraftText: displayed}}
	if diff := cmp.Diff(wantSend, b.sendRequests()); diff != "" {
		t.Errorf("send requests mismatch (-want +got):\n%s", diff)
	}

	m, cmd = updateCmd(t, m, msgs[0])
	if m.statusBarText != "Sent (simulated) m2" {
		t.Errorf("status = %q, want send notice", m.statusBarText)
	}

	reload := collectResults(t, cmd, 1)
	if _, ok := reload[0].(EmailsLoadedMsg); !ok {
		t.Errorf("send success produced %T, want EmailsLoadedMsg", reload[0])
	}
	if b.listCount() != 1 {
		t.Errorf("ListEmails called %d times after send, want 1", b.listCount())
	}
}

func TestSendDraft_CRLFDraftSentAsShown(t *testing.T) {
	draft := "Hi\r\nThanks"
	b := &fakeBackend{emails: []assistant.Email{{MessageID: "m1", Subject: "Hello", Draft: &draft}}}
	m := loadedModel(t, b)

	if view := stripANSI(m.View()); !strings.Contains(view, "Thanks") {
		t.Fatalf("view missing draft:\n%s", view)
	}
	_, cmd := updateCmd(t, m, keyRunes("x"))
	collectResults(t, cmd, 1)

	want := []assistant.SendRequest{{MessageID: "m1", DraftText: "Hi\nThanks"}}
	if diff := cmp.Diff(want, b.sendRequests()); diff != "" {
		t.Errorf("send requests mismatch (-want +got):\n%s", diff)
	}
}

func TestSendDraft_WithoutDraftDoesNothing(t *testing.T) {
	b := &fakeBackend{emails: testEmails()}
	m := loadedModel(t, b)

	_, cmd := updateCmd(t, m, keyRunes("x"))
	collectResults(t, cmd, 0)
	if n := len(b.sendRequests()); n != 0 {
		t.Errorf("SendDraft called %d times without a draft", n)
	}
}

func TestSync_ShowsNoticeAndReloads(t *testing.T) {
	b := &fakeBackend{emails: testEmails(), synced: 3}
	m := loadedModel(t, b)

	m, cmd := updateCmd(t, m, keyRunes("s"))
	if !m.syncing {
		t.Error("syncing flag not set")
	}
	msgs := collectResults(t, cmd, 1)

	m, cmd = updateCmd(t, m, msgs[0])
	if m.statusBarText != "Synced 3 emails" {
		t.Errorf("status = %q, want %q", m.statusBarText, "Synced 3 emails")
	}
	reload := collectResults(t, cmd, 1)
	if _, ok := reload[0].(EmailsLoadedMsg); !ok {
		t.Errorf("sync success produced %T, want EmailsLoadedMsg", reload[0])
	}
}

func TestSync_FailureKeepsItems(t *testing.T) {
	m := loadedModel(t, &fakeBackend{emails: testEmails()})
	before := m.panel.Items()

	m, cmd := updateCmd(t, m, SyncedMsg{Err: errors.New("network failure: connection refused")})
	if !m.statusIsError {
		t.Error("sync failure should be reported as an error")
	}
	if res := collectResults(t, cmd, 0); len(res) != 0 {
		t.Errorf("failed sync triggered %d backend calls", len(res))
	}
	if diff := cmp.Diff(before, m.panel.Items()); diff != "" {
		t.Errorf("items changed (-before +after):\n%s", diff)
	}
}

func TestLoadFailure_KeepsRenderedList(t *testing.T) {
	m := loadedModel(t, &fakeBackend{emails: testEmails()})
	listWidth, _ := m.paneWidths()
	before := m.renderEmailList(listWidth, m.height-1)

	m = update(t, m, EmailsLoadedMsg{Err: errors.New("connection refused")})
	if after := m.renderEmailList(listWidth, m.height-1); after != before {
		t.Errorf("list changed after failed load:\n%s", cmp.Diff(before, after))
	}
	if !m.statusIsError || !strings.Contains(m.statusBarText, "connection refused") {
		t.Errorf("status = %q, want the load error", m.statusBarText)
	}
}

func TestReload_PreservesSelectionByID(t *testing.T) {
	m := loadedModel(t, &fakeBackend{emails: testEmails()})
	m = update(t, m, keyRunes("j"))
	m = update(t, m, keyRunes("j"))

	e := testEmails()
	m = update(t, m, EmailsLoadedMsg{Emails: []assistant.Email{e[2], e[0], e[1]}})
	it, ok := m.selectedItem()
	if !ok || it.Email.MessageID != "m3" {
		t.Errorf("selected %+v, want m3", it.Email)
	}
}

func TestToneAndInstructions_FlowIntoDraftRequest(t *testing.T) {
	b := &fakeBackend{emails: testEmails(), draft: "ok"}
	m := loadedModel(t, b)

	m = update(t, m, keyRunes("t"))
	if m.draftOpts.Tone != assistant.ToneFriendly {
		t.Fatalf("tone = %q, want friendly", m.draftOpts.Tone)
	}

	m = update(t, m, keyRunes("i"))
	if m.currentView != viewInstructions {
		t.Fatalf("currentView = %v, want instructions", m.currentView)
	}
	m = update(t, m, keyRunes("brief"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.currentView != viewDashboard {
		t.Errorf("currentView = %v, want dashboard after enter", m.currentView)
	}
	if m.draftOpts.ExtraInstructions != "brief" {
		t.Errorf("ExtraInstructions = %q, want %q", m.draftOpts.ExtraInstructions, "brief")
	}

	_, cmd := updateCmd(t, m, keyRunes("g"))
	collectResults(t, cmd, 1)
	want := []assistant.DraftRequest{{MessageID: "m1", Tone: assistant.ToneFriendly, ExtraInstructions: "brief"}}
	if diff := cmp.Diff(want, b.draftRequests()); diff != "" {
		t.Errorf("draft requests mismatch (-want +got):\n%s", diff)
	}
}

func TestToneAndInstructions_Persisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	mgr, err := config.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	b := &fakeBackend{emails: testEmails()}
	c := panel.NewController(b, panel.DraftOptions{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := NewModel(context.Background(), c, mgr, "http://assistant.test")
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, EmailsLoadedMsg{Emails: b.emails})

	m = update(t, m, keyRunes("t"))
	m = update(t, m, keyRunes("i"))
	m = update(t, m, keyRunes("sign as Sam"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.statusIsError {
		t.Fatalf("status = %q, want no save error", m.statusBarText)
	}

	reloaded, err := config.NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() reload error = %v", err)
	}
	got := reloaded.Get().Draft
	if got.Tone != assistant.ToneFriendly || got.ExtraInstructions != "sign as Sam" {
		t.Errorf("saved draft settings = %+v, want friendly / sign as Sam", got)
	}
}

func TestInstructions_EscCancels(t *testing.T) {
	m := loadedModel(t, &fakeBackend{emails: testEmails()})
	m = update(t, m, keyRunes("i"))
	m = update(t, m, keyRunes("ignored"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.currentView != viewDashboard {
		t.Errorf("currentView = %v, want dashboard", m.currentView)
	}
	if m.draftOpts.ExtraInstructions != "" {
		t.Errorf("ExtraInstructions = %q, want unchanged", m.draftOpts.ExtraInstructions)
	}
}

func TestFocusedView_OpenAndBack(t *testing.T) {
	m := loadedModel(t, &fakeBackend{emails: testEmails()})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.currentView != viewFocusedEmail {
		t.Fatalf("currentView = %v, want focused", m.currentView)
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "Full View: Quarterly report") {
		t.Errorf("focused view missing title:\n%s", view)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.currentView != viewDashboard {
		t.Errorf("currentView = %v, want dashboard", m.currentView)
	}
}

func TestView_StripsTerminalControlFromBackendText(t *testing.T) {
	emails := []assistant.Email{{
		MessageID:      "m1",
		Subject:        "\x1b[2Jboom",
		Sender:         "Mallory \x1b[31m<m@example.com>",
		Classification: "spam",
		Snippet:        "<script>alert(1)</script>hello",
	}}
	m := loadedModel(t, &fakeBackend{emails: emails})

	view := m.View()
	if strings.Contains(view, "\x1b[2J") {
		t.Error("view contains a clear-screen sequence from backend data")
	}
	plain := stripANSI(view)
	if !strings.Contains(plain, "boom") {
		t.Errorf("subject text missing:\n%s", plain)
	}
	if strings.Contains(plain, "<script>") {
		t.Errorf("snippet markup not removed:\n%s", plain)
	}
}

func TestStatusBar_ErrorIsStyled(t *testing.T) {
	forceColorProfile(t)
	m := loadedModel(t, &fakeBackend{emails: testEmails()})
	m = update(t, m, EmailsLoadedMsg{Err: errors.New("boom")})

	bar := m.renderStatusBar()
	if !strings.Contains(bar, ansiStart) {
		t.Error("error status bar should be styled")
	}
	if !strings.Contains(stripANSI(bar), "Error: boom") {
		t.Errorf("status bar = %q", stripANSI(bar))
	}
}

func TestClearTempStatus_OnlyMatchingSeq(t *testing.T) {
	m := loadedModel(t, &fakeBackend{emails: testEmails()})
	m = update(t, m, SyncedMsg{Count: 1})
	seq := m.statusSeq

	m = update(t, m, clearTempStatusMsg{seq: seq - 1})
	if !m.statusIsTemp {
		t.Error("an older clear message removed the current notice")
	}
	m = update(t, m, clearTempStatusMsg{seq: seq})
	if m.statusIsTemp {
		t.Error("matching clear message left the notice")
	}
	if !strings.Contains(m.statusBarText, "3 emails") {
		t.Errorf("standard status = %q", m.statusBarText)
	}
}

func TestGenerateDraft_MultiLineDraftShownVerbatim(t *testing.T) {
	b := &fakeBackend{emails: testEmails()}
	m := loadedModel(t, b)
	m = update(t, m, keyRunes("g"))
	m = update(t, m, DraftGeneratedMsg{MessageID: "m1", Draft: "Hello,\nThanks..."})

	text, ok := m.panel.DraftText("m1")
	if !ok || text != "Hello,\nThanks..." {
		t.Fatalf("DraftText(m1) = %q, %v", text, ok)
	}
	view := stripANSI(m.View())
	for _, want := range []string{"Hello,", "Thanks...", "[x] Send"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
