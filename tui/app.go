package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/bassamadnan/mailpanel/config"
	"github.com/bassamadnan/mailpanel/panel"
)

// App is the classic tview front-end. Backend calls run on goroutines and
// their results are applied on the UI goroutine through QueueUpdateDraw.
type App struct {
	*tview.Application
	rootPages        *tview.Pages
	dashboardFlex    *tview.Flex
	emailListView    *EmailListView
	previewPane      *PreviewPane
	focusedEmailView *FocusedEmailView
	instructions     *tview.InputField
	statusBar        *tview.TextView

	ctx           context.Context
	controller    *panel.Controller
	configManager *config.Manager
	backendURL    string

	panel     *panel.Panel
	draftOpts panel.DraftOptions
	statusSeq int
	// noticeUp is set while a temporary notice owns the status bar.
	noticeUp bool
}

func NewApp(ctx context.Context, controller *panel.Controller, cfgManager *config.Manager, backendURL string) *App {
	tuiApp := &App{
		Application:   tview.NewApplication(),
		ctx:           ctx,
		controller:    controller,
		configManager: cfgManager,
		backendURL:    backendURL,
		panel:         panel.New(),
		draftOpts:     controller.Defaults(),
	}

	tuiApp.emailListView = NewEmailListView(tuiApp)
	tuiApp.previewPane = NewPreviewPane()
	tuiApp.focusedEmailView = NewFocusedEmailView()

	tuiApp.dashboardFlex = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(tuiApp.emailListView.List, 0, 1, true).
		AddItem(tuiApp.previewPane, 0, 3, false)
	tuiApp.dashboardFlex.SetBackgroundColor(tcell.ColorDefault)

	tuiApp.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetText(" [::d]Status: Loading emails...[::-] | [::b]Q/Ctrl+C[::-]:Quit").
		SetTextAlign(tview.AlignLeft)
	tuiApp.statusBar.SetBackgroundColor(tcell.ColorDefault)

	mainLayoutWithStatus := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tuiApp.dashboardFlex, 0, 1, true).
		AddItem(tuiApp.statusBar, 1, 0, false)
	mainLayoutWithStatus.SetBackgroundColor(tcell.ColorDefault)

	tuiApp.instructions = tview.NewInputField().
		SetLabel("Extra instructions: ").
		SetFieldWidth(0)
	tuiApp.instructions.SetBorder(true).SetTitle("Draft instructions (Enter: save, Esc: cancel)")
	tuiApp.instructions.SetDoneFunc(tuiApp.instructionsDone)

	instructionsModal := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(tuiApp.instructions, 0, 3, true).
			AddItem(nil, 0, 1, false), 3, 0, true).
		AddItem(nil, 0, 1, false)

	tuiApp.rootPages = tview.NewPages().
		AddPage(PageDashboard, mainLayoutWithStatus, true, true).
		AddPage(PageFocusedEmail, tuiApp.focusedEmailView, true, false).
		AddPage(PageInstructions, instructionsModal, true, false)

	tuiApp.Application.SetRoot(tuiApp.rootPages, true).EnableMouse(true)
	tuiApp.setGlobalKeybindings()

	tuiApp.previewPane.SetWelcomeMessage()

	return tuiApp
}

func (a *App) Run() error {
	a.loadEmails()
	a.Application.SetFocus(a.emailListView.List)
	return a.Application.Run()
}

func (a *App) setGlobalKeybindings() {
	a.Application.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.rootPages.GetFrontPage()
		if event.Key() == tcell.KeyCtrlC {
			a.Stop()
			return nil
		}
		if currentPage == PageInstructions {
			return event
		}

		if currentPage == PageFocusedEmail && event.Key() == tcell.KeyEscape {
			a.ShowDashboardView()
			return nil
		}

		switch event.Rune() {
		case 'q', 'Q':
			a.Stop()
		case 's':
			a.syncEmails()
		case 'r':
			a.loadEmails()
		case 'g':
			a.generateSelected()
		case 'x':
			a.sendSelected()
		case 't':
			a.cycleTone()
		case 'i':
			a.instructions.SetText(a.draftOpts.ExtraInstructions)
			a.rootPages.ShowPage(PageInstructions)
			a.Application.SetFocus(a.instructions)
		default:
			return event
		}
		return nil
	})
}

func (a *App) selectedItem() (panel.Item, bool) {
	return a.panel.At(a.emailListView.List.GetCurrentItem())
}

func (a *App) loadEmails() {
	if !a.noticeUp {
		a.setStatus("[::d]Loading emails...[::-]")
	}
	go func() {
		r := a.controller.LoadEmails(a.ctx)
		a.QueueUpdateDraw(func() { a.applyLoad(r) })
	}()
}

func (a *App) syncEmails() {
	a.setStatus("[::d]Syncing emails...[::-]")
	go func() {
		r := a.controller.TriggerSync(a.ctx)
		a.QueueUpdateDraw(func() {
			if r.Err != nil {
				a.showNotice(fmt.Sprintf("Error: %v", r.Err), true)
				return
			}
			a.showNotice(r.Notice(), false)
			a.loadEmails()
		})
	}()
}

func (a *App) generateSelected() {
	item, ok := a.selectedItem()
	switch {
	case !ok:
		a.showNotice("No email selected", false)
		return
	case item.Pending:
		a.showNotice("Still waiting on the previous request for this email", false)
		return
	case item.State() == panel.HasDraft:
		a.showNotice("Draft already generated; press x to send it", false)
		return
	}

	id := item.Email.MessageID
	opts := a.draftOpts
	a.panel.SetPending(id, true)
	a.refreshViews()
	a.showNotice(fmt.Sprintf("Generating %s draft...", opts.Tone), false)
	go func() {
		r := a.controller.GenerateDraft(a.ctx, id, opts)
		a.QueueUpdateDraw(func() {
			err := a.panel.ApplyDraft(r)
			switch {
			case errors.Is(err, panel.ErrUnknownMessage):
				a.showNotice("Draft arrived after the list changed; discarded", false)
			case err != nil:
				a.showNotice(fmt.Sprintf("Error: %v", err), true)
			default:
				a.showNotice("Draft ready for "+panel.DisplayText(r.MessageID), false)
			}
			a.refreshViews()
		})
	}()
}

func (a *App) sendSelected() {
	item, ok := a.selectedItem()
	if !ok {
		a.showNotice("No email selected", false)
		return
	}
	if item.Pending {
		a.showNotice("Still waiting on the previous request for this email", false)
		return
	}
	id := item.Email.MessageID
	text, ok := a.panel.DraftText(id)
	if !ok {
		a.showNotice("No draft yet; press g to generate one", false)
		return
	}

	a.panel.SetPending(id, true)
	a.refreshViews()
	a.showNotice("Sending draft...", false)
	go func() {
		r := a.controller.SendDraft(a.ctx, id, text)
		a.QueueUpdateDraw(func() {
			if err := a.panel.ApplySend(r); err != nil {
				a.showNotice(fmt.Sprintf("Error: %v", err), true)
				a.refreshViews()
				return
			}
			a.showNotice(panel.DisplayText(r.Notice()), false)
			a.loadEmails()
		})
	}()
}

func (a *App) cycleTone() {
	a.draftOpts.Tone = a.draftOpts.Tone.Next()
	if a.configManager != nil {
		if err := a.configManager.SetTone(a.draftOpts.Tone); err != nil {
			a.showNotice(fmt.Sprintf("Error saving tone: %v", err), true)
			return
		}
	}
	a.showNotice(fmt.Sprintf("Tone: %s", a.draftOpts.Tone), false)
	a.refreshViews()
}

func (a *App) instructionsDone(key tcell.Key) {
	if key == tcell.KeyEnter {
		a.draftOpts.ExtraInstructions = strings.TrimSpace(a.instructions.GetText())
		if a.configManager != nil {
			if err := a.configManager.SetExtraInstructions(a.draftOpts.ExtraInstructions); err != nil {
				a.showNotice(fmt.Sprintf("Error saving instructions: %v", err), true)
			} else {
				a.showNotice("Extra instructions updated", false)
			}
		} else {
			a.showNotice("Extra instructions updated", false)
		}
	}
	a.rootPages.HidePage(PageInstructions)
	if front, _ := a.rootPages.GetFrontPage(); front == PageFocusedEmail {
		a.Application.SetFocus(a.focusedEmailView.textView)
	} else {
		a.Application.SetFocus(a.emailListView.List)
	}
}

func (a *App) applyLoad(r panel.LoadResult) {
	selectedID := ""
	if item, ok := a.selectedItem(); ok {
		selectedID = item.Email.MessageID
	}
	if err := a.panel.ApplyLoad(r); err != nil {
		a.showNotice(fmt.Sprintf("Error: %v", err), true)
		return
	}
	a.emailListView.Refresh(a.panel, selectedID)
	if a.panel.Len() == 0 {
		a.ShowDashboardView()
	}
	a.refreshViews()
	if !a.noticeUp {
		a.setStandardStatusMessage()
	}
}

// refreshViews re-renders the list rows and the detail views from the panel.
func (a *App) refreshViews() {
	selectedID := ""
	if item, ok := a.selectedItem(); ok {
		selectedID = item.Email.MessageID
	}
	a.emailListView.Refresh(a.panel, selectedID)
	a.UpdatePreviewPane()
	if front, _ := a.rootPages.GetFrontPage(); front == PageFocusedEmail {
		if item, ok := a.selectedItem(); ok {
			a.focusedEmailView.SetItem(item, a.draftOpts.Tone)
		}
	}
}

func (a *App) setStatus(text string) {
	a.statusSeq++
	a.noticeUp = false
	a.statusBar.SetText(" " + text)
}

// showNotice shows a temporary status that reverts to the standard message.
func (a *App) showNotice(text string, isError bool) {
	color, after := "green", noticeDuration
	if isError {
		color, after = "red", errorDuration
		slog.Warn("panel error", "status", text)
	}
	a.setStatus(fmt.Sprintf("[%s]%s[-]", color, tviewText(text)))
	a.noticeUp = true
	seq := a.statusSeq
	time.AfterFunc(after, func() {
		a.QueueUpdateDraw(func() {
			if a.statusSeq == seq {
				a.setStandardStatusMessage()
			}
		})
	})
}

func (a *App) setStandardStatusMessage() {
	statusMsg := fmt.Sprintf("[::d]%s | %d emails | tone: %s[::-] | [::b]Q[::-]:Quit [::b]s[::-]:Sync [::b]r[::-]:Reload [::b]g[::-]:Draft [::b]x[::-]:Send [::b]t[::-]:Tone [::b]i[::-]:Instr [::b]Ent[::-]:Full",
		tview.Escape(a.backendURL), a.panel.Len(), a.draftOpts.Tone)
	a.setStatus(statusMsg)
}

func (a *App) UpdatePreviewPane() {
	if item, ok := a.selectedItem(); ok {
		a.previewPane.SetItem(item, a.draftOpts.Tone)
		return
	}
	if !a.previewPane.IsShowingWelcome() {
		a.previewPane.SetWelcomeMessage()
	}
}

func (a *App) ShowFocusedEmailView() {
	item, ok := a.selectedItem()
	if !ok {
		return
	}
	a.focusedEmailView.SetItem(item, a.draftOpts.Tone)
	a.rootPages.SwitchToPage(PageFocusedEmail)
	a.Application.SetFocus(a.focusedEmailView.textView)
}

func (a *App) ShowDashboardView() {
	a.rootPages.SwitchToPage(PageDashboard)
	a.Application.SetFocus(a.emailListView.List)
}
