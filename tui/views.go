package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/bassamadnan/mailpanel/assistant"
	"github.com/bassamadnan/mailpanel/panel"
)

const (
	PageDashboard    = "dashboard"
	PageFocusedEmail = "focusedEmail"
	PageInstructions = "instructions"
)

// tviewText makes backend text safe for a dynamic-colour TextView.
func tviewText(s string) string {
	return tview.Escape(panel.DisplayText(s))
}

// listItemText returns the main and secondary text of one list row.
func listItemText(item panel.Item) (mainText, secondaryText string) {
	subject := truncate(panel.DisplayText(item.Email.Subject), 40)
	if subject == "" {
		subject = "(No Subject)"
	}
	marker := markerNoDraft
	switch {
	case item.Pending:
		marker = "…"
	case item.State() == panel.HasDraft:
		marker = markerHasDraft
	}

	from := truncate(senderName(panel.DisplayText(item.Email.Sender)), 20)
	class := panel.DisplayText(item.Email.Classification)
	if class == "" {
		class = "unclassified"
	}

	mainText = fmt.Sprintf("[white]%s %s", marker, tview.Escape(subject))
	secondaryText = fmt.Sprintf("[::d]%s · %s", tview.Escape(from), tview.Escape("["+class+"]"))
	return mainText, secondaryText
}

// itemDetailText renders the header, snippet and action area of one item.
func itemDetailText(item panel.Item, tone assistant.Tone, ruleWidth int) string {
	e := item.Email
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("[::b]From:[::-] %s\n", tviewText(e.Sender)))
	builder.WriteString(fmt.Sprintf("[::b]Subject:[::-] %s\n", tviewText(e.Subject)))
	builder.WriteString(fmt.Sprintf("[::b]Class:[::-] [aqua]%s[-]\n", tviewText(e.Classification)))
	builder.WriteString(fmt.Sprintf("[::b]ID:[::-] %s\n\n", tviewText(e.MessageID)))
	if snippet := panel.CleanSnippet(e.Snippet); snippet != "" {
		builder.WriteString(tview.Escape(snippet) + "\n\n")
	}
	builder.WriteString(strings.Repeat("─", ruleWidth) + "\n\n")

	switch {
	case item.State() == panel.HasDraft:
		builder.WriteString("[::b]Draft:[::-]\n")
		builder.WriteString(tviewText(item.DraftText()) + "\n\n")
		if item.Pending {
			builder.WriteString("[orange::i]Sending...[-::-]")
		} else {
			builder.WriteString("[green::b]" + tview.Escape("[x]") + " Send[-::-]")
		}
	case item.Pending:
		builder.WriteString("[orange::i]Waiting for the assistant...[-::-]")
	default:
		builder.WriteString("[green::b]" + tview.Escape("[g]") + " Generate Draft[-::-]")
		builder.WriteString(fmt.Sprintf("\n[::d]tone: %s[::-]", tone))
	}
	return builder.String()
}

type EmailListView struct {
	*tview.List
	app *App
}

func NewEmailListView(app *App) *EmailListView {
	list := tview.NewList().
		ShowSecondaryText(true).
		SetSecondaryTextColor(tcell.ColorDimGray)

	list.SetBackgroundColor(tcell.ColorDefault)
	list.SetSelectedStyle(tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorSteelBlue).
		Attributes(tcell.AttrBold))

	list.SetBorder(true).SetTitle("Emails")

	elv := &EmailListView{List: list, app: app}

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		if elv.app != nil {
			elv.app.UpdatePreviewPane()
		}
	})

	list.SetSelectedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		if elv.app != nil {
			elv.app.ShowFocusedEmailView()
		}
	})

	return elv
}

// Refresh rebuilds the rows from the view-model, keeping the selection on
// selectedID when it is still present.
func (elv *EmailListView) Refresh(p *panel.Panel, selectedID string) {
	current := elv.List.GetCurrentItem()
	elv.List.Clear()
	for _, item := range p.Items() {
		mainText, secondaryText := listItemText(item)
		elv.List.AddItem(mainText, secondaryText, 0, nil)
	}
	elv.List.SetTitle(fmt.Sprintf("Emails (%d)", p.Len()))

	if p.Len() == 0 {
		return
	}
	if idx := p.Index(selectedID); selectedID != "" && idx >= 0 {
		current = idx
	}
	if current < 0 || current >= p.Len() {
		current = 0
	}
	elv.List.SetCurrentItem(current)
}

type PreviewPane struct {
	*tview.TextView
	isWelcome bool
}

func NewPreviewPane() *PreviewPane {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	tv.SetBackgroundColor(tcell.ColorDefault)
	tv.SetBorder(true).SetTitle("Preview")
	return &PreviewPane{TextView: tv, isWelcome: true}
}

func (pp *PreviewPane) SetItem(item panel.Item, tone assistant.Tone) {
	scrollToTop := pp.isWelcome || pp.GetTitle() != previewTitle(item)
	pp.isWelcome = false
	pp.SetText(itemDetailText(item, tone, 60)).SetTextAlign(tview.AlignLeft)
	if scrollToTop {
		pp.ScrollToBeginning()
	}
	pp.SetTitle(previewTitle(item))
}

func previewTitle(item panel.Item) string {
	return fmt.Sprintf("Preview: %s", tview.Escape(truncate(panel.DisplayText(item.Email.Subject), 40)))
}

func (pp *PreviewPane) SetWelcomeMessage() {
	pp.isWelcome = true
	pp.SetText("\n[lightblue::b]mailpanel[-::-]\n\nNo email selected or list is empty.\n\n[::d]Press s to sync or r to reload.\nNavigate emails with ↑ ↓ keys.\nPress Enter to open in full view.\nPress Q or Ctrl+C to quit.[::-]").
		ScrollToBeginning()
	pp.SetTitle("Home")
}

func (pp *PreviewPane) IsShowingWelcome() bool {
	return pp.isWelcome
}

type FocusedEmailView struct {
	*tview.Frame
	textView *tview.TextView
}

func NewFocusedEmailView() *FocusedEmailView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	textView.SetBackgroundColor(tcell.ColorDefault)

	frame := tview.NewFrame(textView).
		AddText("", true, tview.AlignCenter, tcell.ColorYellow).
		AddText("Press Esc to go back", false, tview.AlignCenter, tcell.ColorDimGray)
	frame.SetBorder(true).SetBackgroundColor(tcell.ColorDefault)

	return &FocusedEmailView{
		Frame:    frame,
		textView: textView,
	}
}

func (fev *FocusedEmailView) SetItem(item panel.Item, tone assistant.Tone) {
	fev.textView.SetText(itemDetailText(item, tone, 70)).ScrollToBeginning()
	fev.Frame.Clear().
		AddText(fmt.Sprintf("Subject: %s", tview.Escape(truncate(panel.DisplayText(item.Email.Subject), 60))), true, tview.AlignCenter, tcell.ColorYellow).
		AddText("g: Draft  x: Send  Esc: Back", false, tview.AlignCenter, tcell.ColorDimGray).
		SetPrimitive(fev.textView)
}
