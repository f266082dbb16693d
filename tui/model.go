package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bassamadnan/mailpanel/config"
	"github.com/bassamadnan/mailpanel/panel"
)

type viewState int

const (
	viewLoading viewState = iota
	viewDashboard
	viewFocusedEmail
	viewInstructions
)

const (
	emailListItemHeight = 4
	minListPaneWidth    = 30
	minPreviewPaneWidth = 40

	noticeDuration = 4 * time.Second
	errorDuration  = 8 * time.Second
)

// Model is the bubbletea front-end of the email panel. All view state lives
// in the panel view-model; Model adds selection, layout and status.
type Model struct {
	ctx           context.Context
	controller    *panel.Controller
	configManager *config.Manager // nil disables persisting tone/instruction changes
	backendURL    string

	panel     *panel.Panel
	draftOpts panel.DraftOptions

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model
	preview viewport.Model

	selectedIdx     int
	viewportTopLine int
	currentView     viewState
	returnView      viewState
	showHelp        bool

	loading  bool
	syncing  bool
	spinning bool

	width, height int
	statusBarText string
	statusIsError bool
	statusIsTemp  bool
	statusSeq     int
}

// NewModel creates the panel model. The first load is issued by Init.
func NewModel(ctx context.Context, controller *panel.Controller, cfgManager *config.Manager, backendURL string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = PendingStyle

	ti := textinput.New()
	ti.Placeholder = "e.g. mention I am out of office until Monday"
	ti.Prompt = "> "
	ti.CharLimit = 500

	return Model{
		ctx:           ctx,
		controller:    controller,
		configManager: cfgManager,
		backendURL:    backendURL,
		panel:         panel.New(),
		draftOpts:     controller.Defaults(),
		keys:          DefaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		input:         ti,
		preview:       viewport.New(0, 0),
		currentView:   viewLoading,
		statusBarText: "Loading emails...",
		loading:       true,
		spinning:      true,
	}
}

func (m Model) Init() tea.Cmd {
	slog.Debug("tui init", "backend", m.backendURL)
	return tea.Batch(
		loadEmailsCmd(m.ctx, m.controller),
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureSelectedVisible()
		m.resizePreview()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EmailsLoadedMsg:
		m.handleEmailsLoaded(msg, &cmds)

	case SyncedMsg:
		m.syncing = false
		r := panel.SyncResult(msg)
		if r.Err != nil {
			m.showTemporaryError(fmt.Sprintf("Error: %v", r.Err), &cmds)
			break
		}
		m.showTemporaryStatus(r.Notice(), noticeDuration, &cmds)
		m.startLoad(&cmds)

	case DraftGeneratedMsg:
		r := panel.DraftResult(msg)
		err := m.panel.ApplyDraft(r)
		switch {
		case errors.Is(err, panel.ErrUnknownMessage):
			m.showTemporaryStatus(fmt.Sprintf("Draft for %s arrived after the list changed; discarded", panel.DisplayText(r.MessageID)), noticeDuration, &cmds)
		case err != nil:
			m.showTemporaryError(fmt.Sprintf("Error: %v", err), &cmds)
		default:
			m.showTemporaryStatus(fmt.Sprintf("Draft ready for %s", panel.DisplayText(r.MessageID)), noticeDuration, &cmds)
		}
		m.refreshPreview(false)

	case DraftSentMsg:
		r := panel.SendResult(msg)
		if err := m.panel.ApplySend(r); err != nil {
			m.showTemporaryError(fmt.Sprintf("Error: %v", err), &cmds)
			m.refreshPreview(false)
			break
		}
		m.showTemporaryStatus(panel.DisplayText(r.Notice()), noticeDuration, &cmds)
		m.startLoad(&cmds)

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			break
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		if item, ok := m.selectedItem(); ok && item.Pending {
			m.refreshPreview(false)
		}

	case clearTempStatusMsg:
		if m.statusIsTemp && msg.seq == m.statusSeq {
			m.statusIsTemp = false
			m.statusIsError = false
			m.setStandardStatus()
		}

	default:
		if m.currentView == viewInstructions {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.currentView == viewInstructions {
		return m.handleInstructionsKey(msg)
	}

	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.updateStatusBar("Quitting...")
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keys.Back):
		if m.showHelp {
			m.showHelp = false
		} else if m.currentView == viewFocusedEmail {
			m.currentView = viewDashboard
			m.resizePreview()
			m.setStandardStatus()
		}

	case key.Matches(msg, m.keys.Up):
		if m.currentView == viewDashboard && m.selectedIdx > 0 {
			m.selectedIdx--
			m.ensureSelectedVisible()
			m.refreshPreview(true)
		}

	case key.Matches(msg, m.keys.Down):
		if m.currentView == viewDashboard && m.selectedIdx < m.panel.Len()-1 {
			m.selectedIdx++
			m.ensureSelectedVisible()
			m.refreshPreview(true)
		}

	case key.Matches(msg, m.keys.Open):
		if _, ok := m.selectedItem(); ok && m.currentView == viewDashboard {
			m.currentView = viewFocusedEmail
			m.resizePreview()
			m.setStandardStatus()
		}

	case key.Matches(msg, m.keys.ScrollUp):
		m.preview.SetYOffset(m.preview.YOffset - 1)

	case key.Matches(msg, m.keys.ScrollDown):
		m.preview.SetYOffset(m.preview.YOffset + 1)

	case key.Matches(msg, m.keys.Sync):
		m.startSync(&cmds)

	case key.Matches(msg, m.keys.Reload):
		m.startLoad(&cmds)

	case key.Matches(msg, m.keys.Generate):
		m.generateSelected(&cmds)

	case key.Matches(msg, m.keys.Send):
		m.sendSelected(&cmds)

	case key.Matches(msg, m.keys.Tone):
		m.cycleTone(&cmds)

	case key.Matches(msg, m.keys.Instructions):
		m.returnView = m.currentView
		if m.returnView == viewLoading {
			m.returnView = viewDashboard
		}
		m.currentView = viewInstructions
		m.input.SetValue(m.draftOpts.ExtraInstructions)
		m.input.CursorEnd()
		cmds = append(cmds, m.input.Focus())
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleInstructionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg.Type {
	case tea.KeyEnter:
		m.draftOpts.ExtraInstructions = strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.currentView = m.returnView
		if m.configManager != nil {
			if err := m.configManager.SetExtraInstructions(m.draftOpts.ExtraInstructions); err != nil {
				m.showTemporaryError(fmt.Sprintf("Error saving instructions: %v", err), &cmds)
				break
			}
		}
		m.showTemporaryStatus("Extra instructions updated", noticeDuration, &cmds)
		m.refreshPreview(false)
	case tea.KeyEsc:
		m.input.Blur()
		m.currentView = m.returnView
		m.setStandardStatus()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleEmailsLoaded(msg EmailsLoadedMsg, cmds *[]tea.Cmd) {
	m.loading = false
	prevID := ""
	if item, ok := m.selectedItem(); ok {
		prevID = item.Email.MessageID
	}

	if m.currentView == viewLoading {
		m.currentView = viewDashboard
	}
	if err := m.panel.ApplyLoad(panel.LoadResult(msg)); err != nil {
		m.showTemporaryError(fmt.Sprintf("Error: %v", err), cmds)
		return
	}

	m.selectedIdx = 0
	if prevID != "" {
		if idx := m.panel.Index(prevID); idx >= 0 {
			m.selectedIdx = idx
		}
	}
	if m.panel.Len() == 0 && m.currentView == viewFocusedEmail {
		m.currentView = viewDashboard
	}
	m.ensureSelectedVisible()
	m.resizePreview()
	m.refreshPreview(true)
	m.setStandardStatus()
}

func (m *Model) startLoad(cmds *[]tea.Cmd) {
	m.loading = true
	*cmds = append(*cmds, loadEmailsCmd(m.ctx, m.controller), m.startSpinner())
	m.setStandardStatus()
}

func (m *Model) startSync(cmds *[]tea.Cmd) {
	m.syncing = true
	*cmds = append(*cmds, syncCmd(m.ctx, m.controller), m.startSpinner())
	m.showTemporaryStatus("Syncing emails...", noticeDuration, cmds)
}

func (m *Model) generateSelected(cmds *[]tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok {
		m.showTemporaryStatus("No email selected", noticeDuration, cmds)
		return
	}
	id := item.Email.MessageID
	switch {
	case item.Pending:
		m.showTemporaryStatus("Still waiting on the previous request for this email", noticeDuration, cmds)
		return
	case item.State() == panel.HasDraft:
		m.showTemporaryStatus("Draft already generated; press x to send it", noticeDuration, cmds)
		return
	}

	m.panel.SetPending(id, true)
	*cmds = append(*cmds, generateDraftCmd(m.ctx, m.controller, id, m.draftOpts), m.startSpinner())
	m.showTemporaryStatus(fmt.Sprintf("Generating %s draft...", m.draftOpts.Tone), noticeDuration, cmds)
	m.refreshPreview(false)
}

func (m *Model) sendSelected(cmds *[]tea.Cmd) {
	item, ok := m.selectedItem()
	if !ok {
		m.showTemporaryStatus("No email selected", noticeDuration, cmds)
		return
	}
	if item.Pending {
		m.showTemporaryStatus("Still waiting on the previous request for this email", noticeDuration, cmds)
		return
	}
	id := item.Email.MessageID
	text, ok := m.panel.DraftText(id)
	if !ok {
		m.showTemporaryStatus("No draft yet; press g to generate one", noticeDuration, cmds)
		return
	}

	m.panel.SetPending(id, true)
	*cmds = append(*cmds, sendDraftCmd(m.ctx, m.controller, id, text), m.startSpinner())
	m.showTemporaryStatus("Sending draft...", noticeDuration, cmds)
	m.refreshPreview(false)
}

func (m *Model) cycleTone(cmds *[]tea.Cmd) {
	m.draftOpts.Tone = m.draftOpts.Tone.Next()
	if m.configManager != nil {
		if err := m.configManager.SetTone(m.draftOpts.Tone); err != nil {
			m.showTemporaryError(fmt.Sprintf("Error saving tone: %v", err), cmds)
			return
		}
	}
	m.showTemporaryStatus(fmt.Sprintf("Tone: %s", m.draftOpts.Tone), noticeDuration, cmds)
	m.refreshPreview(false)
}

// startSpinner restarts the spinner tick loop if it stopped.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// busy reports whether any backend call is in flight.
func (m Model) busy() bool {
	if m.loading || m.syncing {
		return true
	}
	for _, it := range m.panel.Items() {
		if it.Pending {
			return true
		}
	}
	return false
}

func (m Model) selectedItem() (panel.Item, bool) {
	return m.panel.At(m.selectedIdx)
}

func (m *Model) showTemporaryStatus(text string, duration time.Duration, cmds *[]tea.Cmd) {
	m.statusSeq++
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = true
	*cmds = append(*cmds, clearStatusCmd(m.statusSeq, duration))
}

func (m *Model) showTemporaryError(text string, cmds *[]tea.Cmd) {
	slog.Warn("panel error", "status", text)
	m.statusSeq++
	m.statusBarText = panel.DisplayText(text)
	m.statusIsError = true
	m.statusIsTemp = true
	*cmds = append(*cmds, clearStatusCmd(m.statusSeq, errorDuration))
}

func (m *Model) updateStatusBar(text string) {
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = false
}

func (m *Model) setStandardStatus() {
	if m.statusIsTemp {
		return
	}

	state := "Ready"
	switch {
	case m.syncing:
		state = "Syncing"
	case m.loading:
		state = "Loading"
	}

	statusMsg := fmt.Sprintf(" %s | %s | %d emails | tone: %s ",
		state, m.backendURL, m.panel.Len(), m.draftOpts.Tone)

	keyHints := "[q]:Quit [?]:Help"
	switch m.currentView {
	case viewDashboard:
		keyHints += " | [↑↓/jk]:Nav [s]:Sync [g]:Draft [x]:Send [t]:Tone"
	case viewFocusedEmail:
		keyHints += " | [Esc]:Back [g]:Draft [x]:Send [KJ]:Scroll"
	}
	m.updateStatusBar(statusMsg + "| " + keyHints)
}

func (m *Model) ensureSelectedVisible() {
	if m.panel.Len() == 0 {
		m.selectedIdx = 0
		m.viewportTopLine = 0
		return
	}
	if m.selectedIdx >= m.panel.Len() {
		m.selectedIdx = m.panel.Len() - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}

	itemsThatFit := m.getNumItemsThatFitInList()
	if itemsThatFit <= 0 {
		m.viewportTopLine = m.selectedIdx
		return
	}

	if m.selectedIdx < m.viewportTopLine {
		m.viewportTopLine = m.selectedIdx
	} else if m.selectedIdx >= m.viewportTopLine+itemsThatFit {
		m.viewportTopLine = m.selectedIdx - itemsThatFit + 1
	}

	maxPossibleViewportTop := max(m.panel.Len()-itemsThatFit, 0)
	m.viewportTopLine = min(max(m.viewportTopLine, 0), maxPossibleViewportTop)
}

func (m Model) getNumItemsThatFitInList() int {
	statusBarHeight := 1
	listTitleRenderedHeight := lipgloss.Height(EmailListTitleStyle.Render(" "))
	availableHeight := max(m.height-statusBarHeight-listTitleRenderedHeight, 0)
	return availableHeight / emailListItemHeight
}

// paneWidths splits the terminal between the list and the preview.
func (m Model) paneWidths() (listWidth, previewWidth int) {
	listWidth = int(float64(m.width) * 0.35)
	if listWidth < minListPaneWidth {
		listWidth = minListPaneWidth
	}
	if listWidth > m.width-minPreviewPaneWidth && m.width > minPreviewPaneWidth {
		listWidth = m.width - minPreviewPaneWidth
	}
	listWidth = min(max(listWidth, 0), m.width)

	if m.width < minListPaneWidth+minPreviewPaneWidth {
		if m.width < minListPaneWidth {
			listWidth = m.width
		} else {
			listWidth = minListPaneWidth
		}
	}
	previewWidth = max(m.width-listWidth, 0)
	return listWidth, previewWidth
}

// resizePreview fits the preview viewport into the pane of the current view.
func (m *Model) resizePreview() {
	contentHeight := max(m.height-1, 0)
	paneWidth := m.width
	if m.currentView != viewFocusedEmail {
		_, paneWidth = m.paneWidths()
	}
	// border (2) + horizontal padding (2); border (2) + title (1)
	m.preview.Width = max(paneWidth-4, 0)
	m.preview.Height = max(contentHeight-3, 0)
	m.refreshPreview(false)
}

// refreshPreview re-derives the preview content from the selected item.
func (m *Model) refreshPreview(resetScroll bool) {
	m.preview.SetContent(m.previewContent(m.preview.Width))
	if resetScroll {
		m.preview.GotoTop()
	}
}

func (m Model) previewContent(width int) string {
	item, ok := m.selectedItem()
	if !ok {
		msg := "mailpanel\n\nNo email selected or list is empty.\n\nPress s to sync or r to reload."
		return lipgloss.NewStyle().Width(max(width, 1)).Render(msg)
	}

	e := item.Email
	class := panel.DisplayText(e.Classification)
	if class == "" {
		class = "unclassified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", HeaderKeyStyle.Render("From:"), HeaderValStyle.Render(truncate(panel.DisplayText(e.Sender), width-6))))
	b.WriteString(fmt.Sprintf("%s %s\n", HeaderKeyStyle.Render("Subject:"), HeaderValStyle.Render(truncate(panel.DisplayText(e.Subject), width-9))))
	b.WriteString(fmt.Sprintf("%s %s\n", HeaderKeyStyle.Render("Class:"), ClassificationStyle.Render(truncate(class, width-7))))
	b.WriteString(fmt.Sprintf("%s %s\n", HeaderKeyStyle.Render("ID:"), HeaderValStyle.Render(truncate(panel.DisplayText(e.MessageID), width-4))))

	if snippet := panel.CleanSnippet(e.Snippet); snippet != "" {
		b.WriteString(BodyStyle.Width(max(width, 1)).Render(snippet))
		b.WriteString("\n")
	}
	b.WriteString("\n" + strings.Repeat(BoxHorizontal, max(width/2, 1)) + "\n\n")
	b.WriteString(m.renderActionArea(item, width))
	return b.String()
}

// renderActionArea renders the per-item action: the generate prompt, or the
// draft with its send prompt.
func (m Model) renderActionArea(item panel.Item, width int) string {
	if item.State() == panel.HasDraft {
		draft := DraftStyle.Width(max(width-2, 1)).Render(panel.DisplayText(item.DraftText()))
		action := ActionStyle.Render("[x] Send")
		if item.Pending {
			action = PendingStyle.Render(m.spinner.View() + " Sending...")
		}
		return lipgloss.JoinVertical(lipgloss.Left, draft, action)
	}
	if item.Pending {
		return PendingStyle.Render(m.spinner.View() + " Waiting for the assistant...")
	}
	action := ActionStyle.Render("[g] Generate Draft")
	opts := NormalSecondaryTextStyle.Render(fmt.Sprintf("tone: %s", m.draftOpts.Tone))
	if m.draftOpts.ExtraInstructions != "" {
		opts += "\n" + NormalSecondaryTextStyle.Render(truncate("instructions: "+m.draftOpts.ExtraInstructions, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, action, opts)
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing terminal size..."
	}

	var mainUIView string
	statusBarHeight := 1
	contentHeight := max(m.height-statusBarHeight, 0)

	switch {
	case m.showHelp:
		h := m.help
		h.ShowAll = true
		mainUIView = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, InputBoxStyle.Render(h.View(m.keys)))

	case m.currentView == viewLoading:
		loadingText := fmt.Sprintf("%s Loading emails from %s...", m.spinner.View(), m.backendURL)
		mainUIView = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, loadingText)

	case m.currentView == viewDashboard:
		listWidth, previewWidth := m.paneWidths()
		emailListRendered := m.renderEmailList(listWidth, contentHeight)
		previewPaneRendered := m.renderPreviewPane(previewWidth, contentHeight)
		mainUIView = lipgloss.JoinHorizontal(lipgloss.Top, emailListRendered, previewPaneRendered)

	case m.currentView == viewFocusedEmail:
		mainUIView = m.renderFocusedEmailView(m.width, contentHeight)

	case m.currentView == viewInstructions:
		box := InputBoxStyle.Width(min(max(m.width-10, 20), 80)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				TitleStyle.Render("Extra instructions for drafts"),
				"",
				m.input.View(),
				"",
				NormalSecondaryTextStyle.Render("enter: save  esc: cancel"),
			))
		mainUIView = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, box)
	}

	statusBarRendered := m.renderStatusBar()
	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, mainUIView, statusBarRendered))
}

// renderEmailList renders the visible window of the list. The output depends
// only on the model state and the pane size.
func (m Model) renderEmailList(paneWidth, paneHeight int) string {
	title := EmailListTitleStyle.Render(fmt.Sprintf("Emails (%d)", m.panel.Len()))
	listItemsContainerHeight := max(paneHeight-lipgloss.Height(title), 0)

	itemTextContentWidth := paneWidth - EmailListItemStyle.GetPaddingLeft() - EmailListItemStyle.GetPaddingRight() - 2 - 2 - EmailListStyle.GetHorizontalFrameSize()
	if itemTextContentWidth < 10 {
		itemTextContentWidth = 10
	}

	numItemsToDisplay := listItemsContainerHeight / emailListItemHeight
	items := m.panel.Items()
	startIdx := min(max(m.viewportTopLine, 0), len(items))
	endIdx := min(startIdx+numItemsToDisplay, len(items))

	var body string
	switch {
	case len(items) == 0 && m.panel.Loaded():
		body = NormalSecondaryTextStyle.Render(" No emails. Press s to sync.")
	case paneWidth > 0 && paneHeight > 0:
		spinnerFrame := m.spinner.View()
		visible := make([]string, 0, endIdx-startIdx)
		for i := startIdx; i < endIdx; i++ {
			visible = append(visible, formatEmailListItem(items[i], i == m.selectedIdx, itemTextContentWidth, spinnerFrame))
		}
		body = strings.Join(visible, "\n")
	}

	fullListRender := lipgloss.JoinVertical(lipgloss.Left, title, body)
	return EmailListStyle.Width(max(paneWidth-EmailListStyle.GetHorizontalBorderSize(), 0)).Height(paneHeight).MaxHeight(paneHeight).Render(fullListRender)
}

func (m Model) renderPreviewPane(paneWidth, paneHeight int) string {
	if paneWidth <= 4 || paneHeight <= 3 {
		return ""
	}
	titleText := "Home"
	if item, ok := m.selectedItem(); ok {
		titleText = "Preview: " + panel.DisplayText(item.Email.Subject)
	}
	return m.renderContentBox(titleText, paneWidth, paneHeight)
}

func (m Model) renderFocusedEmailView(paneWidth, paneHeight int) string {
	if paneWidth <= 4 || paneHeight <= 3 {
		return ""
	}
	titleText := "Error"
	if item, ok := m.selectedItem(); ok {
		titleText = "Full View: " + panel.DisplayText(item.Email.Subject)
	}
	return m.renderContentBox(titleText, paneWidth, paneHeight)
}

// renderContentBox draws the bordered box holding a title and the preview viewport.
func (m Model) renderContentBox(titleText string, paneWidth, paneHeight int) string {
	innerWidth := paneWidth - ContentBoxStyle.GetHorizontalFrameSize()
	styledTitle := TitleStyle.Render(truncate(titleText, innerWidth-TitleStyle.GetHorizontalPadding()))
	return ContentBoxStyle.
		Width(paneWidth - ContentBoxStyle.GetHorizontalBorderSize()).
		Height(paneHeight - ContentBoxStyle.GetVerticalBorderSize()).
		MaxHeight(paneHeight).
		Render(lipgloss.JoinVertical(lipgloss.Top, styledTitle, m.preview.View()))
}

func (m Model) renderStatusBar() string {
	styleToUse := StatusBarNormalStyle
	if m.statusIsError {
		styleToUse = StatusBarErrorStyle
	} else if m.statusIsTemp {
		styleToUse = StatusBarSuccessStyle
	}
	text := m.statusBarText
	if m.busy() {
		text = m.spinner.View() + " " + text
	}
	return styleToUse.Width(m.width).Render(truncate(text, m.width-styleToUse.GetHorizontalPadding()))
}
