package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/history"
	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/models"
	"github.com/diogo/dstchat/internal/render"
	"github.com/diogo/dstchat/internal/synth"
)

const toastDuration = 4 * time.Second

// Message types for the TUI
type (
	animationTickMsg      time.Time
	snapshotMsg           conversation.Snapshot
	subscriptionClosedMsg struct{}
	toastMsg              conversation.Notification
	toastExpiredMsg       struct{ seq int }
)

// Options configures the chat model
type Options struct {
	Render render.Options
	// ExportDir receives /export transcripts
	ExportDir string
	// Notifier must be the notifier the store was created with for store
	// toasts to appear.
	Notifier *Notifier
}

// Model is the chat screen. It reads store state only through a
// subscription and writes only through store operations.
type Model struct {
	store       *conversation.Store
	sub         <-chan conversation.Snapshot
	unsubscribe func()
	toasts      <-chan conversation.Notification
	opts        Options

	snap conversation.Snapshot

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ready          bool
	err            error
	animationFrame int

	toast    *conversation.Notification
	toastSeq int

	picking      bool
	pickerCursor int

	// table views per message ID; slash commands act on focusTable
	tables     map[string]synth.TableView
	focusTable string

	// rendered markdown per message, valid for renderedWidth
	rendered      map[string]string
	renderedWidth int

	width  int
	height int
}

// NewChatModel creates the chat model and subscribes it to store
func NewChatModel(store *conversation.Store, opts Options) Model {
	ta := textarea.New()
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	if opts.Render == (render.Options{}) {
		opts.Render = render.DefaultOptions()
	}

	sub, unsubscribe := store.Subscribe()

	m := Model{
		store:       store,
		sub:         sub,
		unsubscribe: unsubscribe,
		opts:        opts,
		textarea:    ta,
		spinner:     s,
		tables:      make(map[string]synth.TableView),
		rendered:    make(map[string]string),
	}
	if opts.Notifier != nil {
		m.toasts = opts.Notifier.C()
	}

	// Subscribe delivers the current state immediately
	if snap, ok := <-sub; ok {
		m.applySnapshot(snap)
	}
	return m
}

// Close releases the store subscription
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts the blink, spinner and store listeners
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		waitForSnapshot(m.sub),
		waitForToast(m.toasts),
	)
}

func waitForSnapshot(sub <-chan conversation.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-sub
		if !ok {
			return subscriptionClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func waitForToast(ch <-chan conversation.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return toastMsg(<-ch)
	}
}

func animationTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

func (m *Model) showToast(n conversation.Notification) tea.Cmd {
	m.toast = &n
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 4
		statusHeight := 2
		vpHeight := m.height - headerHeight - inputHeight - statusHeight - 2
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()
		m.viewport.GotoBottom()

	case snapshotMsg:
		wasProcessing := m.snap.Processing
		m.applySnapshot(conversation.Snapshot(msg))
		m.updateViewport()
		m.viewport.GotoBottom()
		cmds = append(cmds, waitForSnapshot(m.sub))
		if m.snap.Processing && !wasProcessing {
			m.animationFrame = 0
			cmds = append(cmds, m.spinner.Tick, animationTick())
		}

	case subscriptionClosedMsg:
		return m, tea.Quit

	case toastMsg:
		cmds = append(cmds, m.showToast(conversation.Notification(msg)), waitForToast(m.toasts))

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.picking {
			return m.updatePicker(msg)
		}

		switch msg.String() {
		case "esc":
			return m, tea.Quit

		case "tab":
			if !m.snap.Processing && len(m.visibleSuggestions()) > 0 {
				m.picking = true
				m.pickerCursor = 0
			}
			return m, nil

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" || m.snap.Processing {
				return m, nil
			}
			m.textarea.Reset()
			if c, ok := parseSlashCommand(input); ok {
				return m.runCommand(c)
			}
			m.ask(input)
			return m, nil
		}

	case spinner.TickMsg:
		if m.snap.Processing {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.snap.Processing {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only key presses reach the textarea, and not while a reply is pending
	if !m.snap.Processing {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) ask(question string) {
	if _, err := m.store.AddMessage(conversation.UserDraft(question)); err != nil {
		m.err = err
		return
	}
	m.err = nil
}

// applySnapshot takes over a store snapshot and keeps table views in step
// with the tables in the history.
func (m *Model) applySnapshot(snap conversation.Snapshot) {
	if snap.Language != m.snap.Language {
		m.textarea.Placeholder = locale.Default().Text(snap.Language, locale.KeyPlaceholder)
	}
	m.snap = snap

	live := make(map[string]bool, len(snap.Messages))
	m.focusTable = ""
	for _, msg := range snap.Messages {
		if msg.DataTable == nil {
			continue
		}
		live[msg.ID] = true
		if _, ok := m.tables[msg.ID]; !ok {
			m.tables[msg.ID] = synth.NewTableView(*msg.DataTable)
		}
		m.focusTable = msg.ID
	}
	for id := range m.tables {
		if !live[id] {
			delete(m.tables, id)
		}
	}
}

func (m Model) runCommand(c slashCommand) (tea.Model, tea.Cmd) {
	m.err = nil
	var cmd tea.Cmd

	switch c.name {
	case "quit", "exit", "q":
		return m, tea.Quit

	case "clear":
		m.store.ClearMessages()

	case "lang", "language":
		m.err = m.store.SetLanguage(locale.Language(c.arg))

	case "category", "cat":
		if c.arg == "" {
			m.err = fmt.Errorf("usage: /category <name>")
			break
		}
		m.store.ToggleCategorySelection(m.canonicalCategory(c.arg))

	case "filter":
		m.withFocusTable(func(v synth.TableView) synth.TableView { return v.Filter(c.arg) })

	case "sort":
		m.withFocusTable(func(v synth.TableView) synth.TableView {
			col, err := resolveColumn(v.Table().Headers, c.arg)
			if err != nil {
				m.err = err
				return v
			}
			return v.SortBy(col)
		})

	case "page":
		m.withFocusTable(func(v synth.TableView) synth.TableView {
			switch strings.ToLower(c.arg) {
			case "", "next", "n":
				return v.Next()
			case "prev", "p", "previous":
				return v.Prev()
			}
			n, err := strconv.Atoi(c.arg)
			if err != nil {
				m.err = fmt.Errorf("usage: /page next|prev|<number>")
				return v
			}
			return v.Goto(n)
		})

	case "find":
		results := history.SearchMessages(m.snap.Messages, c.arg)
		text := fmt.Sprintf("%d matches", len(results))
		if len(results) > 0 {
			text += ": " + results[0].Snippet
		}
		cmd = m.showToast(conversation.Notification{Level: conversation.LevelInfo, Text: text})

	case "export":
		cmd = m.export(c.arg)

	case "theme":
		if !render.SetTUITheme(c.arg) {
			m.err = fmt.Errorf("unknown theme %q (available: %s)", c.arg, strings.Join(render.TUIThemeNames(), ", "))
			break
		}
		UpdateTheme()
		m.rendered = make(map[string]string)

	case "help", "?":
		cmd = m.showToast(conversation.Notification{Level: conversation.LevelInfo, Text: helpText()})

	default:
		m.err = fmt.Errorf("unknown command /%s (try /help)", c.name)
	}

	m.updateViewport()
	return m, cmd
}

func (m *Model) export(arg string) tea.Cmd {
	format, err := history.ParseFormat(arg)
	if err != nil {
		m.err = err
		return nil
	}
	if m.opts.ExportDir == "" {
		m.err = fmt.Errorf("export directory is not configured")
		return nil
	}

	opts := history.DefaultExportOptions()
	opts.Format = format
	path, err := history.ExportFile(m.opts.ExportDir, m.snap, opts)
	if err != nil {
		m.err = err
		return nil
	}
	return m.showToast(conversation.Notification{Level: conversation.LevelSuccess, Text: "Exported to " + path})
}

func (m *Model) withFocusTable(fn func(synth.TableView) synth.TableView) {
	v, ok := m.tables[m.focusTable]
	if !ok {
		m.err = fmt.Errorf("there is no table to work with yet")
		return
	}
	m.tables[m.focusTable] = fn(v)
}

// resolveColumn accepts a 1-based column number or a header prefix
func resolveColumn(headers []string, arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(headers) {
			return 0, fmt.Errorf("column %d out of range 1-%d", n, len(headers))
		}
		return n - 1, nil
	}
	needle := strings.ToLower(strings.TrimSpace(arg))
	if needle != "" {
		for i, h := range headers {
			if strings.HasPrefix(strings.ToLower(h), needle) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("no column matches %q (columns: %s)", arg, strings.Join(headers, ", "))
}

func (m Model) canonicalCategory(name string) string {
	for _, q := range m.snap.SuggestedQueries {
		if strings.EqualFold(q.Category, name) {
			return q.Category
		}
	}
	return name
}

// visibleSuggestions applies the category selection; no selection shows all
func (m Model) visibleSuggestions() []models.SuggestedQuery {
	if len(m.snap.SelectedCategories) == 0 {
		return m.snap.SuggestedQueries
	}
	selected := make(map[string]bool, len(m.snap.SelectedCategories))
	for _, c := range m.snap.SelectedCategories {
		selected[c] = true
	}
	var out []models.SuggestedQuery
	for _, q := range m.snap.SuggestedQueries {
		if selected[q.Category] {
			out = append(out, q)
		}
	}
	return out
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.visibleSuggestions()
	switch msg.String() {
	case "esc", "tab":
		m.picking = false
	case "up", "k":
		if len(items) > 0 {
			m.pickerCursor = (m.pickerCursor - 1 + len(items)) % len(items)
		}
	case "down", "j":
		if len(items) > 0 {
			m.pickerCursor = (m.pickerCursor + 1) % len(items)
		}
	case "enter":
		m.picking = false
		if m.pickerCursor < len(items) {
			m.ask(items[m.pickerCursor].Text)
		}
	}
	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	cat := locale.Default()
	lang := m.snap.Language
	contentWidth := m.width - 4
	var sections []string

	headerParts := []string{
		titleStyle.Render("✦ Danish Statistics Explorer"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(strings.ToUpper(string(lang))),
	}
	if len(m.snap.SelectedCategories) > 0 {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			categoryActiveStyle.Render(strings.Join(m.snap.SelectedCategories, ", ")),
		)
	}
	sections = append(sections, headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)))

	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	if m.picking {
		sections = append(sections, m.renderPicker(contentWidth))
	}

	var inputContent string
	if m.snap.Processing {
		inputContent = m.renderLoadingAnimation(cat.Text(lang, locale.KeyThinking))
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render(cat.Text(lang, locale.KeyYou)),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	if m.toast != nil {
		sections = append(sections, renderToast(*m.toast))
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}
	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderToast(n conversation.Notification) string {
	switch n.Level {
	case conversation.LevelError:
		return toastErrorStyle.Render("✗ " + n.Text)
	case conversation.LevelSuccess:
		return toastSuccessStyle.Render("✓ " + n.Text)
	default:
		return toastInfoStyle.Render("• " + n.Text)
	}
}

func (m Model) renderPicker(width int) string {
	cat := locale.Default()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(cat.Text(m.snap.Language, locale.KeySuggestions)))
	sb.WriteString("\n")

	for i, q := range m.visibleSuggestions() {
		category := categoryStyle.Render("[" + q.Category + "]")
		if i == m.pickerCursor {
			sb.WriteString(pickerSelectedStyle.Render("▸ "+q.Text) + " " + category)
		} else {
			sb.WriteString(pickerItemStyle.Render(q.Text) + " " + category)
		}
		sb.WriteString("\n")
	}
	return pickerStyle.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) renderLoadingAnimation(label string) string {
	frame := m.animationFrame
	bar := strings.Builder{}
	for i := 0; i < 16; i++ {
		color := gradientColors[(i+frame)%len(gradientColors)]
		bar.WriteString(lipgloss.NewStyle().Foreground(color).Render("▮"))
	}

	dots := strings.Repeat("●", (frame/3)%4) + strings.Repeat("○", 3-(frame/3)%4)
	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + label + " ")
	return fmt.Sprintf("%s %s%s%s", m.spinner.View(), bar.String(), text, loadingStyle.Render(dots))
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Tab", "Suggestions"},
		{"/help", "Commands"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport re-renders the history into the viewport
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	cat := locale.Default()
	lang := m.snap.Language
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}
	if bubbleWidth != m.renderedWidth {
		m.rendered = make(map[string]string)
		m.renderedWidth = bubbleWidth
	}

	var content strings.Builder
	for i, msg := range m.snap.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			content.WriteString(userLabelStyle.Render("● " + cat.Text(lang, locale.KeyYou)))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Content))
			content.WriteString("\n")
			continue
		}

		content.WriteString(assistantLabelStyle.Render("✦ " + cat.Text(lang, locale.KeyAssistant)))
		content.WriteString("\n")
		content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(m.renderSystemMessage(msg, bubbleWidth-4)))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m *Model) renderSystemMessage(msg models.Message, width int) string {
	key := msg.ID + ":" + string(m.snap.Language)
	body, ok := m.rendered[key]
	if !ok {
		opts := m.opts.Render.WithWidth(width)
		rendered, err := render.Markdown(msg.Content, opts)
		if err != nil {
			rendered = msg.Content
		}
		body = strings.Trim(rendered, "\n")
		m.rendered[key] = body
	}

	parts := []string{body}
	for _, v := range msg.Visualizations {
		parts = append(parts, render.Chart(v, width))
	}
	if view, ok := m.tables[msg.ID]; ok {
		parts = append(parts, render.Table(view, m.snap.Language))
	}
	return strings.Join(parts, "\n\n")
}

// RunChat runs the chat TUI until the user quits
func RunChat(store *conversation.Store, opts Options) error {
	m := NewChatModel(store, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
