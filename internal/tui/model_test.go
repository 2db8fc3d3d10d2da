package tui

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/dstchat/internal/conversation"
	apierrors "github.com/diogo/dstchat/internal/errors"
	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/render"
	"github.com/diogo/dstchat/internal/synth"
)

func newTestModel(t *testing.T) (Model, *conversation.Store) {
	t.Helper()
	notifier := NewNotifier()
	store := conversation.New(
		conversation.WithLanguage(locale.English),
		conversation.WithDelay(0),
		conversation.WithNotifier(notifier),
	)
	m := NewChatModel(store, Options{
		Render:    render.DefaultOptions().WithPlain(true),
		ExportDir: t.TempDir(),
		Notifier:  notifier,
	})
	t.Cleanup(func() {
		m.Close()
		_ = store.Close()
	})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), store
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func typeAndSubmit(t *testing.T, m Model, input string) Model {
	t.Helper()
	m.textarea.SetValue(input)
	updated, _ := m.Update(key(tea.KeyEnter))
	return updated.(Model)
}

// settle feeds snapshots into the model until the store is idle
func settle(t *testing.T, m Model) Model {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-m.sub:
			if !ok {
				t.Fatal("subscription closed")
			}
			updated, _ := m.Update(snapshotMsg(snap))
			m = updated.(Model)
			if !snap.Processing {
				return m
			}
		case <-deadline:
			t.Fatal("timed out waiting for the store")
		}
	}
}

func TestNewChatModel_InitialState(t *testing.T) {
	m, _ := newTestModel(t)

	if len(m.snap.Messages) != 1 || m.snap.Messages[0].ID != conversation.WelcomeID {
		t.Fatalf("expected welcome message, got %+v", m.snap.Messages)
	}
	if m.textarea.Placeholder != "Ask about Danish statistics..." {
		t.Errorf("placeholder = %q", m.textarea.Placeholder)
	}
	if !strings.Contains(m.View(), "Danish Statistics Explorer") {
		t.Error("view should contain the header")
	}
}

func TestModel_InitializingView(t *testing.T) {
	store := conversation.New(conversation.WithDelay(0))
	defer store.Close()
	m := NewChatModel(store, Options{})
	defer m.Close()

	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Errorf("view before the first resize = %q", got)
	}
}

func TestModel_AskQuestion(t *testing.T) {
	m, _ := newTestModel(t)

	m = typeAndSubmit(t, m, "population")
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if m.textarea.Value() != "" {
		t.Error("textarea should be cleared after submit")
	}

	m = settle(t, m)
	if len(m.snap.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(m.snap.Messages))
	}

	reply := m.snap.Messages[2]
	if _, ok := m.tables[reply.ID]; !ok {
		t.Error("a table view should exist for the reply")
	}
	if m.focusTable != reply.ID {
		t.Errorf("focusTable = %q, want %q", m.focusTable, reply.ID)
	}

	view := m.viewport.View()
	if !strings.Contains(view, "population") {
		t.Error("viewport should show the question")
	}
}

func TestModel_BusyError(t *testing.T) {
	release := make(chan struct{})
	store := conversation.New(
		conversation.WithLanguage(locale.English),
		conversation.WithDelay(0),
		conversation.WithSynthesizer(conversation.SynthesizerFunc(func(ctx context.Context, q string) (synth.Response, error) {
			<-release
			return synth.NewPipeline().Synthesize(ctx, q)
		})),
	)
	m := NewChatModel(store, Options{})
	defer func() {
		close(release)
		m.Close()
		_ = store.Close()
	}()

	m.ask("gdp")
	m.ask("education")
	if !apierrors.IsBusy(m.err) {
		t.Errorf("second question should be rejected as busy, got %v", m.err)
	}
	if !strings.Contains(FormatError(m.err), "Wait for the current answer") {
		t.Error("busy error should carry a hint")
	}
}

func TestModel_SlashClear(t *testing.T) {
	m, _ := newTestModel(t)

	m = settle(t, typeAndSubmit(t, m, "hello"))
	m = typeAndSubmit(t, m, "/clear")
	m = settle(t, m)

	if len(m.snap.Messages) != 1 {
		t.Errorf("expected only the welcome message, got %d", len(m.snap.Messages))
	}
	if len(m.tables) != 0 {
		t.Error("table views should be dropped with their messages")
	}

	select {
	case note := <-m.toasts:
		if note.Text != "Chat history cleared" {
			t.Errorf("toast = %q", note.Text)
		}
	case <-time.After(time.Second):
		t.Error("expected a cleared toast")
	}
}

func TestModel_SlashLanguage(t *testing.T) {
	m, _ := newTestModel(t)

	m = settle(t, typeAndSubmit(t, m, "/lang da"))
	if m.snap.Language != locale.Danish {
		t.Errorf("language = %q", m.snap.Language)
	}
	if m.textarea.Placeholder != locale.Default().Text(locale.Danish, locale.KeyPlaceholder) {
		t.Errorf("placeholder not localized: %q", m.textarea.Placeholder)
	}

	m = typeAndSubmit(t, m, "/lang fr")
	if m.err == nil {
		t.Error("expected an error for an unsupported language")
	}
}

func TestModel_SlashCategoryFiltersSuggestions(t *testing.T) {
	m, _ := newTestModel(t)

	m = settle(t, typeAndSubmit(t, m, "/category economy"))
	if len(m.snap.SelectedCategories) != 1 || m.snap.SelectedCategories[0] != "Economy" {
		t.Fatalf("selected = %v", m.snap.SelectedCategories)
	}

	visible := m.visibleSuggestions()
	if len(visible) != 2 {
		t.Fatalf("expected 2 economy suggestions, got %d", len(visible))
	}
	for _, q := range visible {
		if q.Category != "Economy" {
			t.Errorf("unexpected category %q", q.Category)
		}
	}
}

func TestModel_SuggestionPicker(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(key(tea.KeyTab))
	m = updated.(Model)
	if !m.picking {
		t.Fatal("tab should open the picker")
	}
	if !strings.Contains(m.View(), "Suggestions") {
		t.Error("picker should be visible")
	}

	updated, _ = m.Update(key(tea.KeyDown))
	m = updated.(Model)
	if m.pickerCursor != 1 {
		t.Errorf("cursor = %d", m.pickerCursor)
	}

	updated, _ = m.Update(key(tea.KeyEnter))
	m = updated.(Model)
	if m.picking {
		t.Error("enter should close the picker")
	}

	m = settle(t, m)
	if len(m.snap.Messages) != 3 {
		t.Fatalf("selecting a suggestion should ask it, got %d messages", len(m.snap.Messages))
	}
	if m.snap.Messages[1].Content != "What is the unemployment rate trend since 2010?" {
		t.Errorf("asked %q", m.snap.Messages[1].Content)
	}
}

func TestModel_TableCommands(t *testing.T) {
	m, _ := newTestModel(t)

	m = typeAndSubmit(t, m, "/sort 1")
	if m.err == nil {
		t.Error("sorting without a table should fail")
	}

	m = settle(t, typeAndSubmit(t, m, "unemployment"))

	m = typeAndSubmit(t, m, "/sort year")
	if m.err != nil {
		t.Fatalf("/sort error: %v", m.err)
	}
	col, dir := m.tables[m.focusTable].SortColumn()
	if col != 0 || dir != synth.SortAsc {
		t.Errorf("sort = %d %s", col, dir)
	}

	m = typeAndSubmit(t, m, "/sort 1")
	if _, dir := m.tables[m.focusTable].SortColumn(); dir != synth.SortDesc {
		t.Error("sorting the same column again should reverse")
	}

	m = typeAndSubmit(t, m, "/filter 2015")
	if got := m.tables[m.focusTable].MatchCount(); got != 1 {
		t.Errorf("filter matched %d rows", got)
	}

	m = typeAndSubmit(t, m, "/page banana")
	if m.err == nil {
		t.Error("expected usage error for /page banana")
	}
}

func TestModel_FindAndHelp(t *testing.T) {
	m, _ := newTestModel(t)
	m = settle(t, typeAndSubmit(t, m, "population"))

	m = typeAndSubmit(t, m, "/find population")
	if m.toast == nil || !strings.HasPrefix(m.toast.Text, "2 matches") {
		t.Errorf("find toast = %+v", m.toast)
	}

	m = typeAndSubmit(t, m, "/help")
	if m.toast == nil || !strings.Contains(m.toast.Text, "/export") {
		t.Errorf("help toast = %+v", m.toast)
	}
}

func TestModel_Export(t *testing.T) {
	m, _ := newTestModel(t)
	m = settle(t, typeAndSubmit(t, m, "population"))

	m = typeAndSubmit(t, m, "/export json")
	if m.err != nil {
		t.Fatalf("export error: %v", m.err)
	}
	if m.toast == nil || !strings.HasPrefix(m.toast.Text, "Exported to ") {
		t.Fatalf("export toast = %+v", m.toast)
	}
	path := strings.TrimPrefix(m.toast.Text, "Exported to ")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}

	m = typeAndSubmit(t, m, "/export pdf")
	if m.err == nil {
		t.Error("expected error for unknown export format")
	}
}

func TestModel_UnknownCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeAndSubmit(t, m, "/bogus")
	if m.err == nil || !strings.Contains(m.err.Error(), "unknown command /bogus") {
		t.Errorf("err = %v", m.err)
	}
}

func TestModel_Theme(t *testing.T) {
	defer func() {
		render.SetTUITheme("tokyonight")
		UpdateTheme()
	}()

	m, _ := newTestModel(t)
	m = typeAndSubmit(t, m, "/theme nord")
	if m.err != nil {
		t.Fatalf("theme error: %v", m.err)
	}
	if render.GetTUITheme().Name != "nord" {
		t.Errorf("theme = %q", render.GetTUITheme().Name)
	}

	m = typeAndSubmit(t, m, "/theme nope")
	if m.err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	m, _ := newTestModel(t)

	for _, k := range []tea.KeyMsg{key(tea.KeyCtrlC), key(tea.KeyEsc)} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%s should return a command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should quit", k)
		}
	}

	m.textarea.SetValue("/quit")
	_, cmd := m.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("/quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("/quit should quit")
	}
}

func TestModel_ToastExpiry(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(toastMsg(conversation.Notification{Level: conversation.LevelSuccess, Text: "done"}))
	m = updated.(Model)
	if m.toast == nil {
		t.Fatal("toast should be shown")
	}
	if !strings.Contains(m.View(), "done") {
		t.Error("toast should be rendered")
	}

	updated, _ = m.Update(toastExpiredMsg{seq: m.toastSeq - 1})
	m = updated.(Model)
	if m.toast == nil {
		t.Error("stale expiry should not clear a newer toast")
	}

	updated, _ = m.Update(toastExpiredMsg{seq: m.toastSeq})
	m = updated.(Model)
	if m.toast != nil {
		t.Error("toast should expire")
	}
}

func TestParseSlashCommand(t *testing.T) {
	tests := []struct {
		in     string
		want   slashCommand
		wantOK bool
	}{
		{"/clear", slashCommand{name: "clear"}, true},
		{"  /LANG da ", slashCommand{name: "lang", arg: "da"}, true},
		{"/filter  some text", slashCommand{name: "filter", arg: "some text"}, true},
		{"population", slashCommand{}, false},
		{"/", slashCommand{}, false},
	}
	for _, tt := range tests {
		got, ok := parseSlashCommand(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseSlashCommand(%q) = %+v, %v", tt.in, got, ok)
		}
	}
}

func TestResolveColumn(t *testing.T) {
	headers := []string{"Year", "Population", "Growth Rate"}
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"1", 0, false},
		{"3", 2, false},
		{"0", 0, true},
		{"4", 0, true},
		{"pop", 1, false},
		{"GROWTH", 2, false},
		{"zzz", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := resolveColumn(headers, tt.arg)
		if (err != nil) != tt.wantErr || (err == nil && got != tt.want) {
			t.Errorf("resolveColumn(%q) = %d, %v", tt.arg, got, err)
		}
	}
}

func TestNotifier_DropsWhenFull(t *testing.T) {
	n := NewNotifier()
	for i := 0; i < 20; i++ {
		n.Notify(conversation.Notification{Text: "x"})
	}
	if got := len(n.C()); got != cap(n.ch) {
		t.Errorf("queue length = %d, want %d", got, cap(n.ch))
	}
}
