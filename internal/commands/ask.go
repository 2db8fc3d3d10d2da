package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/dstchat/internal/conversation"
	apierrors "github.com/diogo/dstchat/internal/errors"
	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/models"
	"github.com/diogo/dstchat/internal/render"
)

// maxParallelQuestions caps concurrent sessions for one ask invocation
const maxParallelQuestions = 4

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#c60c30"), // Dannebrog red
	lipgloss.Color("#e63950"),
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#ffffff"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#e63950"),
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorError    = lipgloss.Color("#f7768e")
	colorPrimary  = lipgloss.Color("#7aa2f7")
)

var (
	questionStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Italic(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)
)

// askOptions are the flags shared by the root command and ask
type askOptions struct {
	jsonOut bool
	sel     string
	copy    bool
	plain   bool
	output  string
}

func (o *askOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "Print replies as JSON")
	cmd.Flags().StringVar(&o.sel, "select", "", "Print only this gjson path of the JSON reply")
	cmd.Flags().BoolVar(&o.copy, "copy", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "Print markdown without terminal styling")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Save the reply to a file")
}

// askResult is one answered question
type askResult struct {
	Question string         `json:"question"`
	Reply    models.Message `json:"reply"`
	Failed   bool           `json:"failed,omitempty"`

	cause error
}

func newAskCmd(c *cli) *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask <question>...",
		Short: "Answer one or more questions",
		Long: `Answer each question in its own session and print the replies in order.

Every argument is a separate question; quote multi-word questions.

Examples:
  dstchat ask "population growth" "unemployment rate"
  dstchat ask --json --select 'reply.dataTable.title' "GDP"
  dstchat ask --lang da "befolkning"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAsk(cmd.Context(), args, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// runAsk answers the questions concurrently, one independent store each,
// and writes the results in argument order.
func (c *cli) runAsk(ctx context.Context, questions []string, opts askOptions) error {
	lang := c.language()
	decorated := c.deps.Decorated() && !opts.plain && !opts.jsonOut && opts.sel == "" && opts.output == ""

	var spin *spinner
	if decorated {
		spin = newSpinner(c.deps.Stderr, c.catalogText(lang, locale.KeyThinking))
		spin.start()
	}

	results, err := c.answerAll(ctx, questions)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		fmt.Fprintln(c.deps.Stderr, formatErrorMessage(err, "Question failed"))
		return err
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	var text string
	switch {
	case opts.jsonOut || opts.sel != "":
		text, err = formatJSON(results, opts.sel)
	case decorated:
		text, err = c.formatDecorated(results, lang)
	default:
		text, err = formatPlain(results, lang)
	}
	if err != nil {
		return err
	}

	if opts.copy || c.cfg.CopyToClipboard {
		c.copyReplies(results, lang)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if c.deps.Decorated() {
			fmt.Fprintln(c.deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", opts.output),
			))
		}
	} else {
		fmt.Fprintln(c.deps.Stdout, text)
	}

	return failedError(results)
}

func (c *cli) answerAll(ctx context.Context, questions []string) ([]askResult, error) {
	results := make([]askResult, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelQuestions)
	for i, q := range questions {
		g.Go(func() error {
			res, err := c.answer(gctx, i, q)
			if err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// answer runs one question through a fresh store and waits for the reply
func (c *cli) answer(ctx context.Context, index int, question string) (askResult, error) {
	logger := c.logger.With(zap.Int("question", index+1))
	store := conversation.New(c.storeOptions(conversation.WithLogger(logger))...)
	defer store.Close()

	task, err := store.AddMessage(conversation.UserDraft(question))
	if err != nil {
		return askResult{}, err
	}

	reply, err := task.Wait(ctx)
	if err != nil {
		return askResult{}, err
	}
	return askResult{
		Question: question,
		Reply:    reply,
		Failed:   task.Failed(),
		cause:    task.Cause(),
	}, nil
}

func (c *cli) formatDecorated(results []askResult, lang locale.Language) (string, error) {
	bubbleWidth := clamp(c.deps.TerminalWidth()-4, 40, 120)
	opts := render.OptionsFromConfig(c.cfg, bubbleWidth-4)

	label := assistantLabelStyle.Render("✦ " + c.catalogText(lang, locale.KeyAssistant))

	var parts []string
	for _, r := range results {
		body, err := render.Message(r.Reply, lang, opts)
		if err != nil {
			return "", fmt.Errorf("failed to render reply: %w", err)
		}
		parts = append(parts,
			questionStyle.Render("› "+r.Question),
			label,
			assistantBubbleStyle.Width(bubbleWidth).Render(strings.TrimRight(body, "\n")),
		)
	}
	return strings.Join(parts, "\n"), nil
}

func formatPlain(results []askResult, lang locale.Language) (string, error) {
	opts := render.DefaultOptions().WithPlain(true)

	var parts []string
	for _, r := range results {
		body, err := render.Message(r.Reply, lang, opts)
		if err != nil {
			return "", err
		}
		if len(results) > 1 {
			body = "## " + r.Question + "\n\n" + body
		}
		parts = append(parts, body)
	}
	return strings.Join(parts, "\n\n"), nil
}

// formatJSON encodes one result as an object and several as an array.
// A non-empty path selects part of the document with gjson.
func formatJSON(results []askResult, path string) (string, error) {
	var doc any = results
	if len(results) == 1 {
		doc = results[0]
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode reply: %w", err)
	}
	if path == "" {
		return string(data), nil
	}

	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return "", fmt.Errorf("path %q matched nothing", path)
	}
	if res.IsObject() || res.IsArray() {
		return res.Raw, nil
	}
	return res.String(), nil
}

func (c *cli) copyReplies(results []askResult, lang locale.Language) {
	text, err := formatPlain(results, lang)
	if err == nil {
		err = c.deps.CopyToClip(text)
	}
	if err != nil {
		fmt.Fprintln(c.deps.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(
			fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
		))
		return
	}
	fmt.Fprintln(c.deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
}

func (c *cli) catalogText(lang locale.Language, key string) string {
	return locale.Default().Text(lang, key)
}

// failedError reports synthesis failures after the replies were printed
func failedError(results []askResult) error {
	var failed []string
	var cause error
	for _, r := range results {
		if r.Failed {
			failed = append(failed, r.Question)
			cause = r.cause
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d questions failed (%s): %w", len(failed), len(results), strings.Join(failed, ", "), cause)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a new animated spinner
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var bar strings.Builder
	for i := 0; i < 12; i++ {
		height := (i + s.frame) % 8
		style := lipgloss.NewStyle().Foreground(gradientColors[(i+s.frame)%len(gradientColors)])
		bar.WriteString(style.Render(string([]rune("▁▂▃▄▅▆▇█")[height])))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dots.WriteString(lipgloss.NewStyle().Foreground(gradientColors[(s.frame+i)%len(gradientColors)]).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// formatErrorMessage formats an error with a hint for the errors users can act on
func formatErrorMessage(err error, label string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", label, err)))

	switch {
	case apierrors.IsBusy(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Wait for the current answer before asking again"))
	case errors.Is(err, apierrors.ErrEmptyMessage):
		sb.WriteString(dimStyle.Render("\n  Hint: Type a question, for example \"population growth\""))
	case errors.Is(err, apierrors.ErrUnsupportedLanguage):
		sb.WriteString(dimStyle.Render("\n  Hint: Supported languages are en and da"))
	case apierrors.IsSynthesisError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Try rephrasing the question"))
	case errors.Is(err, context.DeadlineExceeded):
		sb.WriteString(dimStyle.Render("\n  Hint: The answer took too long. Try again"))
	}

	return sb.String()
}
