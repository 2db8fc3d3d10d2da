package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/dstchat/internal/conversation"
	apierrors "github.com/diogo/dstchat/internal/errors"
	"github.com/diogo/dstchat/internal/models"
	"github.com/diogo/dstchat/internal/synth"
)

func TestAskCmd_RequiresQuestion(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("ask"); err == nil {
		t.Fatal("expected error without questions")
	}
}

func TestAskCmd_JSON(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("ask", "--json", "unemployment rate"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var got struct {
		Question string         `json:"question"`
		Reply    models.Message `json:"reply"`
		Failed   bool           `json:"failed"`
	}
	if err := json.Unmarshal(env.stdout.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON object: %v\n%s", err, env.stdout.String())
	}
	if got.Question != "unemployment rate" {
		t.Errorf("question = %q", got.Question)
	}
	if got.Reply.Role != models.RoleSystem || got.Failed {
		t.Errorf("unexpected reply: %+v", got)
	}
	if got.Reply.DataTable == nil || got.Reply.DataTable.ID != "unemployment-table" {
		t.Errorf("expected the unemployment table, got %+v", got.Reply.DataTable)
	}
}

func TestAskCmd_Select(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"table title", []string{"--select", "reply.dataTable.title", "population"}, "Population in Denmark (2013-2023)"},
		{"chart count", []string{"--select", "reply.visualizations.#", "hello"}, "1"},
		{"chart kind", []string{"--select", "reply.visualizations.0.type", "population"}, "line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run(append([]string{"ask"}, tt.args...)...); err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if got := strings.TrimSpace(env.stdout.String()); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAskCmd_SelectMissingPath(t *testing.T) {
	env := newTestEnv(t)
	err := env.run("ask", "--select", "reply.nothing", "population")
	if err == nil || !strings.Contains(err.Error(), "matched nothing") {
		t.Fatalf("expected path error, got %v", err)
	}
}

func TestAskCmd_ManyQuestionsKeepOrder(t *testing.T) {
	env := newTestEnv(t)
	questions := []string{"unemployment", "population", "gdp", "education", "hello"}
	args := append([]string{"ask", "--select", "#.question"}, questions...)
	if err := env.run(args...); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var got []string
	if err := json.Unmarshal(bytes.TrimSpace(env.stdout.Bytes()), &got); err != nil {
		t.Fatalf("unexpected output: %v\n%s", err, env.stdout.String())
	}
	if strings.Join(got, ",") != strings.Join(questions, ",") {
		t.Errorf("order = %v, want %v", got, questions)
	}
}

func TestAskCmd_Danish(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("ask", "--lang", "da", "--select", "reply.content", "befolkning"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(env.stdout.String(), "Jeg har analyseret") {
		t.Errorf("expected a Danish reply, got %q", env.stdout.String())
	}
}

func TestAskCmd_Copy(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("ask", "--copy", "population"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(env.clip, "Population Growth in Denmark") {
		t.Errorf("clipboard = %q", env.clip)
	}
	if !strings.Contains(env.stderr.String(), "Copied to clipboard") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestAskCmd_CopyFailureIsAWarning(t *testing.T) {
	env := newTestEnv(t)
	env.deps.CopyToClip = func(string) error { return errors.New("no display") }

	if err := env.run("ask", "--copy", "population"); err != nil {
		t.Fatalf("clipboard failure should not fail the command: %v", err)
	}
	if !strings.Contains(env.stderr.String(), "no display") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestAskCmd_OutputFile(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "reply.md")

	if err := env.run("ask", "-o", path, "gdp"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.Contains(string(data), `your query about "gdp"`) {
		t.Errorf("file content = %q", data)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("stdout should stay empty, got %q", env.stdout.String())
	}
}

func TestAskCmd_SynthesisFailure(t *testing.T) {
	env := newTestEnv(t)
	env.deps.StoreOptions = []conversation.Option{
		conversation.WithSynthesizer(conversation.SynthesizerFunc(func(ctx context.Context, q string) (synth.Response, error) {
			return synth.Response{}, errors.New("boom")
		})),
	}

	err := env.run("ask", "population")
	if !errors.Is(err, apierrors.ErrSynthesisFailed) {
		t.Fatalf("expected synthesis failure, got %v", err)
	}
	if !strings.Contains(env.stdout.String(), "Sorry, I encountered an error") {
		t.Errorf("the error message should still be printed, got %q", env.stdout.String())
	}
}

func TestAnswer_ContextCancelled(t *testing.T) {
	env := newTestEnv(t)
	release := make(chan struct{})
	env.deps.StoreOptions = []conversation.Option{
		conversation.WithSynthesizer(conversation.SynthesizerFunc(func(ctx context.Context, q string) (synth.Response, error) {
			<-release
			return synth.NewPipeline().Synthesize(ctx, q)
		})),
	}
	c := &cli{deps: env.deps, logger: zap.NewNop()}
	c.cfg, _ = env.deps.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()

	_, err := c.answerAll(ctx, []string{"population"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestFormatJSON(t *testing.T) {
	results := []askResult{
		{Question: "a", Reply: models.Message{ID: "1", Content: "x", Role: models.RoleSystem}},
		{Question: "b", Reply: models.Message{ID: "2", Content: "y", Role: models.RoleSystem}, Failed: true},
	}

	out, err := formatJSON(results[:1], "")
	if err != nil || !strings.HasPrefix(out, "{") {
		t.Errorf("single result should be an object, got %q (%v)", out, err)
	}

	out, err = formatJSON(results, "")
	if err != nil || !strings.HasPrefix(out, "[") {
		t.Errorf("many results should be an array, got %q (%v)", out, err)
	}

	out, err = formatJSON(results, "1.failed")
	if err != nil || out != "true" {
		t.Errorf("formatJSON(1.failed) = %q, %v", out, err)
	}

	out, err = formatJSON(results, "0.reply")
	if err != nil || !strings.HasPrefix(out, "{") {
		t.Errorf("object selections should be raw JSON, got %q", out)
	}
}

func TestFailedError(t *testing.T) {
	if err := failedError([]askResult{{Question: "ok"}}); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	cause := apierrors.NewSynthesisError("bad", errors.New("boom"))
	err := failedError([]askResult{{Question: "ok"}, {Question: "bad", Failed: true, cause: cause}})
	if err == nil || !strings.Contains(err.Error(), "1 of 2 questions failed (bad)") {
		t.Errorf("unexpected error: %v", err)
	}
	if !apierrors.IsSynthesisError(err) {
		t.Error("failedError should wrap the cause")
	}
}

func TestClamp(t *testing.T) {
	if clamp(10, 40, 120) != 40 || clamp(200, 40, 120) != 120 || clamp(80, 40, 120) != 80 {
		t.Error("clamp out of range")
	}
}

func TestFormatErrorMessage(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}

	tests := []struct {
		err  error
		hint string
	}{
		{apierrors.ErrBusy, "Wait for the current answer"},
		{apierrors.ErrEmptyMessage, "Type a question"},
		{apierrors.NewLanguageError("fr"), "en and da"},
		{apierrors.NewSynthesisError("q", nil), "rephrasing"},
		{context.DeadlineExceeded, "took too long"},
	}
	for _, tt := range tests {
		out := formatErrorMessage(tt.err, "Failed")
		if !strings.Contains(out, "Failed") || !strings.Contains(out, tt.hint) {
			t.Errorf("formatErrorMessage(%v) = %q, want hint %q", tt.err, out, tt.hint)
		}
	}
}

func TestSpinnerLifecycle(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Thinking")
	s.start()
	time.Sleep(100 * time.Millisecond)
	s.stopWithSuccess("done")
	s.stopWithError()

	out := buf.String()
	if !strings.Contains(out, "Thinking") || !strings.Contains(out, "done") {
		t.Errorf("spinner output = %q", out)
	}
}
