// Package conversation owns the chat session: message history, the
// processing flag, the active language, suggested queries and the selected
// categories. Every mutation goes through a Store method and is published to
// subscribers as an immutable Snapshot.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apierrors "github.com/diogo/dstchat/internal/errors"
	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/models"
	"github.com/diogo/dstchat/internal/synth"
)

// WelcomeID is the fixed ID of the seeded welcome message
const WelcomeID = "welcome"

// Synthesizer turns a question into charts and a table
type Synthesizer interface {
	Synthesize(ctx context.Context, query string) (synth.Response, error)
}

// SynthesizerFunc adapts a function to the Synthesizer interface
type SynthesizerFunc func(ctx context.Context, query string) (synth.Response, error)

// Synthesize calls f(ctx, query)
func (f SynthesizerFunc) Synthesize(ctx context.Context, query string) (synth.Response, error) {
	return f(ctx, query)
}

// Draft is a message before the store assigns its ID and timestamp
type Draft struct {
	Content string
	Role    models.Role
}

// UserDraft is shorthand for a user question
func UserDraft(content string) Draft {
	return Draft{Content: content, Role: models.RoleUser}
}

// Snapshot is a deep copy of the store state
type Snapshot struct {
	Messages           []models.Message        `json:"messages"`
	Processing         bool                    `json:"isProcessing"`
	Language           locale.Language         `json:"language"`
	SuggestedQueries   []models.SuggestedQuery `json:"suggestedQueries"`
	SelectedCategories []string                `json:"selectedCategories"`
	State              State                   `json:"state"`
}

// LastMessage returns the newest message in the snapshot; ok is false for
// a snapshot with no messages.
func (s Snapshot) LastMessage() (msg models.Message, ok bool) {
	if len(s.Messages) == 0 {
		return models.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Store is the conversation state container. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	catalog  *locale.Catalog
	synth    Synthesizer
	notifier Notifier
	logger   *zap.Logger
	clock    Clock
	newID    func() string
	delay    time.Duration

	// session changes whenever the history is reset; a reply from an
	// earlier session is dropped
	session     uint64
	language    locale.Language
	messages    []models.Message
	processing  bool
	state       State
	lastOutcome State
	suggestions []models.SuggestedQuery
	selected    []string

	subs    map[uint64]chan Snapshot
	nextSub uint64

	wg     sync.WaitGroup
	closed bool
}

// New creates a store seeded with the welcome message for its language
func New(opts ...Option) *Store {
	s := &Store{
		catalog:     locale.Default(),
		synth:       synth.NewPipeline(),
		notifier:    discardNotifier{},
		logger:      zap.NewNop(),
		clock:       systemClock{},
		newID:       defaultID,
		delay:       DefaultDelay,
		language:    locale.Detect(),
		state:       StateIdle,
		lastOutcome: StateIdle,
		subs:        make(map[uint64]chan Snapshot),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.messages = []models.Message{s.welcome(s.language)}
	s.suggestions = s.catalog.Suggestions(s.language)
	s.selected = []string{}
	return s
}

// AddMessage appends a draft to the history.
//
// System drafts are appended as-is and the returned task is already resolved.
// A user draft sets the processing flag and schedules the reply; the task
// resolves once the reply or error message is in the history.
func (s *Store) AddMessage(d Draft) (*Task, error) {
	if strings.TrimSpace(d.Content) == "" {
		return nil, apierrors.ErrEmptyMessage
	}
	if !d.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", apierrors.ErrInvalidRole, d.Role)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apierrors.ErrClosed
	}
	if d.Role == models.RoleUser && s.processing {
		s.mu.Unlock()
		return nil, apierrors.ErrBusy
	}

	msg := models.Message{
		ID:        s.newID(),
		Content:   d.Content,
		Role:      d.Role,
		Timestamp: s.clock.Now(),
	}
	s.messages = append(s.messages, msg)

	if d.Role == models.RoleSystem {
		s.publishLocked()
		s.mu.Unlock()
		return resolvedTask(msg), nil
	}

	s.processing = true
	s.state = StateSubmitting
	lang := s.language
	session := s.session
	task := newTask(msg)
	s.wg.Add(1)
	s.publishLocked()
	s.mu.Unlock()

	s.logger.Info("question submitted",
		zap.String("message_id", msg.ID),
		zap.String("language", string(lang)),
		zap.Int("length", len(d.Content)),
	)

	go s.respond(task, d.Content, lang, session)
	return task, nil
}

// respond waits out the delay, synthesizes, and appends exactly one system
// message unless the history was reset meanwhile. The processing flag is
// released in the same critical section as the append.
func (s *Store) respond(task *Task, query string, lang locale.Language, session uint64) {
	defer s.wg.Done()

	if s.delay > 0 {
		<-s.clock.After(s.delay)
	}

	s.mu.Lock()
	s.state = StateSynthesizing
	s.publishLocked()
	s.mu.Unlock()

	start := time.Now()
	resp, cause := s.synthesize(query)

	s.mu.Lock()
	if session != s.session {
		s.processing = false
		s.state = StateIdle
		s.publishLocked()
		s.mu.Unlock()

		s.logger.Info("reply dropped after history reset",
			zap.String("message_id", task.submitted.ID),
		)
		task.resolve(models.Message{}, apierrors.ErrSuperseded)
		return
	}
	reply := models.Message{
		ID:        s.newID(),
		Role:      models.RoleSystem,
		Timestamp: s.clock.Now(),
	}
	if cause == nil {
		table := resp.Table.Clone()
		reply.Content = s.catalog.Format(lang, locale.KeyReply, query)
		reply.Visualizations = resp.Visualizations
		reply.DataTable = &table
		s.lastOutcome = StateAppended
	} else {
		reply.Content = s.catalog.Text(lang, locale.KeyErrorMessage)
		s.lastOutcome = StateErrored
	}
	s.messages = append(s.messages, reply)
	s.processing = false
	s.state = StateIdle
	s.publishLocked()
	s.mu.Unlock()

	if cause != nil {
		s.logger.Error("synthesis failed",
			zap.String("message_id", task.submitted.ID),
			zap.Error(cause),
			zap.Duration("elapsed", time.Since(start)),
		)
		s.notifier.Notify(Notification{
			Level: LevelError,
			Text:  s.catalog.Text(lang, locale.KeyErrorToast),
		})
	} else {
		s.logger.Info("reply appended",
			zap.String("message_id", reply.ID),
			zap.Int("visualizations", len(reply.Visualizations)),
			zap.Int("rows", len(reply.DataTable.Rows)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	task.resolve(reply, cause)
}

// synthesize runs the synthesizer and converts a panic into an error
func (s *Store) synthesize(query string) (resp synth.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apierrors.NewSynthesisError(query, fmt.Errorf("panic: %v", r))
		}
	}()

	resp, err = s.synth.Synthesize(context.Background(), query)
	if err != nil && !apierrors.IsSynthesisError(err) {
		err = apierrors.NewSynthesisError(query, err)
	}
	return resp, err
}

// ClearMessages resets the history to the welcome message
func (s *Store) ClearMessages() {
	s.mu.Lock()
	s.messages = []models.Message{s.messages[0]}
	s.session++
	lang := s.language
	s.publishLocked()
	s.mu.Unlock()

	s.logger.Info("history cleared")
	s.notifier.Notify(Notification{
		Level: LevelSuccess,
		Text:  s.catalog.Text(lang, locale.KeyClearedToast),
	})
}

// SetLanguage switches language. The welcome message and suggested queries
// are regenerated and the history is reset to the new welcome message in a
// single step. Selecting the current language does nothing.
func (s *Store) SetLanguage(lang locale.Language) error {
	parsed, err := locale.Parse(string(lang))
	if err != nil {
		return err
	}

	s.mu.Lock()
	if parsed == s.language {
		s.mu.Unlock()
		return nil
	}
	prev := s.language
	s.language = parsed
	s.messages = []models.Message{s.welcome(parsed)}
	s.session++
	s.suggestions = s.catalog.Suggestions(parsed)
	s.publishLocked()
	s.mu.Unlock()

	s.logger.Info("language changed",
		zap.String("from", string(prev)),
		zap.String("to", string(parsed)),
	)
	return nil
}

// ToggleCategorySelection adds category to the selection, or removes it if
// already selected. Remaining members keep their order.
func (s *Store) ToggleCategorySelection(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.selected {
		if c == category {
			s.selected = append(s.selected[:i:i], s.selected[i+1:]...)
			s.publishLocked()
			return
		}
	}
	s.selected = append(s.selected, category)
	s.publishLocked()
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Language returns the active language
func (s *Store) Language() locale.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Processing reports whether a reply is pending
func (s *Store) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Catalog returns the string catalog the store localizes with
func (s *Store) Catalog() *locale.Catalog {
	return s.catalog
}

// Subscribe returns a channel that receives a snapshot after every mutation.
// The channel holds one value; a slow reader sees only the latest snapshot.
// The returned function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close rejects new submissions, waits for the pending reply, and closes all
// subscription channels.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) welcome(lang locale.Language) models.Message {
	return models.Message{
		ID:        WelcomeID,
		Content:   s.catalog.Text(lang, locale.KeyWelcome),
		Role:      models.RoleSystem,
		Timestamp: s.clock.Now(),
	}
}

func (s *Store) snapshotLocked() Snapshot {
	msgs := make([]models.Message, len(s.messages))
	for i, m := range s.messages {
		msgs[i] = m.Clone()
	}
	return Snapshot{
		Messages:           msgs,
		Processing:         s.processing,
		Language:           s.language,
		SuggestedQueries:   append([]models.SuggestedQuery(nil), s.suggestions...),
		SelectedCategories: append([]string{}, s.selected...),
		State:              s.state,
	}
}

// publishLocked pushes the current snapshot to every subscriber, replacing
// any value the subscriber has not read yet. Callers hold s.mu.
func (s *Store) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
