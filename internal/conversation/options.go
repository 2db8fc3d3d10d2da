package conversation

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diogo/dstchat/internal/locale"
)

// DefaultDelay is the pause between a user submission and the synthesized reply
const DefaultDelay = 1500 * time.Millisecond

// Option configures a Store
type Option func(*Store)

// WithLanguage sets the initial language. Unsupported values are ignored and
// the detected language is kept.
func WithLanguage(lang locale.Language) Option {
	return func(s *Store) {
		if _, err := locale.Parse(string(lang)); err == nil {
			s.language = lang
		}
	}
}

// WithDelay sets the simulated processing delay. Zero replies as soon as the
// synthesizer returns.
func WithDelay(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithSynthesizer replaces the default classification pipeline
func WithSynthesizer(syn Synthesizer) Option {
	return func(s *Store) {
		if syn != nil {
			s.synth = syn
		}
	}
}

// WithNotifier sets the toast sink
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the wall clock used for timestamps and the reply delay
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator replaces the message ID source
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithCatalog replaces the embedded string catalog
func WithCatalog(c *locale.Catalog) Option {
	return func(s *Store) {
		if c != nil {
			s.catalog = c
		}
	}
}

// Clock abstracts time for the store
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func defaultID() string {
	return uuid.NewString()
}
