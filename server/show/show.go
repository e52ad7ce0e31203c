// Package show drives a bounded, strictly alternating two-persona talk show
// and exposes its evolving state to the API layer.
package show

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/duetcast/duetcast/store"
)

// State is the lifecycle phase of a show.
type State string

const (
	// StateIdle means no show has been started yet.
	StateIdle State = "IDLE"
	// StateAwaitingOpening means the opening statement is being generated.
	StateAwaitingOpening State = "AWAITING_OPENING"
	// StateAwaitingResponse means the show is between turns or generating a reply.
	StateAwaitingResponse State = "AWAITING_RESPONSE"
	// StateFinished means the turn cap was reached. Terminal.
	StateFinished State = "FINISHED"
	// StateCancelled means the show was cancelled before finishing. Terminal.
	StateCancelled State = "CANCELLED"
)

// FallbackStatement is substituted verbatim when the generator fails or
// returns an empty statement. The show goes on; only its quality degrades.
const FallbackStatement = "Error generating response."

// DefaultMaxTurns caps a show at six total statements.
const DefaultMaxTurns = 6

// DefaultSettleDelay is the pause before each reply, simulating composing time.
const DefaultSettleDelay = 1500 * time.Millisecond

// ErrBlankTopic rejects empty or whitespace-only topics before any state
// transition or external call.
var ErrBlankTopic = errors.New("topic must not be blank")

// Generator produces persona-flavored statements. Both calls may fail in
// arbitrary ways; the show never propagates the failure detail.
type Generator interface {
	Opening(ctx context.Context, topic string, persona store.Persona) (string, error)
	Reply(ctx context.Context, topic string, persona store.Persona, previous string) (string, error)
}

// Config carries the show pacing tunables.
type Config struct {
	OpeningPersona store.Persona
	MaxTurns       int
	SettleDelay    time.Duration
}

func (c *Config) normalize() {
	if !c.OpeningPersona.Valid() {
		c.OpeningPersona = store.PersonaHumor
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
}

// Snapshot is the read-only view of a show handed to the presentation layer.
type Snapshot struct {
	Topic         string        `json:"topic"`
	State         State         `json:"state"`
	Turns         []store.Turn  `json:"turns"`
	ActivePersona store.Persona `json:"activePersona"`
	TurnIndex     int           `json:"turnIndex"`
	MaxTurns      int           `json:"maxTurns"`
	IsGenerating  bool          `json:"isGenerating"`
	IsFinished    bool          `json:"isFinished"`
	Saved         bool          `json:"saved"`
}

// Show is one live conversation. All mutation happens on its run goroutine;
// readers go through Snapshot. The run loop never has two generator calls in
// flight: each turn is append-then-flip before the next request starts.
type Show struct {
	topic string
	cfg   Config
	gen   Generator

	mu         sync.RWMutex
	state      State
	turns      []*store.Turn
	active     store.Persona
	generating bool
	saved      bool

	saveMu sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
	onStop func()
}

// Start validates the topic and begins the show on its own goroutine.
// A blank topic starts nothing. onStop, if non-nil, runs exactly once when
// the run loop exits for any reason.
func Start(ctx context.Context, gen Generator, cfg Config, topic string, onStop func()) (*Show, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrBlankTopic
	}
	cfg.normalize()

	runCtx, cancel := context.WithCancel(ctx)
	s := &Show{
		topic:      topic,
		cfg:        cfg,
		gen:        gen,
		state:      StateAwaitingOpening,
		active:     cfg.OpeningPersona,
		generating: true,
		cancel:     cancel,
		done:       make(chan struct{}),
		onStop:     onStop,
	}
	go s.run(runCtx)
	return s, nil
}

func (s *Show) run(ctx context.Context) {
	defer close(s.done)
	if s.onStop != nil {
		defer s.onStop()
	}

	text, err := s.gen.Opening(ctx, s.topic, s.cfg.OpeningPersona)
	if ctx.Err() != nil {
		// A generation initiated before cancellation must not be appended
		// after it.
		s.terminate()
		return
	}
	s.append(s.cfg.OpeningPersona, statementOrFallback(text, err))

	for {
		if s.TurnIndex() >= s.cfg.MaxTurns {
			s.finish()
			return
		}

		if s.cfg.SettleDelay > 0 {
			timer := time.NewTimer(s.cfg.SettleDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				s.terminate()
				return
			}
		} else if ctx.Err() != nil {
			s.terminate()
			return
		}

		persona, previous := s.nextTurnInput()
		s.setGenerating(true)
		text, err := s.gen.Reply(ctx, s.topic, persona, previous)
		if ctx.Err() != nil {
			s.terminate()
			return
		}
		s.append(persona, statementOrFallback(text, err))
	}
}

func statementOrFallback(text string, err error) string {
	if err != nil || strings.TrimSpace(text) == "" {
		return FallbackStatement
	}
	return text
}

// append records a turn, flips the active persona and advances the counter.
// This is the sole mutator of the turn sequence.
func (s *Show) append(speaker store.Persona, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, &store.Turn{
		UID:       uuid.NewString(),
		Seq:       int32(len(s.turns)),
		Speaker:   speaker,
		Text:      text,
		CreatedTs: time.Now().Unix(),
	})
	s.active = speaker.Other()
	s.generating = false
	if s.state == StateAwaitingOpening {
		s.state = StateAwaitingResponse
	}
}

func (s *Show) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFinished
	s.generating = false
}

func (s *Show) terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateCancelled
	s.generating = false
}

func (s *Show) setGenerating(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = v
}

func (s *Show) nextTurnInput() (store.Persona, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	previous := ""
	if len(s.turns) > 0 {
		previous = s.turns[len(s.turns)-1].Text
	}
	return s.active, previous
}

// Cancel stops scheduling further generator calls. A late completion of an
// in-flight generation is dropped, never appended.
func (s *Show) Cancel() {
	s.cancel()
}

// Done is closed when the run loop has exited.
func (s *Show) Done() <-chan struct{} {
	return s.done
}

// Topic returns the immutable show topic.
func (s *Show) Topic() string {
	return s.topic
}

// State returns the current lifecycle phase.
func (s *Show) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// TurnIndex returns the number of turns appended so far.
func (s *Show) TurnIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Saved reports whether the show has been persisted.
func (s *Show) Saved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved
}

// Turns returns a deep copy of the turn sequence for persistence.
func (s *Show) Turns() []*store.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]*store.Turn, len(s.turns))
	for i, t := range s.turns {
		turn := *t
		turns[i] = &turn
	}
	return turns
}

// Snapshot returns a consistent read-only view of the show.
func (s *Show) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]store.Turn, len(s.turns))
	for i, t := range s.turns {
		turns[i] = *t
	}
	return Snapshot{
		Topic:         s.topic,
		State:         s.state,
		Turns:         turns,
		ActivePersona: s.active,
		TurnIndex:     len(s.turns),
		MaxTurns:      s.cfg.MaxTurns,
		IsGenerating:  s.generating,
		IsFinished:    s.state == StateFinished,
		Saved:         s.saved,
	}
}

func (s *Show) markSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = true
}
