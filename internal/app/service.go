package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jaminalder/codex-gomoku/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound       = errors.New("game not found")
	ErrMoveOutOfRange = errors.New("move out of range")
)

// DefaultTTL is how long an untouched game is kept.
const DefaultTTL = 2 * time.Hour

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	History domain.History
	Created time.Time
	Updated time.Time
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers. A game's History is only ever
// replaced as a whole while mu is held.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	log    logrus.FieldLogger
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer sets the function producing broadcast payloads.
func WithRenderer(renderer func(GameState) []byte) Option {
	return func(s *Service) {
		if renderer != nil {
			s.render = renderer
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTTL sets how long an idle game survives a Sweep.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewService creates a service; by default broadcasts carry no payload.
func NewService(opts ...Option) *Service {
	s := &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: func(gs GameState) []byte { return nil },
		log:    logrus.StandardLogger(),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(gs GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := s.now()
	gs := &GameState{ID: id, History: domain.NewHistory(), Created: now, Updated: now}
	s.games[id] = gs
	s.log.WithField("game", id).Debug("game created")
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Play places the current turn's mark at i. A rejected move returns the
// unchanged state together with domain.ErrOccupied or domain.ErrGameOver.
func (s *Service) Play(id string, i domain.Index) (*GameState, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("cell %d: %w", int(i), domain.ErrOutOfBounds)
	}
	return s.update(id, func(h domain.History) (domain.History, error) {
		return h.TryPlay(i)
	}, logrus.Fields{"cell": int(i)})
}

// JumpTo views snapshot k of the game's history.
func (s *Service) JumpTo(id string, k int) (*GameState, error) {
	return s.update(id, func(h domain.History) (domain.History, error) {
		if !h.Has(k) {
			return h, fmt.Errorf("move %d of %d: %w", k, h.Len(), ErrMoveOutOfRange)
		}
		return h.JumpTo(k), nil
	}, logrus.Fields{"move": k})
}

// update applies fn to the game's history, stores the result, and
// broadcasts it. On error nothing is stored and nothing is broadcast.
func (s *Service) update(id string, fn func(domain.History) (domain.History, error), fields logrus.Fields) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	log := s.log.WithField("game", id).WithFields(fields)
	next, err := fn(gs.History)
	if err != nil {
		cp := *gs
		s.mu.Unlock()
		log.WithError(err).Debug("rejected")
		return &cp, err
	}
	gs.History = next
	gs.Updated = s.now()

	cp := *gs
	payload := s.render(cp)
	dropped := s.broadcastLocked(id, payload)
	s.mu.Unlock()

	log.WithFields(logrus.Fields{"view": next.Current(), "len": next.Len()}).Debug("updated")
	if dropped > 0 {
		log.Debugf("dropped %d slow subscribers", dropped)
	}
	return &cp, nil
}

// broadcastLocked fans out payload; slow subscribers are closed and
// dropped. Channels are only sent on or closed while mu is held.
func (s *Service) broadcastLocked(id string, payload []byte) int {
	set := s.subs[id]
	dropped := 0
	for sub := range set {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(set, sub)
			dropped++
		}
	}
	return dropped
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func. The channel is closed on unsubscribe, when ctx is done,
// when the subscriber falls behind, or when the game is swept.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}
