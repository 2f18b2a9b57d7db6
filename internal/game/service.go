// internal/game/service.go
package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/jason-s-yu/uno/internal/deck"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/jason-s-yu/uno/internal/store"
	"github.com/sirupsen/logrus"
)

// ActionRecorder receives every log entry once the game holding it has been saved.
// cache.ActionQueue satisfies it.
type ActionRecorder interface {
	RecordAction(ctx context.Context, gameID string, entry models.LogEntry) error
}

// StateChange is emitted once per accepted mutation, after the game was saved.
// Game is a private copy shared by all subscribers and must be treated as read-only.
type StateChange struct {
	Game   *models.Game
	Action string
	Actor  string
}

// Service is the game state machine. Every mutation runs load -> validate -> mutate ->
// save -> notify under a lock scoped to one game id.
type Service struct {
	store    store.Store
	log      *logrus.Entry
	recorder ActionRecorder
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	locks *lockRegistry

	pubQueue chan publishJob
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	subMu       sync.RWMutex
	subscribers []func(StateChange)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for accepted actions and storage failures.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Service) { s.log = l }
}

// WithRecorder publishes every log entry to r after each successful save.
func WithRecorder(r ActionRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithRand fixes the random source used for shuffles and game ids.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   logrus.NewEntry(logrus.StandardLogger()).WithField("component", "game"),
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		locks: newLockRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.recorder != nil {
		s.pubQueue = make(chan publishJob, publishQueueSize)
		s.quit = make(chan struct{})
		s.done = make(chan struct{})
		go s.publishLoop()
	}
	return s
}

// Close stops the recorder worker after it drains what was already queued.
func (s *Service) Close() {
	if s.quit == nil {
		return
	}
	s.stopOnce.Do(func() { close(s.quit) })
	<-s.done
}

// Subscribe registers fn for every future StateChange. fn runs while the game lock is
// held, so it must not block or call back into the Service.
func (s *Service) Subscribe(fn func(StateChange)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// errNoChange lets an operation succeed without saving or notifying.
var errNoChange = errors.New("no change")

// tx carries one in-flight mutation.
type tx struct {
	s   *Service
	g   *models.Game
	now time.Time
}

func (t *tx) log(action, actor string, details map[string]interface{}) {
	t.g.AppendLog(t.now, action, actor, details)
}

// draw pops one card, recycling the discard pile when the deck is empty.
func (t *tx) draw() (models.Card, error) {
	t.s.rngMu.Lock()
	c, reshuffled, err := deck.Draw(t.g, t.s.rng)
	t.s.rngMu.Unlock()
	if err != nil {
		return models.Card{}, exhausted(err)
	}
	if reshuffled {
		t.log(models.ActionReshuffleDeck, "", map[string]interface{}{"deckSize": len(t.g.Deck) + 1})
	}
	return c, nil
}

func (s *Service) freshDeck() []models.Card {
	cards := deck.BuildStandard()
	s.rngMu.Lock()
	deck.Shuffle(cards, s.rng)
	s.rngMu.Unlock()
	return cards
}

// mutate runs fn against a freshly loaded copy of the game and commits it if fn succeeds.
// A failing fn leaves the stored game untouched.
func (s *Service) mutate(ctx context.Context, id string, fn func(t *tx) error) (*models.Game, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := len(g.Logs)
	if err := fn(&tx{s: s, g: g, now: s.now()}); err != nil {
		if errors.Is(err, errNoChange) {
			return g, nil
		}
		return nil, err
	}
	if err := s.commit(ctx, g, before); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Game, error) {
	g, err := s.store.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.WithError(err).WithField("game", id).Error("failed to load game")
		return nil, unavailable(err)
	}
	return g, nil
}

// commit persists g, then notifies subscribers and the recorder about log entries from index
// before onward. Nothing is broadcast when the save fails.
func (s *Service) commit(ctx context.Context, g *models.Game, before int) error {
	if err := s.store.Save(ctx, g); err != nil {
		s.log.WithError(err).WithField("game", g.ID).Error("failed to save game")
		return unavailable(err)
	}

	entries := append([]models.LogEntry{}, g.Logs[before:]...)
	for _, e := range entries {
		s.log.WithFields(logrus.Fields{
			"game":   g.ID,
			"actor":  e.Actor,
			"action": e.Action,
		}).Debug("action accepted")
	}
	if len(entries) == 0 {
		return nil
	}

	last := entries[len(entries)-1]
	s.notify(StateChange{Game: g.Clone(), Action: last.Action, Actor: last.Actor})
	s.publish(g.ID, entries)
	return nil
}

func (s *Service) notify(ev StateChange) {
	s.subMu.RLock()
	subs := s.subscribers
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}

const publishQueueSize = 1024

type publishJob struct {
	gameID  string
	entries []models.LogEntry
}

// publish queues entries for the recorder without holding up the caller. One worker
// drains the queue, so entries reach the recorder in commit order.
func (s *Service) publish(gameID string, entries []models.LogEntry) {
	if s.recorder == nil {
		return
	}
	select {
	case s.pubQueue <- publishJob{gameID: gameID, entries: entries}:
	default:
		s.log.WithFields(logrus.Fields{
			"game":  gameID,
			"count": len(entries),
		}).Warn("action queue full, dropping game actions")
	}
}

func (s *Service) publishLoop() {
	defer close(s.done)
	for {
		select {
		case job := <-s.pubQueue:
			s.record(job)
		case <-s.quit:
			for {
				select {
				case job := <-s.pubQueue:
					s.record(job)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) record(job publishJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, e := range job.entries {
		if err := s.recorder.RecordAction(ctx, job.gameID, e); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"game":  job.gameID,
				"index": e.Index,
			}).Warn("failed to publish game action")
		}
	}
}

// lockRegistry hands out one mutex per game id. An entry lives only while someone holds or
// waits for it, so ids that never resolve to a game leave nothing behind.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*lockEntry)}
}

func (r *lockRegistry) lock(id string) func() {
	r.mu.Lock()
	e, ok := r.locks[id]
	if !ok {
		e = &lockEntry{}
		r.locks[id] = e
	}
	e.refs++
	r.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		r.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(r.locks, id)
		}
		r.mu.Unlock()
	}
}

// size is the number of ids currently held or waited on.
func (r *lockRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
