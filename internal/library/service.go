// Package library is the in-memory game catalog. It exposes its games as an
// observable list, mutates them through futures, publishes game events on
// the bus after every committed change, and persists YAML snapshots.
package library

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/gamedex/internal/async"
	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/metrics"
	"github.com/Iron-Ham/gamedex/internal/observable"
	"github.com/Iron-Ham/gamedex/internal/stream"
)

// Options configures a Service.
type Options struct {
	Bus     *event.Bus
	Logger  *logging.Logger
	Metrics *metrics.Metrics
	// Now stamps new games. Defaults to time.Now.
	Now func() time.Time
}

// Service owns the catalog. Mutations are serialized; each one updates the
// list and only then publishes its event, so a subscriber reacting to the
// event always finds the change in Games().
type Service struct {
	bus     *event.Bus
	logger  *logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.Mutex
	games *observable.List[Game]
}

// NewService creates an empty catalog.
func NewService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		bus:     opts.Bus,
		logger:  opts.Logger.With("component", "library"),
		metrics: opts.Metrics,
		now:     opts.Now,
		games:   observable.NewListFunc(SameGame),
	}
}

// Games returns the observable catalog. Callers must not mutate it.
func (s *Service) Games() *observable.List[Game] {
	return s.games
}

// Get returns the game with the given id.
func (s *Service) Get(id string) (Game, error) {
	for _, g := range s.games.Items() {
		if g.ID == id {
			return g, nil
		}
	}
	return Game{}, errors.NewNotFoundError("game", id)
}

// Search returns the games matching query in catalog order.
func (s *Service) Search(query string) []Game {
	var out []Game
	for _, g := range s.games.Items() {
		if g.Matches(query) {
			out = append(out, g)
		}
	}
	return out
}

// Create adds a game and publishes GameCreated.
func (s *Service) Create(ctx context.Context, name, platform string, quantity int) *async.Future[Game] {
	return s.mutate(ctx, "create", func() (Game, event.Event, error) {
		g := Game{
			ID:       uuid.NewString(),
			Name:     strings.TrimSpace(name),
			Platform: strings.TrimSpace(platform),
			Quantity: quantity,
			Added:    s.now().UTC(),
		}
		if err := g.Validate(); err != nil {
			return Game{}, nil, err
		}
		s.games.Add(g)
		return g, event.NewGameCreated(g.ID, g.Name), nil
	})
}

// Update replaces the stored game having game.ID and publishes GameUpdated.
// The creation time is kept from the stored version.
func (s *Service) Update(ctx context.Context, game Game) *async.Future[Game] {
	return s.mutate(ctx, "update", func() (Game, event.Event, error) {
		if err := game.Validate(); err != nil {
			return Game{}, nil, err
		}
		stored, err := s.Get(game.ID)
		if err != nil {
			return Game{}, nil, err
		}
		game.Name = strings.TrimSpace(game.Name)
		game.Added = stored.Added
		if err := s.games.Replace(stored, game); err != nil {
			return Game{}, nil, err
		}
		return game, event.NewGameUpdated(game.ID, game.Name, game.Quantity), nil
	})
}

// Delete removes the game with the given id and publishes GameDeleted.
func (s *Service) Delete(ctx context.Context, id string) *async.Future[Game] {
	return s.mutate(ctx, "delete", func() (Game, event.Event, error) {
		stored, err := s.Get(id)
		if err != nil {
			return Game{}, nil, err
		}
		if err := s.games.Remove(stored); err != nil {
			return Game{}, nil, err
		}
		return stored, event.NewGameDeleted(id), nil
	})
}

// mutate runs commit under the service lock on its own goroutine. The event
// is published after the lock is released. A ctx already done skips the
// mutation entirely.
func (s *Service) mutate(ctx context.Context, op string, commit func() (Game, event.Event, error)) *async.Future[Game] {
	if err := ctx.Err(); err != nil {
		s.metrics.RecordOp(op, time.Now(), err)
		return async.Failed[Game](err)
	}
	return async.Go(ctx, func(ctx context.Context) (Game, error) {
		started := time.Now()
		s.mu.Lock()
		g, ev, err := commit()
		s.mu.Unlock()

		s.metrics.RecordOp(op, started, err)
		if err != nil {
			s.logger.Warn("library operation failed", "op", op, "error", err)
			return Game{}, err
		}

		s.logger.Debug("library operation committed", "op", op, "game_id", g.ID)
		if s.bus != nil {
			s.bus.Publish(ev)
		}
		return g, nil
	})
}

// Load replaces the catalog with the snapshot at path and publishes
// LibraryLoaded. A missing file loads an empty catalog.
func (s *Service) Load(path string) error {
	started := time.Now()
	games, err := readSnapshot(path)
	s.metrics.RecordOp("load", started, err)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.games.SetAll(games...)
	s.mu.Unlock()

	s.logger.Info("library loaded", "path", path, "games", len(games))
	if s.bus != nil {
		s.bus.Publish(event.NewLibraryLoaded(path, len(games)))
	}
	return nil
}

// Save writes the catalog to path and publishes LibrarySaved.
func (s *Service) Save(path string) error {
	started := time.Now()
	games := slices.Clone(s.games.Items())
	err := writeSnapshot(path, games)
	s.metrics.RecordOp("save", started, err)
	if err != nil {
		return err
	}

	s.logger.Debug("library saved", "path", path, "games", len(games))
	if s.bus != nil {
		s.bus.Publish(event.NewLibrarySaved(path, len(games)))
	}
	return nil
}

// Autosave saves the catalog to path after every burst of changes, once the
// catalog has been quiet for delay. It returns when ctx is done, saving one
// last time if changes are still unsaved.
func (s *Service) Autosave(ctx context.Context, path string, delay time.Duration) {
	dirty := s.games.Changes().Subscribe(stream.Conflate())
	defer dirty.Close()

	quiet := stream.Debounce(ctx, s.games.Changes(), delay).Subscribe()
	defer quiet.Close()

	save := func() {
		_, _ = dirty.TryNext()
		if err := s.Save(path); err != nil {
			s.logger.Error("autosave failed", "path", path, "error", err)
		}
	}

	for {
		if _, err := quiet.Next(context.Background()); err != nil {
			break
		}
		save()
	}

	if dirty.Pending() > 0 {
		save()
	}
}
