// Package habits is the habit state store: the in-memory model of every
// user's habits and completion history, the derived progress metrics, and
// write-through persistence through a storage.Provider.
//
// A Store is not safe for concurrent use. It is meant to be driven from a
// single goroutine (the CLI command or the TUI update loop); the only
// background goroutine is the persist writer, which sees immutable snapshot
// copies.
package habits

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
	"github.com/julianstephens/habitual/internal/validation"
)

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the timezone whose calendar days completions are recorded in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator overrides uuid.NewString for new habit ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithSyncPersist saves each snapshot inline instead of on the writer goroutine.
func WithSyncPersist() Option {
	return func(s *Store) { s.syncPersist = true }
}

// WithPersistErrorHandler registers a callback for failed saves. In the
// default asynchronous mode it runs on the writer goroutine.
func WithPersistErrorHandler(fn func(error)) Option {
	return func(s *Store) { s.onPersistError = fn }
}

type Store struct {
	provider       storage.Provider
	now            func() time.Time
	loc            *time.Location
	newID          func() string
	syncPersist    bool
	onPersistError func(error)

	persist *persister
	loaded  bool
	closed  bool

	// habits in creation order across all tenants
	habits      []models.Habit
	completions map[models.CompletionKey]struct{}
}

// New creates a store backed by provider. Call Load before use.
func New(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider:    provider,
		now:         time.Now,
		loc:         time.Local,
		newID:       uuid.NewString,
		completions: make(map[models.CompletionKey]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.persist = newPersister(provider, !s.syncPersist, s.onPersistError)
	return s
}

// Load reads the snapshot from storage, replacing any in-memory state.
// Missing storage yields an empty store. Completion records that reference
// a missing habit, belong to another tenant, or carry a malformed date are
// dropped with a warning. Records without an owner take the habit's owner.
func (s *Store) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return errors.ErrClosed
	}

	snapshot, err := s.provider.Load()
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	result := validation.New().ValidateSnapshot(snapshot.Habits, snapshot.Completions)
	if fatal := result.Fatal(); len(fatal) > 0 {
		return fmt.Errorf("%w in %s: %s (run 'habitual doctor')", errors.ErrCorruptSnapshot, s.provider.GetConfigPath(), fatal[0].Description)
	}

	for _, c := range result.Conflicts {
		logger.Warn("Stored habit data has a conflict", "type", c.Type, "detail", c.Description, "pruned", c.Prunable())
	}
	prune := make(map[int]bool)
	for _, i := range result.PrunableCompletions() {
		prune[i] = true
	}

	habits := make([]models.Habit, len(snapshot.Habits))
	copy(habits, snapshot.Habits)

	completions := make(map[models.CompletionKey]struct{}, len(snapshot.Completions))
	for i, r := range snapshot.Completions {
		if prune[i] {
			continue
		}
		completions[r.Key()] = struct{}{}
	}

	s.habits = habits
	s.completions = completions
	s.loaded = true

	logger.Debug("Loaded habits", "habits", len(habits), "completions", len(completions), "pruned", len(prune), "path", s.provider.GetConfigPath())
	return nil
}

// Flush blocks until every snapshot handed to the persist writer has been written.
func (s *Store) Flush() {
	s.persist.flush()
}

// Close flushes pending writes, stops the persist writer and closes the provider.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.persist.close()
	return s.provider.Close()
}

// LastPersistError returns the error from the most recent failed save, or nil
// if the latest save succeeded.
func (s *Store) LastPersistError() error {
	return s.persist.lastError()
}

// Today returns the current calendar day in the store's location as YYYY-MM-DD.
func (s *Store) Today() string {
	return utils.DayString(s.now(), s.loc)
}

// Location returns the timezone used for calendar days.
func (s *Store) Location() *time.Location {
	return s.loc
}

// snapshot builds a deep copy of the in-memory state for persistence.
func (s *Store) snapshot() storage.Snapshot {
	snap := storage.NewSnapshot()
	snap.Habits = make([]models.Habit, len(s.habits))
	copy(snap.Habits, s.habits)

	owners := make(map[string]string, len(s.habits))
	for _, h := range s.habits {
		owners[h.ID] = h.OwnerEmail
	}

	snap.Completions = make([]models.CompletionRecord, 0, len(s.completions))
	for key := range s.completions {
		snap.Completions = append(snap.Completions, models.CompletionRecord{
			HabitID:    key.HabitID,
			Day:        key.Day,
			OwnerEmail: owners[key.HabitID],
		})
	}
	snap.SortCompletions()
	return snap
}

// commit hands the current state to the persist writer.
func (s *Store) commit() {
	s.persist.submit(s.snapshot())
}

// find returns the index of the habit with id owned by ownerEmail, or -1.
func (s *Store) find(habitID, ownerEmail string) int {
	for i, h := range s.habits {
		if h.ID == habitID && h.OwnerEmail == ownerEmail {
			return i
		}
	}
	return -1
}

func (s *Store) checkWritable() error {
	if s.closed {
		return errors.ErrClosed
	}
	if !s.loaded {
		return errors.ErrNotLoaded
	}
	return nil
}
