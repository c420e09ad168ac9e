package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/habits"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
)

// Context is passed to every command's Run method
type Context struct {
	Config  *config.Config
	Storage storage.Provider
	Habits  *habits.Store
	Session *session.LocalProvider

	mu             sync.Mutex
	persistErrorFn func(error)
}

// ReportPersistError is the habit store's persist error handler. It runs on
// the persist writer goroutine.
func (c *Context) ReportPersistError(err error) {
	c.mu.Lock()
	fn := c.persistErrorFn
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// OnPersistError routes later persist failures to fn; nil stops routing.
func (c *Context) OnPersistError(fn func(error)) {
	c.mu.Lock()
	c.persistErrorFn = fn
	c.mu.Unlock()
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Storage.GetConfigPath())
	_, err := mgr.CreateBackup()
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// LoadHabits loads the habit store from durable storage
func (c *Context) LoadHabits() error {
	return c.Habits.Load(context.Background())
}

// SaveHabits waits for pending writes and reports a failed save
func (c *Context) SaveHabits() error {
	c.Habits.Flush()
	if err := c.Habits.LastPersistError(); err != nil {
		return fmt.Errorf("failed to save habits: %w", err)
	}
	return nil
}

// CurrentUser returns the signed-in user or a hint to log in
func (c *Context) CurrentUser() (models.User, error) {
	user, err := c.Session.CurrentUser()
	if errors.Is(err, session.ErrNotLoggedIn) {
		return models.User{}, fmt.Errorf("%w (run 'habitual login' or 'habitual register')", err)
	}
	return user, err
}

// resolveHabit finds one of the user's habits by id, or by name when the
// name is unambiguous.
func (c *Context) resolveHabit(ref, ownerEmail string) (models.Habit, error) {
	if h, ok := c.Habits.GetHabit(ref, ownerEmail); ok {
		return h, nil
	}

	var matches []models.Habit
	for _, h := range c.Habits.GetUserHabits(ownerEmail) {
		if strings.EqualFold(h.Name, strings.TrimSpace(ref)) {
			matches = append(matches, h)
		}
	}

	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("%d habits are named %q; use the habit id instead (see 'habitual habit list --ids')", len(matches), ref)
	}
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
