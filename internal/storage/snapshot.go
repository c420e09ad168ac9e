package storage

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/models"
)

// Snapshot is the single serialized document holding every tenant's habits
// (in creation order) and completion records.
type Snapshot struct {
	Version     int                       `json:"version"`
	Habits      []models.Habit            `json:"habits"`
	Completions []models.CompletionRecord `json:"completions"`
}

// NewSnapshot returns an empty snapshot at the current schema version
func NewSnapshot() Snapshot {
	return Snapshot{
		Version:     constants.SchemaVersion,
		Habits:      []models.Habit{},
		Completions: []models.CompletionRecord{},
	}
}

// Clone returns a deep copy that shares no slices with s
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Version:     s.Version,
		Habits:      make([]models.Habit, len(s.Habits)),
		Completions: make([]models.CompletionRecord, len(s.Completions)),
	}
	copy(c.Habits, s.Habits)
	copy(c.Completions, s.Completions)
	return c
}

// SortCompletions orders records by habit then day so output is deterministic
func (s *Snapshot) SortCompletions() {
	sort.Slice(s.Completions, func(i, j int) bool {
		a, b := s.Completions[i], s.Completions[j]
		if a.HabitID != b.HabitID {
			return a.HabitID < b.HabitID
		}
		return a.Day < b.Day
	})
}

// EncodeSnapshot serializes s as indented JSON
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize storage: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses data and checks the schema version
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.Version != constants.SchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: got %d, want %d", errors.ErrUnsupportedVersion, s.Version, constants.SchemaVersion)
	}

	// Ensure slices are initialized
	if s.Habits == nil {
		s.Habits = []models.Habit{}
	}
	if s.Completions == nil {
		s.Completions = []models.CompletionRecord{}
	}

	return s, nil
}
