package validation

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitID      ConflictType = "duplicate_habit_id"
	ConflictMissingHabitID        ConflictType = "missing_habit_id"
	ConflictMissingOwner          ConflictType = "missing_owner"
	ConflictInvalidName           ConflictType = "invalid_name"
	ConflictInvalidFrequency      ConflictType = "invalid_frequency"
	ConflictInvalidDate           ConflictType = "invalid_date"
	ConflictOrphanCompletion      ConflictType = "orphan_completion"
	ConflictCrossTenantCompletion ConflictType = "cross_tenant_completion"
	ConflictDuplicateCompletion   ConflictType = "duplicate_completion"
)

// Conflict represents one problem found in stored data
type Conflict struct {
	Type        ConflictType
	Description string
	HabitID     string
	Day         string // YYYY-MM-DD (completion conflicts only)
	Index       int    // position in the habits or completions slice
}

// Prunable reports whether the conflict concerns a single completion record
// that can be dropped without losing any habit.
func (c Conflict) Prunable() bool {
	switch c.Type {
	case ConflictInvalidDate, ConflictOrphanCompletion, ConflictCrossTenantCompletion, ConflictDuplicateCompletion:
		return true
	default:
		return false
	}
}

// Fatal reports whether the conflict breaks a structural invariant of the
// habit list (ids, owners, frequency) and the data cannot be used as is.
func (c Conflict) Fatal() bool {
	switch c.Type {
	case ConflictDuplicateHabitID, ConflictMissingHabitID, ConflictMissingOwner, ConflictInvalidFrequency:
		return true
	default:
		return false
	}
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Fatal returns the conflicts that make the data unusable
func (vr *ValidationResult) Fatal() []Conflict {
	var out []Conflict
	for _, c := range vr.Conflicts {
		if c.Fatal() {
			out = append(out, c)
		}
	}
	return out
}

// PrunableCompletions returns the indexes of completion records to drop, ascending
func (vr *ValidationResult) PrunableCompletions() []int {
	seen := make(map[int]bool)
	var out []int
	for _, c := range vr.Conflicts {
		if c.Prunable() && !seen[c.Index] {
			seen[c.Index] = true
			out = append(out, c.Index)
		}
	}
	sort.Ints(out)
	return out
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks stored habits and completion records
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateSnapshot checks every habit and completion record.
func (v *Validator) ValidateSnapshot(habits []models.Habit, completions []models.CompletionRecord) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	owners := make(map[string]string, len(habits))

	for i, h := range habits {
		if h.ID == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingHabitID,
				Description: fmt.Sprintf("Habit %q at position %d has no id", h.Name, i),
				Index:       i,
			})
			continue
		}

		if _, dup := owners[h.ID]; dup {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitID,
				Description: fmt.Sprintf("Duplicate habit id: %s (%q)", h.ID, h.Name),
				HabitID:     h.ID,
				Index:       i,
			})
			continue
		}
		owners[h.ID] = h.OwnerEmail

		if h.OwnerEmail == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingOwner,
				Description: fmt.Sprintf("Habit %q (%s) has no owner", h.Name, h.ID),
				HabitID:     h.ID,
				Index:       i,
			})
		}

		if !h.Frequency.Valid() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidFrequency,
				Description: fmt.Sprintf("Habit %q (%s) has unknown frequency %q", h.Name, h.ID, h.Frequency),
				HabitID:     h.ID,
				Index:       i,
			})
		}

		trimmed := strings.TrimSpace(h.Name)
		if trimmed == "" || trimmed != h.Name || utf8.RuneCountInString(h.Name) > constants.MaxHabitNameLength {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidName,
				Description: fmt.Sprintf("Habit %s has an invalid name %q", h.ID, h.Name),
				HabitID:     h.ID,
				Index:       i,
			})
		}
	}

	seen := make(map[models.CompletionKey]bool, len(completions))
	for i, r := range completions {
		owner, ok := owners[r.HabitID]
		switch {
		case !utils.ValidateDay(r.Day):
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Completion for habit %s has invalid date %q", r.HabitID, r.Day),
				HabitID:     r.HabitID,
				Day:         r.Day,
				Index:       i,
			})
		case !ok:
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanCompletion,
				Description: fmt.Sprintf("Completion on %s references missing habit %s", r.Day, r.HabitID),
				HabitID:     r.HabitID,
				Day:         r.Day,
				Index:       i,
			})
		case r.OwnerEmail != "" && owner != r.OwnerEmail:
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictCrossTenantCompletion,
				Description: fmt.Sprintf("Completion on %s for habit %s is owned by %q but the habit belongs to %q", r.Day, r.HabitID, r.OwnerEmail, owner),
				HabitID:     r.HabitID,
				Day:         r.Day,
				Index:       i,
			})
		case seen[r.Key()]:
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateCompletion,
				Description: fmt.Sprintf("Duplicate completion for habit %s on %s", r.HabitID, r.Day),
				HabitID:     r.HabitID,
				Day:         r.Day,
				Index:       i,
			})
		default:
			seen[r.Key()] = true
		}
	}

	return result
}
