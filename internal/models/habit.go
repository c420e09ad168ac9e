package models

import (
	"fmt"
	"time"
)

// Frequency is how often a habit is meant to be performed
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Valid reports whether f is one of the known frequencies
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// ParseFrequency converts user input into a Frequency
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("invalid frequency: %q (expected daily or weekly)", s)
	}
	return f, nil
}

// Habit represents a recurring practice owned by a single user
type Habit struct {
	ID         string    `json:"id"`
	OwnerEmail string    `json:"ownerEmail"`
	Name       string    `json:"name"`
	Frequency  Frequency `json:"frequency"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IsDaily reports whether the habit participates in today/weekly progress
func (h Habit) IsDaily() bool {
	return h.Frequency == FrequencyDaily
}

// CompletionKey identifies a completion: habit X was done on day D (YYYY-MM-DD)
type CompletionKey struct {
	HabitID string
	Day     string
}

// CompletionRecord is the persisted form of a completion
type CompletionRecord struct {
	HabitID    string `json:"habitId"`
	Day        string `json:"isoDate"`
	OwnerEmail string `json:"ownerEmail"`
}

// Key returns the set key for this record
func (r CompletionRecord) Key() CompletionKey {
	return CompletionKey{HabitID: r.HabitID, Day: r.Day}
}

// Filter selects a subset of a user's habits
type Filter string

const (
	// FilterAll is every habit the user owns
	FilterAll Filter = "all"
	// FilterToday is daily habits still pending today
	FilterToday Filter = "today"
	// FilterCompleted is daily habits already completed today
	FilterCompleted Filter = "completed"
)

// Filters lists the filters in display order
var Filters = []Filter{FilterAll, FilterToday, FilterCompleted}

// ParseFilter converts user input into a Filter
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid filter: %q (expected all, today or completed)", s)
}

// Label is the human-readable name shown in the UI
func (f Filter) Label() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterToday:
		return "Today"
	case FilterCompleted:
		return "Completed"
	default:
		return string(f)
	}
}
