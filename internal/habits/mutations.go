package habits

import (
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
	"github.com/julianstephens/habitual/internal/validation"
)

// AddHabit creates a habit for ownerEmail and appends it in creation order.
func (s *Store) AddHabit(name string, freq models.Frequency, ownerEmail string) (models.Habit, error) {
	if err := s.checkWritable(); err != nil {
		return models.Habit{}, err
	}
	if err := validation.ValidateOwner(ownerEmail); err != nil {
		return models.Habit{}, err
	}
	trimmed, err := validation.ValidateHabitName(name)
	if err != nil {
		return models.Habit{}, err
	}
	if !freq.Valid() {
		return models.Habit{}, errors.Invalid("frequency", "frequency must be daily or weekly")
	}

	habit := models.Habit{
		ID:         s.newID(),
		OwnerEmail: ownerEmail,
		Name:       trimmed,
		Frequency:  freq,
		CreatedAt:  s.now(),
	}
	s.habits = append(s.habits, habit)
	s.commit()

	logger.Debug("Added habit", "id", habit.ID, "frequency", habit.Frequency)
	return habit, nil
}

// RemoveHabit deletes the habit and every completion record for it.
// Unknown ids and habits owned by another user are ignored.
func (s *Store) RemoveHabit(habitID, ownerEmail string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := validation.ValidateOwner(ownerEmail); err != nil {
		return err
	}

	idx := s.find(habitID, ownerEmail)
	if idx < 0 {
		logger.Debug("Remove ignored: habit not found for owner", "id", habitID)
		return nil
	}

	s.habits = append(s.habits[:idx:idx], s.habits[idx+1:]...)
	removed := 0
	for key := range s.completions {
		if key.HabitID == habitID {
			delete(s.completions, key)
			removed++
		}
	}
	s.commit()

	logger.Debug("Removed habit", "id", habitID, "completions", removed)
	return nil
}

// ToggleHabitCompletion flips whether the habit is completed on isoDate.
// Unknown ids and habits owned by another user are ignored.
func (s *Store) ToggleHabitCompletion(habitID, isoDate, ownerEmail string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := validation.ValidateOwner(ownerEmail); err != nil {
		return err
	}
	if !utils.ValidateDay(isoDate) {
		return errors.Invalid("date", "date must be YYYY-MM-DD")
	}

	if s.find(habitID, ownerEmail) < 0 {
		logger.Debug("Toggle ignored: habit not found for owner", "id", habitID)
		return nil
	}

	key := models.CompletionKey{HabitID: habitID, Day: isoDate}
	if _, done := s.completions[key]; done {
		delete(s.completions, key)
	} else {
		s.completions[key] = struct{}{}
	}
	s.commit()
	return nil
}
