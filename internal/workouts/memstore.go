package workouts

import (
	"context"
	"fmt"
	"sync"
)

var (
	_ TemplateRepository  = (*MemStore)(nil)
	_ OverrideLog         = (*MemStore)(nil)
	_ OverrideRangeReader = (*MemStore)(nil)
)

// MemStore keeps the template and the override log in process memory.
// Everything going in or out is copied, so callers never share state with the store.
type MemStore struct {
	mu        sync.RWMutex
	plan      WeekPlan
	overrides map[Date]*OverrideRecord
}

func NewMemStore() *MemStore {
	return &MemStore{
		plan:      WeekPlan{}.Clone(),
		overrides: make(map[Date]*OverrideRecord),
	}
}

func (s *MemStore) GetWeekPlan(_ context.Context) (WeekPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan.Clone(), nil
}

func (s *MemStore) AddExercise(_ context.Context, slot WeekdaySlot, exercise TemplateExercise) error {
	if !slot.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidWeekday, slot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ex := range s.plan[slot] {
		if ex.ID == exercise.ID {
			return fmt.Errorf("%w: duplicate id %s on %s", ErrInvalidExercise, exercise.ID, slot)
		}
	}
	s.plan[slot] = append(s.plan[slot], exercise.clone())
	return nil
}

func (s *MemStore) UpdateExercise(_ context.Context, slot WeekdaySlot, exercise TemplateExercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, ex := range s.plan[slot] {
		if ex.ID == exercise.ID {
			s.plan[slot][i] = exercise.clone()
			return nil
		}
	}
	return ErrExerciseNotFound
}

func (s *MemStore) RemoveExercise(_ context.Context, slot WeekdaySlot, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.plan[slot]
	for i, ex := range list {
		if ex.ID == id {
			kept := make([]TemplateExercise, 0, len(list)-1)
			kept = append(kept, list[:i]...)
			kept = append(kept, list[i+1:]...)
			s.plan[slot] = kept
			return nil
		}
	}
	return ErrExerciseNotFound
}

func (s *MemStore) GetOverride(_ context.Context, date Date) (*OverrideRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overrides[date].Clone(), nil
}

func (s *MemStore) SetOverride(_ context.Context, date Date, record *OverrideRecord) error {
	if record == nil {
		return fmt.Errorf("set override %s: nil record", date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	storedVersion := 0
	if stored, ok := s.overrides[date]; ok {
		storedVersion = stored.Version
	}
	if storedVersion != record.Version {
		return ErrVersionConflict
	}

	record.Version++
	s.overrides[date] = record.Clone()
	return nil
}

func (s *MemStore) ListOverrides(_ context.Context, from, to Date) (map[Date]*OverrideRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make(map[Date]*OverrideRecord)
	for date, record := range s.overrides {
		if date.Before(from) || date.After(to) {
			continue
		}
		res[date] = record.Clone()
	}
	return res, nil
}
