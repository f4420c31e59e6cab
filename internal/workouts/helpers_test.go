package workouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/workouts"

	"github.com/stretchr/testify/require"
)

var (
	// 2024-01-01 is a Monday
	monday     = workouts.NewDate(2024, time.January, 1)
	nextMonday = monday.AddDays(7)
)

func exercise(id, name, category string) workouts.TemplateExercise {
	return workouts.TemplateExercise{
		ID:       id,
		Name:     name,
		Category: category,
	}
}

func extra(id, name string, completed bool) workouts.ExtraExercise {
	return workouts.ExtraExercise{
		TemplateExercise: workouts.TemplateExercise{ID: id, Name: name},
		Completed:        completed,
	}
}

func addPlan(t *testing.T, store *workouts.MemStore, slot workouts.WeekdaySlot, exercises ...workouts.TemplateExercise) {
	t.Helper()
	for _, ex := range exercises {
		require.NoError(t, store.AddExercise(context.Background(), slot, ex))
	}
}

// putOverride stores record for date, whatever version is currently stored.
func putOverride(t *testing.T, store *workouts.MemStore, date workouts.Date, record *workouts.OverrideRecord) {
	t.Helper()
	ctx := context.Background()
	stored, err := store.GetOverride(ctx, date)
	require.NoError(t, err)
	record = record.Clone()
	record.Version = 0
	if stored != nil {
		record.Version = stored.Version
	}
	require.NoError(t, store.SetOverride(ctx, date, record))
}

func intPtr(v int) *int {
	return &v
}
