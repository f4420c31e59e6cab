package psql

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/workouts"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

func intPtr(v int) *int {
	return &v
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var templateColumns = []string{"weekday", "id", "name", "category", "sets", "reps", "notes", "created_at"}

func TestTemplateRepo_GetWeekPlan(t *testing.T) {
	mock := newMock(t)
	repo := NewTemplateRepo(mock)
	createdAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(templateColumns).
		AddRow("monday", "bench", "Bench Press", "Chest", intPtr(3), intPtr(8), "", createdAt).
		AddRow("monday", "fly", "Cable Fly", "Chest", nil, nil, "slow", createdAt).
		AddRow("funday", "ghost", "Ghost", "", nil, nil, "", createdAt).
		AddRow("friday", "run", "Run", "Cardio", nil, nil, "", createdAt)
	mock.ExpectQuery(`SELECT weekday, id, name, category, sets, reps, notes, created_at`).
		WillReturnRows(rows)

	plan, err := repo.GetWeekPlan(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Len(t, plan, 7)
	require.Len(t, plan[workouts.Monday], 2)
	assert.Equal(t, "bench", plan[workouts.Monday][0].ID)
	assert.Equal(t, 3, *plan[workouts.Monday][0].Sets)
	assert.Equal(t, "fly", plan[workouts.Monday][1].ID)
	assert.Nil(t, plan[workouts.Monday][1].Sets)
	assert.Equal(t, "slow", plan[workouts.Monday][1].Notes)
	require.Len(t, plan[workouts.Friday], 1)
	assert.Empty(t, plan[workouts.Sunday])
}

func TestTemplateRepo_AddExercise(t *testing.T) {
	exercise := workouts.TemplateExercise{
		ID:        "squat",
		Name:      "Squat",
		Category:  "Legs",
		Sets:      intPtr(5),
		Reps:      intPtr(5),
		CreatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}

	t.Run("appended", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTemplateRepo(mock)

		mock.ExpectExec(`INSERT INTO workout_template_exercise`).
			WithArgs("tuesday", "squat", "tuesday", "Squat", "Legs", exercise.Sets, exercise.Reps, "", exercise.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.AddExercise(context.Background(), workouts.Tuesday, exercise))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate id", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTemplateRepo(mock)

		mock.ExpectExec(`INSERT INTO workout_template_exercise`).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.AddExercise(context.Background(), workouts.Tuesday, exercise)
		assert.ErrorIs(t, err, workouts.ErrInvalidExercise)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid weekday", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTemplateRepo(mock)

		err := repo.AddExercise(context.Background(), workouts.WeekdaySlot("someday"), exercise)
		assert.ErrorIs(t, err, workouts.ErrInvalidWeekday)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTemplateRepo_UpdateExercise(t *testing.T) {
	exercise := workouts.TemplateExercise{ID: "bench", Name: "Incline Bench", Category: "Chest"}

	t.Run("updated", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTemplateRepo(mock)

		mock.ExpectExec(`UPDATE workout_template_exercise`).
			WithArgs("Incline Bench", "Chest", (*int)(nil), (*int)(nil), "", "monday", "bench").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateExercise(context.Background(), workouts.Monday, exercise))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTemplateRepo(mock)

		mock.ExpectExec(`UPDATE workout_template_exercise`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateExercise(context.Background(), workouts.Monday, exercise)
		assert.ErrorIs(t, err, workouts.ErrExerciseNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTemplateRepo_RemoveExercise(t *testing.T) {
	mock := newMock(t)
	repo := NewTemplateRepo(mock)

	mock.ExpectExec(`DELETE FROM workout_template_exercise`).
		WithArgs("monday", "bench").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM workout_template_exercise`).
		WithArgs("monday", "bench").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.RemoveExercise(context.Background(), workouts.Monday, "bench"))
	assert.ErrorIs(t, repo.RemoveExercise(context.Background(), workouts.Monday, "bench"), workouts.ErrExerciseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
