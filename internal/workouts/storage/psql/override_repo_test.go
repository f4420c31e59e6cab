package psql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/workouts"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = workouts.NewDate(2024, time.January, 1)

func TestOverrideRepo_GetOverride(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOverrideRepo(mock, nil)

		mock.ExpectQuery(`SELECT record, version FROM workout_override`).
			WithArgs(day.Time()).
			WillReturnError(pgx.ErrNoRows)

		record, err := repo.GetOverride(context.Background(), day)
		require.NoError(t, err)
		assert.Nil(t, record)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOverrideRepo(mock, nil)

		raw := []byte(`{"completed":{"bench":true},"extras":[{"id":"x1","name":"Plank","createdAt":"2024-01-01T08:00:00Z","completed":false}]}`)
		mock.ExpectQuery(`SELECT record, version FROM workout_override`).
			WithArgs(day.Time()).
			WillReturnRows(pgxmock.NewRows([]string{"record", "version"}).AddRow(raw, 4))

		record, err := repo.GetOverride(context.Background(), day)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, 4, record.Version)
		assert.True(t, record.Completed["bench"])
		require.Len(t, record.Extras, 1)
		assert.Equal(t, "Plank", record.Extras[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed degrades to empty", func(t *testing.T) {
		mock := newMock(t)
		metricsManager := metrics.NewTestManager()
		repo := NewOverrideRepo(mock, metricsManager)

		mock.ExpectQuery(`SELECT record, version FROM workout_override`).
			WithArgs(day.Time()).
			WillReturnRows(pgxmock.NewRows([]string{"record", "version"}).AddRow([]byte(`{"extras":[{"name":"no id"}]}`), 2))

		record, err := repo.GetOverride(context.Background(), day)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, 2, record.Version)
		assert.Empty(t, record.Completed)
		assert.Empty(t, record.Extras)
		assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterMalformedOverrides))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOverrideRepo(mock, nil)

		mock.ExpectQuery(`SELECT record, version FROM workout_override`).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.GetOverride(context.Background(), day)
		assert.EqualError(t, err, "connection reset")
	})
}

func TestOverrideRepo_SetOverride(t *testing.T) {
	t.Run("first write inserts", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOverrideRepo(mock, nil)

		record := workouts.NewOverrideRecord()
		record.Completed["bench"] = true
		mock.ExpectExec(`INSERT INTO workout_override`).
			WithArgs(day.Time(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.SetOverride(context.Background(), day, record))
		assert.Equal(t, 1, record.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent first write conflicts", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOverrideRepo(mock, nil)

		record := workouts.NewOverrideRecord()
		mock.ExpectExec(`INSERT INTO workout_override`).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err := repo.SetOverride(context.Background(), day, record)
		assert.ErrorIs(t, err, workouts.ErrVersionConflict)
		assert.Equal(t, 0, record.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update bumps version", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOverrideRepo(mock, nil)

		record := workouts.NewOverrideRecord()
		record.Version = 3
		mock.ExpectExec(`UPDATE workout_override`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), day.Time(), 3).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.SetOverride(context.Background(), day, record))
		assert.Equal(t, 4, record.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOverrideRepo(mock, nil)

		record := workouts.NewOverrideRecord()
		record.Version = 3
		mock.ExpectExec(`UPDATE workout_override`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SetOverride(context.Background(), day, record)
		assert.ErrorIs(t, err, workouts.ErrVersionConflict)
		assert.Equal(t, 3, record.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil record", func(t *testing.T) {
		mock := newMock(t)
		repo := NewOverrideRepo(mock, nil)
		assert.Error(t, repo.SetOverride(context.Background(), day, nil))
	})
}

func TestOverrideRepo_ListOverrides(t *testing.T) {
	mock := newMock(t)
	repo := NewOverrideRepo(mock, nil)
	to := day.AddDays(6)

	rows := pgxmock.NewRows([]string{"day", "record", "version"}).
		AddRow(day.Time(), []byte(`{"completed":{"bench":true},"extras":[]}`), 1).
		AddRow(day.AddDays(2).Time(), []byte(`{"completed":{},"extras":[]}`), 5)
	mock.ExpectQuery(`SELECT day, record, version FROM workout_override WHERE day >= \$1 AND day <= \$2`).
		WithArgs(day.Time(), to.Time()).
		WillReturnRows(rows)

	overrides, err := repo.ListOverrides(context.Background(), day, to)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, overrides, 2)
	assert.True(t, overrides[day].Completed["bench"])
	assert.Equal(t, 5, overrides[day.AddDays(2)].Version)
	assert.Nil(t, overrides[day.AddDays(1)])
}
