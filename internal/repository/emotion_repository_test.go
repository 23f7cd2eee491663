package repository

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/database"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var emotionRowColumns = []string{"id", "user_id", "emotion", "reason", "date", "created_at"}

func strPtr(s string) *string { return &s }

func TestEmotionFindByUserAndDate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSQLEmotionRepository(db, database.Postgres)

	q := `(?s)^SELECT\s+id,\s*user_id,\s*emotion,\s*reason,\s*date,\s*created_at\s+FROM\s+emotions\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+date\s*=\s*\$2\s*$`
	created := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q).WithArgs(int64(1), "2024-03-05").
		WillReturnRows(sqlmock.NewRows(emotionRowColumns).AddRow("e-1", 1, "happy", nil, "2024-03-05", created))
	mock.ExpectQuery(q).WithArgs(int64(1), "2024-03-06").
		WillReturnRows(sqlmock.NewRows(emotionRowColumns))

	got, err := repo.FindByUserAndDate(context.Background(), 1, "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "e-1", got.ID)
	assert.Equal(t, models.Happy, got.Emotion)
	assert.Nil(t, got.Reason)

	_, err = repo.FindByUserAndDate(context.Background(), 1, "2024-03-06")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmotionFindByUserAndDateRange(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSQLEmotionRepository(db, database.Postgres)

	q := `(?s)^SELECT\s+.+\s+FROM\s+emotions\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+date\s+BETWEEN\s+\$2\s+AND\s+\$3\s+ORDER\s+BY\s+date\s+ASC\s*$`
	now := time.Now()

	mock.ExpectQuery(q).WithArgs(int64(1), "2024-02-01", "2024-02-29").
		WillReturnRows(sqlmock.NewRows(emotionRowColumns).
			AddRow("e-1", 1, "sad", "rain", "2024-02-01", now).
			AddRow("e-2", 1, "angry", nil, "2024-02-29", now))

	got, err := repo.FindByUserAndDateRange(context.Background(), 1, "2024-02-01", "2024-02-29")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rain", *got[0].Reason)
	assert.Equal(t, "2024-02-29", got[1].Date)
	assert.Nil(t, got[1].Reason)
}

func TestEmotionFindByUserAndDateRange_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSQLEmotionRepository(db, database.Postgres)

	mock.ExpectQuery(`FROM\s+emotions`).WillReturnRows(sqlmock.NewRows(emotionRowColumns))

	got, err := repo.FindByUserAndDateRange(context.Background(), 1, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEmotionSave(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSQLEmotionRepository(db, database.Postgres)

	q := `(?s)^INSERT\s+INTO\s+emotions\s*\(.+\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET\s+emotion\s*=\s*excluded\.emotion,\s*reason\s*=\s*excluded\.reason\s*$`

	mock.ExpectExec(q).
		WithArgs("e-1", int64(1), "happy", "sunny", "2024-03-05", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("e-2", int64(1), "sad", nil, "2024-03-05", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Save(context.Background(), &models.Emotion{ID: "e-1", UserID: 1, Emotion: models.Happy, Reason: strPtr("sunny"), Date: "2024-03-05"})
	require.NoError(t, err)

	err = repo.Save(context.Background(), &models.Emotion{ID: "e-2", UserID: 1, Emotion: models.Sad, Date: "2024-03-05"})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
