package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/database"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
)

type SQLEmotionRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLEmotionRepository(db *sql.DB, dialect database.Dialect) *SQLEmotionRepository {
	return &SQLEmotionRepository{db: db, dialect: dialect}
}

const emotionColumns = `id, user_id, emotion, reason, date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmotion(row rowScanner) (*models.Emotion, error) {
	var (
		e      models.Emotion
		reason sql.NullString
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Emotion, &reason, &e.Date, &e.CreatedAt); err != nil {
		return nil, err
	}
	if reason.Valid {
		e.Reason = &reason.String
	}
	return &e, nil
}

func (r *SQLEmotionRepository) FindByUserAndDate(ctx context.Context, userID int64, date string) (*models.Emotion, error) {
	query := r.dialect.Rebind(
		`SELECT ` + emotionColumns + ` FROM emotions
		 WHERE user_id = ? AND date = ?`)

	e, err := scanEmotion(r.db.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *SQLEmotionRepository) FindByUserAndDateRange(ctx context.Context, userID int64, from, to string) ([]models.Emotion, error) {
	query := r.dialect.Rebind(
		`SELECT ` + emotionColumns + ` FROM emotions
		 WHERE user_id = ? AND date BETWEEN ? AND ?
		 ORDER BY date ASC`)

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	entries := []models.Emotion{}
	for rows.Next() {
		e, err := scanEmotion(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entries, nil
}

func (r *SQLEmotionRepository) Save(ctx context.Context, e *models.Emotion) error {
	query := r.dialect.Rebind(
		`INSERT INTO emotions (` + emotionColumns + `)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET emotion = excluded.emotion, reason = excluded.reason`)

	var reason sql.NullString
	if e.Reason != nil {
		reason = sql.NullString{String: *e.Reason, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, string(e.Emotion), reason, e.Date, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
