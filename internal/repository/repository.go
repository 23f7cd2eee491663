// Package repository persists users and emotion entries behind small
// interfaces so services never see SQL.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"github.com/lib/pq"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByLoginID(ctx context.Context, loginID string) (*models.User, error)
}

type EmotionRepository interface {
	// FindByUserAndDate returns models.ErrNotFound when the day has no entry.
	FindByUserAndDate(ctx context.Context, userID int64, date string) (*models.Emotion, error)
	// FindByUserAndDateRange returns entries with from <= date <= to, ascending by date.
	FindByUserAndDateRange(ctx context.Context, userID int64, from, to string) ([]models.Emotion, error)
	// Save inserts the entry or updates it in place when the id already exists.
	Save(ctx context.Context, e *models.Emotion) error
}

// HistoryStore keeps every write of a day's entry.
type HistoryStore interface {
	Append(ctx context.Context, rev models.EmotionRevision) error
	ListByDate(ctx context.Context, userID int64, date string) ([]models.EmotionRevision, error)
}

// isUniqueViolation recognises unique constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
