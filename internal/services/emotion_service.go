package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/events"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/repository"
	"github.com/AnshRaj112/emotion-tracker-backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordInput is a day's entry as submitted by the client. An empty Date
// means today.
type RecordInput struct {
	Date    string             `json:"date"`
	Emotion models.EmotionType `json:"emotion"`
	Reason  *string            `json:"reason"`
}

type EmotionService struct {
	repo    repository.EmotionRepository
	history repository.HistoryStore
	cache   CacheStore
	events  events.Publisher
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewEmotionService(
	repo repository.EmotionRepository,
	history repository.HistoryStore,
	cache CacheStore,
	publisher events.Publisher,
	log *zap.SugaredLogger,
) *EmotionService {
	return &EmotionService{
		repo:    repo,
		history: history,
		cache:   cache,
		events:  publisher,
		log:     log,
		now:     time.Now,
	}
}

func monthKey(userID int64, year, month int) string {
	return CacheKey("emotions:month", fmt.Sprintf("%d:%04d-%02d", userID, year, month))
}

func yearKey(userID int64, year int) string {
	return CacheKey("emotions:year", fmt.Sprintf("%d:%04d", userID, year))
}

// RecordEmotion creates the user's entry for the day or overwrites the
// existing one. created reports which of the two happened.
func (s *EmotionService) RecordEmotion(ctx context.Context, userID int64, in RecordInput) (entry *models.Emotion, created bool, err error) {
	var verrs utils.ValidationErrors
	if !in.Emotion.Valid() {
		verrs.Add("emotion", "must be one of very-happy, happy, neutral, sad, angry")
	}
	date := in.Date
	if date == "" {
		date = s.now().Format(models.DateLayout)
	} else if _, perr := utils.ParseDate(date); perr != nil {
		verrs.Add("date", "must be a date in YYYY-MM-DD format")
	}
	if err := verrs.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: %w", models.ErrValidation, err)
	}

	entry, created, err = s.upsert(ctx, userID, date, in)
	if errors.Is(err, models.ErrConflict) {
		// another request inserted the same day first; overwrite it
		entry, created, err = s.upsert(ctx, userID, date, in)
	}
	if err != nil {
		return nil, false, err
	}

	s.afterWrite(ctx, entry, created)
	return entry, created, nil
}

func (s *EmotionService) upsert(ctx context.Context, userID int64, date string, in RecordInput) (*models.Emotion, bool, error) {
	existing, err := s.repo.FindByUserAndDate(ctx, userID, date)
	switch {
	case err == nil:
		existing.Emotion = in.Emotion
		existing.Reason = in.Reason
		if err := s.repo.Save(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("update entry: %w", err)
		}
		return existing, false, nil

	case errors.Is(err, models.ErrNotFound):
		entry := &models.Emotion{
			ID:        uuid.NewString(),
			UserID:    userID,
			Date:      date,
			Emotion:   in.Emotion,
			Reason:    in.Reason,
			CreatedAt: s.now().UTC(),
		}
		if err := s.repo.Save(ctx, entry); err != nil {
			if errors.Is(err, models.ErrConflict) {
				return nil, false, models.ErrConflict
			}
			return nil, false, fmt.Errorf("insert entry: %w", err)
		}
		return entry, true, nil

	default:
		return nil, false, fmt.Errorf("lookup entry: %w", err)
	}
}

// afterWrite drops stale read models and notifies listeners. Failures here
// are logged and never fail the write.
func (s *EmotionService) afterWrite(ctx context.Context, e *models.Emotion, created bool) {
	if d, err := utils.ParseDate(e.Date); err == nil {
		if err := s.cache.Delete(ctx, monthKey(e.UserID, d.Year(), int(d.Month())), yearKey(e.UserID, d.Year())); err != nil {
			s.log.Warnw("failed to invalidate cache", "user_id", e.UserID, "date", e.Date, "error", err)
		}
	}

	rev := models.EmotionRevision{
		EntryID:    e.ID,
		UserID:     e.UserID,
		Date:       e.Date,
		Emotion:    e.Emotion,
		Reason:     e.Reason,
		RecordedAt: s.now().UTC(),
	}
	if err := s.history.Append(ctx, rev); err != nil {
		s.log.Warnw("failed to append entry history", "user_id", e.UserID, "date", e.Date, "error", err)
	}

	if err := s.events.Publish(ctx, events.NewRecorded(e, created)); err != nil {
		s.log.Warnw("failed to publish entry event", "user_id", e.UserID, "date", e.Date, "error", err)
	}
}

// ListByMonth returns the user's entries of one month in ascending date order.
func (s *EmotionService) ListByMonth(ctx context.Context, userID int64, year, month int) ([]models.EmotionView, error) {
	from, to, err := utils.MonthRange(year, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrValidation, err)
	}

	key := monthKey(userID, year, month)
	var views []models.EmotionView
	if hit, err := s.cache.Get(ctx, key, &views); err != nil {
		s.log.Warnw("cache read failed", "key", key, "error", err)
	} else if hit {
		return views, nil
	}

	entries, err := s.repo.FindByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	views = make([]models.EmotionView, 0, len(entries))
	for i := range entries {
		views = append(views, entries[i].View())
	}

	if err := s.cache.Set(ctx, key, views); err != nil {
		s.log.Warnw("cache write failed", "key", key, "error", err)
	}
	return views, nil
}

// YearlyCounts tallies the user's entries of one year by category. All five
// categories are present; stored values outside them are not counted.
func (s *EmotionService) YearlyCounts(ctx context.Context, userID int64, year int) (models.YearlyStats, error) {
	from, to, err := utils.YearRange(year)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrValidation, err)
	}

	key := yearKey(userID, year)
	var stats models.YearlyStats
	if hit, err := s.cache.Get(ctx, key, &stats); err != nil {
		s.log.Warnw("cache read failed", "key", key, "error", err)
	} else if hit {
		return stats, nil
	}

	entries, err := s.repo.FindByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	stats = models.NewYearlyStats()
	for _, e := range entries {
		if _, known := stats[e.Emotion]; known {
			stats[e.Emotion]++
		}
	}

	if err := s.cache.Set(ctx, key, stats); err != nil {
		s.log.Warnw("cache write failed", "key", key, "error", err)
	}
	return stats, nil
}

// History returns every recorded write of the user's entry for date, oldest first.
func (s *EmotionService) History(ctx context.Context, userID int64, date string) ([]models.EmotionRevision, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrValidation, err)
	}
	revs, err := s.history.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return revs, nil
}
