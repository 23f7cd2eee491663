package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/pkg/calendar"
)

// API is the subset of Client the Tracker needs.
type API interface {
	Record(ctx context.Context, date, emotion string, reason *string) (Entry, bool, error)
	Monthly(ctx context.Context, year int, month time.Month) ([]Entry, error)
	YearlyStats(ctx context.Context, year int) (map[string]int, error)
}

// Tracker keeps a user's calendar view consistent with the server.
type Tracker struct {
	api   API
	cache Cache
	now   func() time.Time

	mu         sync.RWMutex
	yearly     map[string]int
	yearlyYear int
}

func NewTracker(api API, cache Cache, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{api: api, cache: cache, now: now}
}

// Today is the local date used for new entries.
func (t *Tracker) Today() string { return t.now().Format("2006-01-02") }

// EnsureMonth fetches a month unless it is already cached.
func (t *Tracker) EnsureMonth(ctx context.Context, month calendar.YearMonth) error {
	if t.cache.IsFetched(month) {
		return nil
	}
	entries, err := t.api.Monthly(ctx, month.Year, month.Month)
	if err != nil {
		return err
	}
	t.cache.StoreMonth(month, entries)
	return nil
}

// ErrTallyNotRefreshed means the entry was saved but the yearly tally could
// not be reloaded afterwards.
var ErrTallyNotRefreshed = errors.New("entry saved, yearly tally not refreshed")

// RecordToday writes today's entry. The cache shows the new value before
// the call returns; on failure the day is invalidated so the next
// EnsureMonth reloads what the server has. A successful write refreshes
// the yearly tally; if only that fails, the saved entry is returned along
// with ErrTallyNotRefreshed.
func (t *Tracker) RecordToday(ctx context.Context, emotion string, reason *string) (Entry, error) {
	date := t.Today()
	t.cache.Put(Entry{Date: date, Emotion: emotion, Reason: reason})

	entry, _, err := t.api.Record(ctx, date, emotion, reason)
	if err != nil {
		t.cache.Invalidate(date)
		return Entry{}, err
	}
	t.cache.Put(entry)

	if _, err := t.RefreshYear(ctx, t.now().Year()); err != nil {
		return entry, fmt.Errorf("%w: %w", ErrTallyNotRefreshed, err)
	}
	return entry, nil
}

// RefreshYear reloads the tally for year.
func (t *Tracker) RefreshYear(ctx context.Context, year int) (map[string]int, error) {
	stats, err := t.api.YearlyStats(ctx, year)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.yearly, t.yearlyYear = stats, year
	t.mu.Unlock()
	return stats, nil
}

// Yearly returns the last fetched tally and its year.
func (t *Tracker) Yearly() (map[string]int, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.yearly, t.yearlyYear
}

// Grid lays out a month from cached entries.
func (t *Tracker) Grid(month calendar.YearMonth) calendar.Grid {
	return calendar.Month(month.Year, month.Month, t.now(), CalendarLookup(t.cache))
}
