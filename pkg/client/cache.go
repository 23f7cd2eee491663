package client

import (
	"sync"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/pkg/calendar"
)

// Cache is the client-side store of entries the Tracker reads and writes.
type Cache interface {
	Lookup(date string) (Entry, bool)
	Put(e Entry)
	// Invalidate drops the date and marks its month for re-fetching.
	Invalidate(date string)
	IsFetched(month calendar.YearMonth) bool
	// StoreMonth merges a fetched month; entries already present are
	// overwritten.
	StoreMonth(month calendar.YearMonth, entries []Entry)
}

// MonthCache is the in-memory Cache. It is safe for concurrent use.
type MonthCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	fetched map[calendar.YearMonth]bool
}

func NewMonthCache() *MonthCache {
	return &MonthCache{
		entries: make(map[string]Entry),
		fetched: make(map[calendar.YearMonth]bool),
	}
}

func (c *MonthCache) Lookup(date string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[date]
	return e, ok
}

func (c *MonthCache) Put(e Entry) {
	c.mu.Lock()
	c.entries[e.Date] = e
	c.mu.Unlock()
}

func (c *MonthCache) Invalidate(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, date)
	if ym, ok := monthOf(date); ok {
		delete(c.fetched, ym)
	}
}

func (c *MonthCache) IsFetched(month calendar.YearMonth) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetched[month]
}

func (c *MonthCache) StoreMonth(month calendar.YearMonth, entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		c.entries[e.Date] = e
	}
	c.fetched[month] = true
}

// CalendarLookup adapts a Cache to calendar.Month.
func CalendarLookup(c Cache) calendar.Lookup {
	return func(date string) (string, *string, bool) {
		e, ok := c.Lookup(date)
		if !ok {
			return "", nil, false
		}
		return e.Emotion, e.Reason, true
	}
}

func monthOf(date string) (calendar.YearMonth, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return calendar.YearMonth{}, false
	}
	return calendar.Of(t), true
}
