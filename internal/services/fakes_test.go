package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/events"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[string]*models.User
	err    error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.byID[u.LoginID]; ok {
		return nil, models.ErrConflict
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.LoginID] = &cp
	return u, nil
}

func (m *memUsers) FindByLoginID(_ context.Context, loginID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[loginID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// memEmotions enforces the same constraints as the SQL schema: unique id and
// unique (user, date).
type memEmotions struct {
	mu      sync.Mutex
	rows    map[string]models.Emotion
	saves   int
	hideOne bool // next FindByUserAndDate misses, simulating a concurrent insert
	err     error
}

func newMemEmotions() *memEmotions { return &memEmotions{rows: map[string]models.Emotion{}} }

func (m *memEmotions) FindByUserAndDate(_ context.Context, userID int64, date string) (*models.Emotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.hideOne {
		m.hideOne = false
		return nil, models.ErrNotFound
	}
	for _, e := range m.rows {
		if e.UserID == userID && e.Date == date {
			cp := e
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memEmotions) FindByUserAndDateRange(_ context.Context, userID int64, from, to string) ([]models.Emotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Emotion{}
	for _, e := range m.rows {
		if e.UserID == userID && e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *memEmotions) Save(_ context.Context, e *models.Emotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for id, row := range m.rows {
		if id != e.ID && row.UserID == e.UserID && row.Date == e.Date {
			return models.ErrConflict
		}
	}
	m.saves++
	m.rows[e.ID] = *e
	return nil
}

func (m *memEmotions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memHistory struct {
	mu   sync.Mutex
	revs []models.EmotionRevision
	err  error
}

func (h *memHistory) Append(_ context.Context, rev models.EmotionRevision) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.revs = append(h.revs, rev)
	return nil
}

func (h *memHistory) ListByDate(_ context.Context, userID int64, date string) ([]models.EmotionRevision, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []models.EmotionRevision{}
	for _, r := range h.revs {
		if r.UserID == userID && r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

var errDBDown = errors.New("db down")
