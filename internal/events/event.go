// Package events carries "entry recorded" notifications to open websocket
// clients, other server instances and downstream consumers.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
)

const TypeEmotionRecorded = "emotion.recorded"

// Event is the payload broadcast over Redis, AMQP and WebSocket.
type Event struct {
	Type      string             `json:"type"`
	UserID    int64              `json:"userId"`
	Date      string             `json:"date"`
	Emotion   models.EmotionType `json:"emotion"`
	Reason    *string            `json:"reason"`
	Created   bool               `json:"created"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewRecorded builds the event emitted after an entry write.
func NewRecorded(e *models.Emotion, created bool) Event {
	return Event{
		Type:      TypeEmotionRecorded,
		UserID:    e.UserID,
		Date:      e.Date,
		Emotion:   e.Emotion,
		Reason:    e.Reason,
		Created:   created,
		Timestamp: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
