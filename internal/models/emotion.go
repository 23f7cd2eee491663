package models

import (
	"time"
)

// EmotionType is one of the five fixed categories a day can be tagged with.
type EmotionType string

const (
	VeryHappy EmotionType = "very-happy"
	Happy     EmotionType = "happy"
	Neutral   EmotionType = "neutral"
	Sad       EmotionType = "sad"
	Angry     EmotionType = "angry"
)

// EmotionTypes lists the categories in display order.
var EmotionTypes = []EmotionType{VeryHappy, Happy, Neutral, Sad, Angry}

// Valid reports whether e is one of the known categories.
func (e EmotionType) Valid() bool {
	switch e {
	case VeryHappy, Happy, Neutral, Sad, Angry:
		return true
	}
	return false
}

// DateLayout is the storage and wire format of an entry date.
const DateLayout = "2006-01-02"

// Emotion is the entry recorded by a user for a single calendar day.
type Emotion struct {
	ID        string
	UserID    int64
	Date      string // YYYY-MM-DD
	Emotion   EmotionType
	Reason    *string
	CreatedAt time.Time
}

// EmotionView is the projection returned to clients.
type EmotionView struct {
	Date    string      `json:"date"`
	Emotion EmotionType `json:"emotion"`
	Reason  *string     `json:"reason"`
}

// View projects the entry to its client representation.
func (e *Emotion) View() EmotionView {
	return EmotionView{Date: e.Date, Emotion: e.Emotion, Reason: e.Reason}
}

// EmotionRevision is one historical write of a day's entry.
type EmotionRevision struct {
	EntryID    string      `bson:"entry_id" json:"entryId"`
	UserID     int64       `bson:"user_id" json:"-"`
	Date       string      `bson:"date" json:"date"`
	Emotion    EmotionType `bson:"emotion" json:"emotion"`
	Reason     *string     `bson:"reason,omitempty" json:"reason"`
	RecordedAt time.Time   `bson:"recorded_at" json:"recordedAt"`
}

// YearlyStats maps every category to the number of days tagged with it.
type YearlyStats map[EmotionType]int

// NewYearlyStats returns a tally with every category present and zeroed.
func NewYearlyStats() YearlyStats {
	stats := make(YearlyStats, len(EmotionTypes))
	for _, e := range EmotionTypes {
		stats[e] = 0
	}
	return stats
}
