// Package calendar lays out month grids and statistic bars for journal
// front ends.
package calendar

import (
	"fmt"
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// Cell is one day of a month grid.
type Cell struct {
	Day     int
	Date    string // YYYY-MM-DD
	Emotion string // empty when nothing was recorded
	Reason  *string
	IsToday bool
}

// HasData reports whether the day has a recorded entry.
func (c *Cell) HasData() bool { return c.Emotion != "" }

// Lookup returns the recorded entry for a date, if any.
type Lookup func(date string) (emotion string, reason *string, ok bool)

// Grid is a month laid out Sunday-first. Cells holds one nil per leading
// blank followed by one cell per day.
type Grid struct {
	Year  int
	Month time.Month
	Cells []*Cell
}

// Month builds the grid for year/month. today marks the current day; lookup
// may be nil.
func Month(year int, month time.Month, today time.Time, lookup Lookup) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	leading := int(first.Weekday())
	todayDate := today.Format(dateLayout)

	cells := make([]*Cell, leading, leading+daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
		c := &Cell{Day: day, Date: date, IsToday: date == todayDate}
		if lookup != nil {
			if emotion, reason, ok := lookup(date); ok {
				c.Emotion, c.Reason = emotion, reason
			}
		}
		cells = append(cells, c)
	}
	return Grid{Year: year, Month: month, Cells: cells}
}

// Weeks splits the grid into rows of seven, padding the last row with nils.
func (g Grid) Weeks() [][]*Cell {
	var weeks [][]*Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := i + 7
		row := make([]*Cell, 7)
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		copy(row, g.Cells[i:end])
		weeks = append(weeks, row)
	}
	return weeks
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func Of(t time.Time) YearMonth { return YearMonth{Year: t.Year(), Month: t.Month()} }

// Add moves n months forward (negative n moves back).
func (ym YearMonth) Add(n int) YearMonth {
	t := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) Before(o YearMonth) bool {
	return ym.Year < o.Year || (ym.Year == o.Year && ym.Month < o.Month)
}

func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

// Window is the browsable range: the twelve months ending at the current one.
type Window struct {
	Start   YearMonth
	End     YearMonth
	Current YearMonth
}

func NewWindow(now time.Time) *Window {
	end := Of(now)
	return &Window{Start: end.Add(-11), End: end, Current: end}
}

func (w *Window) CanPrev() bool { return w.Start.Before(w.Current) }
func (w *Window) CanNext() bool { return w.Current.Before(w.End) }

// Prev moves one month back and reports whether it moved.
func (w *Window) Prev() bool {
	if !w.CanPrev() {
		return false
	}
	w.Current = w.Current.Add(-1)
	return true
}

// Next moves one month forward and reports whether it moved.
func (w *Window) Next() bool {
	if !w.CanNext() {
		return false
	}
	w.Current = w.Current.Add(1)
	return true
}

// Bar is one row of the statistics panel.
type Bar struct {
	Key     string
	Count   int
	Percent int // rounded share of the total, 0 when there is no data
}

// Percentages returns one bar per key in order. Shares are rounded
// individually, so they need not add up to exactly 100.
func Percentages(counts map[string]int, order []string) ([]Bar, int) {
	total := 0
	for _, k := range order {
		total += counts[k]
	}
	bars := make([]Bar, 0, len(order))
	for _, k := range order {
		b := Bar{Key: k, Count: counts[k]}
		if total > 0 {
			b.Percent = int(math.Round(float64(b.Count) / float64(total) * 100))
		}
		bars = append(bars, b)
	}
	return bars, total
}
