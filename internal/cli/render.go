package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"github.com/AnshRaj112/emotion-tracker-backend/pkg/calendar"
)

var emotionLabels = map[string]string{
	string(models.VeryHappy): "Very happy",
	string(models.Happy):     "Happy",
	string(models.Neutral):   "Neutral",
	string(models.Sad):       "Sad",
	string(models.Angry):     "Angry",
}

// emotionMarks are the one-letter codes drawn in calendar cells.
var emotionMarks = map[string]string{
	string(models.VeryHappy): "V",
	string(models.Happy):     "H",
	string(models.Neutral):   "N",
	string(models.Sad):       "S",
	string(models.Angry):     "A",
}

func emotionOrder() []string {
	order := make([]string, len(models.EmotionTypes))
	for i, e := range models.EmotionTypes {
		order[i] = string(e)
	}
	return order
}

// RenderMonth draws a Sunday-first grid. Each day shows its number and the
// mark of the recorded emotion; today is bracketed.
func RenderMonth(w io.Writer, g calendar.Grid) {
	fmt.Fprintf(w, "%s %d\n", g.Month, g.Year)
	fmt.Fprintln(w, "  Sun    Mon    Tue    Wed    Thu    Fri    Sat")
	for _, week := range g.Weeks() {
		var b strings.Builder
		for _, c := range week {
			b.WriteString(renderCell(c))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	var legend []string
	for _, k := range emotionOrder() {
		legend = append(legend, emotionMarks[k]+"="+emotionLabels[k])
	}
	fmt.Fprintln(w, strings.Join(legend, "  "))
}

func renderCell(c *calendar.Cell) string {
	if c == nil {
		return "       "
	}
	mark := "."
	if c.HasData() {
		mark = emotionMarks[c.Emotion]
	}
	cell := fmt.Sprintf("%2d %s", c.Day, mark)
	if c.IsToday {
		return fmt.Sprintf("[%s] ", cell)
	}
	return fmt.Sprintf(" %s  ", cell)
}

const barWidth = 30

// RenderStats prints one bar per category and the total.
func RenderStats(w io.Writer, year int, counts map[string]int) {
	bars, total := calendar.Percentages(counts, emotionOrder())
	fmt.Fprintf(w, "Emotions in %d\n", year)
	for _, bar := range bars {
		filled := bar.Percent * barWidth / 100
		fmt.Fprintf(w, "%-10s %s%s %3d%% (%d)\n",
			emotionLabels[bar.Key],
			strings.Repeat("#", filled),
			strings.Repeat(" ", barWidth-filled),
			bar.Percent, bar.Count)
	}
	fmt.Fprintf(w, "Total: %d\n", total)
}
