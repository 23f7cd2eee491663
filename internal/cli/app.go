// Package cli is the terminal front end of the emotion tracker. It keeps the
// session token on disk and drives pkg/client for every command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"github.com/AnshRaj112/emotion-tracker-backend/pkg/calendar"
	"github.com/AnshRaj112/emotion-tracker-backend/pkg/client"
)

// ErrUsage is returned for unknown commands and bad flags.
var ErrUsage = errors.New("usage")

const usage = `Usage: emotion-cli [-server URL] <command> [flags]

Commands:
  register   create an account
  login      sign in and keep the session
  logout     forget the session
  me         show the signed-in user
  record     record today's emotion: record [-reason TEXT] [-date YYYY-MM-DD] EMOTION
  calendar   show a month: calendar [-month YYYY-MM]
  stats      show the yearly tally: stats [-year YYYY]

Emotions: very-happy, happy, neutral, sad, angry`

type App struct {
	api    *client.Client
	tokens TokenStore
	in     *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

func NewApp(api *client.Client, tokens TokenStore, in io.Reader, out io.Writer) *App {
	return &App{
		api:    api,
		tokens: tokens,
		in:     bufio.NewReader(in),
		out:    out,
		now:    time.Now,
	}
}

// Run executes one command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		if err := a.tokens.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	}

	if err := a.restoreSession(); err != nil {
		return err
	}

	var err error
	switch cmd {
	case "me":
		err = a.me(ctx)
	case "record":
		err = a.record(ctx, rest)
	case "calendar":
		err = a.calendar(ctx, rest)
	case "stats":
		err = a.stats(ctx, rest)
	default:
		fmt.Fprintf(a.out, "unknown command %q\n\n%s\n", cmd, usage)
		return ErrUsage
	}

	if client.IsUnauthorized(err) {
		_ = a.tokens.Clear()
		return errors.New("session expired, run login again")
	}
	return err
}

func (a *App) restoreSession() error {
	tok, err := a.tokens.Load()
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if tok == "" {
		return errors.New("not signed in, run login first")
	}
	a.api.SetToken(tok)
	return nil
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) prompt(value *string, label string) error {
	if *value != "" {
		return nil
	}
	v, err := GetSimpleText(a.in, label, a.out)
	if err != nil {
		return err
	}
	*value = v
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	id := fs.String("id", "", "login id")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if err := a.prompt(id, "Login id"); err != nil {
		return err
	}
	if err := a.prompt(name, "Name"); err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, *id, pw, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s (%s). Run login to sign in.\n", u.Name, u.ID)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	id := fs.String("id", "", "login id")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if err := a.prompt(id, "Login id"); err != nil {
		return err
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	res, err := a.api.Login(ctx, *id, pw)
	if err != nil {
		return err
	}
	if err := a.tokens.Save(res.Token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(a.out, "Welcome, %s.\n", res.User.Name)
	return nil
}

func (a *App) me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.Name, u.ID)
	return nil
}

func (a *App) tracker() *client.Tracker {
	return client.NewTracker(a.api, client.NewMonthCache(), a.now)
}

func (a *App) record(ctx context.Context, args []string) error {
	fs := a.flags("record")
	reasonFlag := fs.String("reason", "", "optional note")
	date := fs.String("date", "", "day to record, defaults to today")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.out, usage)
		return ErrUsage
	}
	emotion := strings.ToLower(fs.Arg(0))
	if !models.EmotionType(emotion).Valid() {
		return fmt.Errorf("unknown emotion %q", emotion)
	}

	var reason *string
	if r := strings.TrimSpace(*reasonFlag); r != "" {
		reason = &r
	}

	var (
		entry client.Entry
		err   error
	)
	if *date == "" {
		entry, err = a.tracker().RecordToday(ctx, emotion, reason)
	} else {
		entry, _, err = a.api.Record(ctx, *date, emotion, reason)
	}
	if err != nil && !errors.Is(err, client.ErrTallyNotRefreshed) {
		return err
	}
	fmt.Fprintf(a.out, "Recorded %s for %s.\n", emotionLabels[entry.Emotion], entry.Date)
	if err != nil {
		fmt.Fprintln(a.out, "Warning: yearly stats could not be refreshed; run stats to retry.")
	}
	return nil
}

func (a *App) calendar(ctx context.Context, args []string) error {
	fs := a.flags("calendar")
	monthFlag := fs.String("month", "", "YYYY-MM within the last twelve months")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	window := calendar.NewWindow(a.now())
	month := window.Current
	if *monthFlag != "" {
		t, err := time.Parse("2006-01", *monthFlag)
		if err != nil {
			return fmt.Errorf("invalid month %q", *monthFlag)
		}
		month = calendar.Of(t)
		if month.Before(window.Start) || window.End.Before(month) {
			return fmt.Errorf("month %s is outside %s..%s", month, window.Start, window.End)
		}
	}

	tr := a.tracker()
	if err := tr.EnsureMonth(ctx, month); err != nil {
		return err
	}
	RenderMonth(a.out, tr.Grid(month))
	return nil
}

func (a *App) stats(ctx context.Context, args []string) error {
	fs := a.flags("stats")
	yearFlag := fs.String("year", "", "year, defaults to the current one")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	year := a.now().Year()
	if *yearFlag != "" {
		y, err := strconv.Atoi(*yearFlag)
		if err != nil {
			return fmt.Errorf("invalid year %q", *yearFlag)
		}
		year = y
	}

	counts, err := a.tracker().RefreshYear(ctx, year)
	if err != nil {
		return err
	}
	RenderStats(a.out, year, counts)
	return nil
}
