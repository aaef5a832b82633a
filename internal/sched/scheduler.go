package sched

import (
	"context"
	"fmt"
	"time"

	"histofin-bot/internal/logger"
)

// Action is the work bound to a schedule entry.
type Action func(ctx context.Context) error

// Rule decides whether an entry is due at a given tick.
type Rule interface {
	Due(now, lastRun time.Time) bool
}

// dailyRule fires once per day at a fixed wall-clock time.
type dailyRule struct {
	hour, min int
	loc       *time.Location
}

// DailyAt parses "HH:MM" into a rule firing once per day at that time in loc.
func DailyAt(hhmm string, loc *time.Location) (Rule, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return nil, fmt.Errorf("invalid daily time '%s': %w", hhmm, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &dailyRule{hour: t.Hour(), min: t.Minute(), loc: loc}, nil
}

func (r *dailyRule) Due(now, lastRun time.Time) bool {
	local := now.In(r.loc)
	fire := time.Date(local.Year(), local.Month(), local.Day(), r.hour, r.min, 0, 0, r.loc)
	if local.Before(fire) {
		return false
	}
	// Already fired this period if the last run was at or after today's
	// fire time.
	return lastRun.In(r.loc).Before(fire)
}

// intervalRule fires when at least the interval has elapsed since last run.
type intervalRule struct {
	every time.Duration
}

// Every returns a rule firing on a fixed recurring interval. The first fire
// is one interval after registration.
func Every(d time.Duration) Rule {
	return &intervalRule{every: d}
}

func (r *intervalRule) Due(now, lastRun time.Time) bool {
	return now.Sub(lastRun) >= r.every
}

// Entry binds a trigger rule to an action. Entries are registered once at
// startup and never removed.
type Entry struct {
	Name    string
	Rule    Rule
	Action  Action
	lastRun time.Time
}

// Scheduler is the process-wide tick loop: wake, evaluate the static entry
// table, execute due entries synchronously in registration order, sleep.
// A failing entry is logged and absorbed; the next tick is the retry unit.
type Scheduler struct {
	entries []*Entry
	tick    time.Duration
	now     func() time.Time
}

func New(tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Minute
	}
	return &Scheduler{tick: tick, now: time.Now}
}

// Add registers an entry. The registration moment counts as its last run, so
// interval entries first fire one interval later and daily entries skip a
// fire time that already passed today.
func (s *Scheduler) Add(name string, rule Rule, action Action) {
	s.entries = append(s.entries, &Entry{
		Name:    name,
		Rule:    rule,
		Action:  action,
		lastRun: s.now(),
	})
}

// Tick evaluates all entries once. Exposed for tests; Run calls it each wake.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()
	for _, e := range s.entries {
		if !e.Rule.Due(now, e.lastRun) {
			continue
		}
		e.lastRun = now

		logger.Info(ctx, "Schedule entry due", "entry", e.Name)
		if err := e.Action(ctx); err != nil {
			logger.ErrorWithErr(ctx, "Schedule entry failed", err, "entry", e.Name)
			continue
		}
		logger.Info(ctx, "Schedule entry completed", "entry", e.Name)
	}
}

// Run drives the tick loop until the context is cancelled. There is no
// terminal state: the process runs until an external signal stops it.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	logger.Info(ctx, "Scheduler started", "entries", len(s.entries), "tick", s.tick.String())

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Scheduler stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}
