package clock

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DateLayout plain calendar date as used by query parameters
const DateLayout = "2006-01-02"

// Clock source of the current instant
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Manual a settable Clock for tests
type Manual struct {
	mu sync.Mutex
	t  time.Time
}

// NewManual returns a Manual clock set to t
func NewManual(t time.Time) *Manual {
	return &Manual{t: t}
}

// Now returns the current manual instant
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

// Set moves the clock to t
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.t = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.t = m.t.Add(d)
	m.mu.Unlock()
}

// Civil resolves instants and calendar days in one fixed civil timezone.
// All day buckets in the ledger are computed here, never by UTC truncation.
type Civil struct {
	loc *time.Location
	src Clock
}

// New returns a Civil clock backed by the system time
func New(loc *time.Location) *Civil {
	return &Civil{loc: loc, src: systemClock{}}
}

// WithSource returns a Civil clock reading instants from src
func WithSource(src Clock, loc *time.Location) *Civil {
	return &Civil{loc: loc, src: src}
}

// Fixed returns a Civil clock frozen at t
func Fixed(t time.Time, loc *time.Location) *Civil {
	return WithSource(NewManual(t), loc)
}

// Now returns the current instant expressed in the civil zone
func (c *Civil) Now() time.Time {
	return c.src.Now().In(c.loc)
}

// Location returns the civil zone
func (c *Civil) Location() *time.Location {
	return c.loc
}

// Today returns midnight of the current civil day
func (c *Civil) Today() time.Time {
	return c.DayOf(c.src.Now())
}

// DayOf converts t into the civil zone and truncates it to midnight.
func (c *Civil) DayOf(t time.Time) time.Time {
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.loc)
}

// DayBounds returns the half-open interval [start, end) of t's civil day.
// AddDate keeps the interval correct across DST changes.
func (c *Civil) DayBounds(t time.Time) (time.Time, time.Time) {
	start := c.DayOf(t)
	return start, start.AddDate(0, 0, 1)
}

// RangeBounds returns [start of first day, end of last day) for an inclusive date range.
func (c *Civil) RangeBounds(first, last time.Time) (time.Time, time.Time) {
	start := c.DayOf(first)
	_, end := c.DayBounds(last)
	return start, end
}

// ParseDate reads a YYYY-MM-DD date as midnight in the civil zone
func (c *Civil) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseInstant reads an RFC3339 timestamp. Strings without a zone offset
// are interpreted in the civil zone.
func (c *Civil) ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(c.loc), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected RFC3339", s)
}

// Format renders t in the civil zone as RFC3339
func (c *Civil) Format(t time.Time) string {
	return t.In(c.loc).Format(time.RFC3339)
}
