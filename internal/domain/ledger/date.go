package ledger

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
)

// dateLayouts lists the timestamp shapes the document store is known to emit.
// RFC3339Nano also accepts values without fractional seconds.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate parses a raw store timestamp. The second return value is false
// for empty or unparsable input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDateOnly(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != len(time.DateOnly) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// EffectiveDate returns primary unless it is blank, in which case fallback is
// used. Every dated document resolves its reporting date through here.
func EffectiveDate(primary, fallback string) string {
	if strings.TrimSpace(primary) != "" {
		return primary
	}
	return fallback
}

// DateWindow is an optional, inclusive [Start, End] interval. A nil bound is open.
type DateWindow struct {
	Start *time.Time
	End   *time.Time
}

// Unbounded returns the "all time" window.
func Unbounded() DateWindow {
	return DateWindow{}
}

// Between returns a window with both bounds set.
func Between(start, end time.Time) DateWindow {
	return DateWindow{Start: &start, End: &end}
}

// Since returns a window open at the end.
func Since(start time.Time) DateWindow {
	return DateWindow{Start: &start}
}

// NewDateWindow builds a window from request strings. Blank strings leave the
// bound open. A date-only end bound is extended to the last instant of that day.
func NewDateWindow(start, end string) (DateWindow, error) {
	var w DateWindow
	if strings.TrimSpace(start) != "" {
		t, ok := ParseDate(start)
		if !ok {
			return DateWindow{}, shared.ErrInvalidInput.WithDetail("unparsable window start %q", start)
		}
		w.Start = &t
	}
	if strings.TrimSpace(end) != "" {
		t, ok := ParseDate(end)
		if !ok {
			return DateWindow{}, shared.ErrInvalidInput.WithDetail("unparsable window end %q", end)
		}
		if isDateOnly(end) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		w.End = &t
	}
	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return DateWindow{}, shared.ErrInvalidInput.WithDetail("window start %s is after end %s", start, end)
	}
	return w, nil
}

// IsUnbounded reports whether neither bound is set.
func (w DateWindow) IsUnbounded() bool {
	return w.Start == nil && w.End == nil
}

// Contains reports whether the raw date falls inside the window. An unbounded
// window accepts everything, including missing dates; otherwise missing or
// unparsable dates are excluded.
func (w DateWindow) Contains(dateStr string) bool {
	if w.IsUnbounded() {
		return true
	}
	t, ok := ParseDate(dateStr)
	if !ok {
		return false
	}
	return w.ContainsTime(t)
}

// ContainsTime is Contains for an already parsed instant.
func (w DateWindow) ContainsTime(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// Key is a stable string form used in cache keys.
func (w DateWindow) Key() string {
	return boundKey(w.Start) + "|" + boundKey(w.End)
}

func boundKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// InWindow is the free-function form of DateWindow.Contains.
func InWindow(dateStr string, start, end *time.Time) bool {
	return DateWindow{Start: start, End: end}.Contains(dateStr)
}
