package appointment

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

// Slot is the half-open interval [Start, End) on Date.
type Slot struct {
	Date  datatypes.Date
	Start datatypes.Time
	End   datatypes.Time
}

func (s Slot) Valid() bool {
	return s.Start < s.End
}

// Overlaps reports whether the two slots share any instant.
// Touching boundaries (one ends exactly when the other starts) do not overlap.
func (s Slot) Overlaps(o Slot) bool {
	return SameDate(s.Date, o.Date) && s.Start < o.End && o.Start < s.End
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s-%s", FormatDate(s.Date), FormatClock(s.Start), FormatClock(s.End))
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func SameDate(a, b datatypes.Date) bool {
	ay, am, ad := time.Time(a).Date()
	by, bm, bd := time.Time(b).Date()
	return ay == by && am == bm && ad == bd
}

// CompareDates orders two dates by calendar day.
func CompareDates(a, b datatypes.Date) int {
	return time.Time(DateOf(time.Time(a))).Compare(time.Time(DateOf(time.Time(b))))
}

func ParseDate(raw string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", raw)
	}
	return DateOf(t), nil
}

func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// ParseClock accepts HH:MM or HH:MM:SS.
func ParseClock(raw string) (datatypes.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q, use HH:MM", raw)
}

// FormatClock renders HH:MM, adding seconds only when they are set.
func FormatClock(t datatypes.Time) string {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if s != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
