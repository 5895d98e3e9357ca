package dimension

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

// DayFirstLayouts is the default parse order. Slashed dates read as day/month/year.
func DayFirstLayouts() []string {
	return []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"02/01/2006",
		"02/01/2006 15:04",
		"02/01/2006 15:04:05",
		"02-01-2006",
		"02.01.2006",
		"2/1/2006",
		"2 Jan 2006",
		"Jan 2, 2006",
	}
}

// MonthFirstLayouts swaps the slashed forms to month/day/year.
func MonthFirstLayouts() []string {
	return []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"01/02/2006",
		"01/02/2006 15:04",
		"01/02/2006 15:04:05",
		"01-02-2006",
		"01.02.2006",
		"1/2/2006",
		"2 Jan 2006",
		"Jan 2, 2006",
	}
}

// DateParser turns raw feed dates into calendar dates at UTC midnight.
type DateParser struct {
	layouts []string
}

func NewDateParser(layouts []string) *DateParser {
	if len(layouts) == 0 {
		layouts = DayFirstLayouts()
	}
	return &DateParser{layouts: append([]string(nil), layouts...)}
}

func (p *DateParser) Parse(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range p.layouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return CalendarDate(parsed), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q matches no layout", ErrInvalidDate, value)
}

// CalendarDate drops the clock and zone, keeping the date as written.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey is the YYYYMMDD integer of a calendar date.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func NewDateRow(t time.Time) DateRow {
	date := CalendarDate(t)
	isoYear, isoWeek := date.ISOWeek()
	return DateRow{
		DateKey:      DateKey(date),
		CalendarDate: date,
		Year:         date.Year(),
		Month:        int(date.Month()),
		Day:          date.Day(),
		ISOYear:      isoYear,
		ISOWeek:      isoWeek,
		Quarter:      (int(date.Month())-1)/3 + 1,
	}
}

// DateRange returns one row per day from start to end inclusive.
func DateRange(start, end time.Time) []DateRow {
	start, end = CalendarDate(start), CalendarDate(end)
	if end.Before(start) {
		start, end = end, start
	}
	out := make([]DateRow, 0, int(end.Sub(start).Hours()/24)+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		out = append(out, NewDateRow(day))
	}
	return out
}

// SeasonFor labels the season a date falls into, e.g. "2024/2025" for March 2025 when
// seasons start in July. A start month of January yields single-year labels.
func SeasonFor(t time.Time, startMonth time.Month) string {
	if startMonth <= time.January || startMonth > time.December {
		return fmt.Sprintf("%d", t.Year())
	}
	startYear := t.Year()
	if t.Month() < startMonth {
		startYear--
	}
	return fmt.Sprintf("%d/%d", startYear, startYear+1)
}
