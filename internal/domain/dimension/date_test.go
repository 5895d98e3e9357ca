package dimension

import (
	"errors"
	"testing"
	"time"
)

func TestDateParserDayFirst(t *testing.T) {
	parser := NewDateParser(nil)

	tests := []struct {
		raw     string
		wantKey int
	}{
		{raw: "2024-03-05", wantKey: 20240305},
		{raw: "05/03/2024", wantKey: 20240305},
		{raw: "5/3/2024", wantKey: 20240305},
		{raw: "05.03.2024", wantKey: 20240305},
		{raw: "2024-03-05T19:45:00Z", wantKey: 20240305},
		{raw: " 2024-03-05 20:00:00 ", wantKey: 20240305},
	}

	for _, tc := range tests {
		got, err := parser.Parse(tc.raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.raw, err)
		}
		if key := DateKey(got); key != tc.wantKey {
			t.Fatalf("Parse(%q) key = %d, want %d", tc.raw, key, tc.wantKey)
		}
	}
}

func TestDateParserMonthFirst(t *testing.T) {
	got, err := NewDateParser(MonthFirstLayouts()).Parse("03/05/2024")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if key := DateKey(got); key != 20240305 {
		t.Fatalf("unexpected key %d", key)
	}
}

func TestDateParserRejectsGarbage(t *testing.T) {
	parser := NewDateParser(nil)
	for _, raw := range []string{"", "not a date", "31/02/2024", "2024-13-01"} {
		if _, err := parser.Parse(raw); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("Parse(%q): expected ErrInvalidDate, got %v", raw, err)
		}
	}
}

func TestNewDateRowIsDeterministic(t *testing.T) {
	parser := NewDateParser(nil)
	fromISO, err := parser.Parse("2024-12-30")
	if err != nil {
		t.Fatalf("parse iso: %v", err)
	}
	fromSlash, err := parser.Parse("30/12/2024 18:30")
	if err != nil {
		t.Fatalf("parse slashed: %v", err)
	}

	a, b := NewDateRow(fromISO), NewDateRow(fromSlash)
	if a != b {
		t.Fatalf("expected identical rows, got %+v and %+v", a, b)
	}
	want := DateRow{
		DateKey:      20241230,
		CalendarDate: time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
		Year:         2024,
		Month:        12,
		Day:          30,
		ISOYear:      2025,
		ISOWeek:      1,
		Quarter:      4,
	}
	if a != want {
		t.Fatalf("unexpected row:\nwant: %+v\ngot:  %+v", want, a)
	}
}

func TestDateRange(t *testing.T) {
	rows := DateRange(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if len(rows) != 3 {
		t.Fatalf("expected 3 days across leap day, got %d", len(rows))
	}
	if rows[1].DateKey != 20240229 {
		t.Fatalf("expected leap day in range, got %d", rows[1].DateKey)
	}
}

func TestSeasonFor(t *testing.T) {
	tests := []struct {
		date  time.Time
		start time.Month
		want  string
	}{
		{date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start: time.July, want: "2024/2025"},
		{date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), start: time.July, want: "2024/2025"},
		{date: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), start: time.July, want: "2023/2024"},
		{date: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), start: time.January, want: "2024"},
	}

	for _, tc := range tests {
		if got := SeasonFor(tc.date, tc.start); got != tc.want {
			t.Fatalf("SeasonFor(%s, %s) = %q, want %q", tc.date.Format("2006-01-02"), tc.start, got, tc.want)
		}
	}
}
