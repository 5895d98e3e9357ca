package dimension

import "time"

// DateRow is a pure function of its calendar date.
type DateRow struct {
	DateKey      int
	CalendarDate time.Time
	Year         int
	Month        int
	Day          int
	ISOYear      int
	ISOWeek      int
	Quarter      int
}

type TeamRow struct {
	TeamKey int64
	Name    string
	Aliases []string
}

type PlayerRow struct {
	PlayerKey int64
	Name      string
	Aliases   []string
}

// CompetitionRow is unique per (Name, Season).
type CompetitionRow struct {
	CompetitionKey int64
	Name           string
	Season         string
}

// MatchRow is unique per (HomeTeamKey, AwayTeamKey, DateKey, CompetitionKey).
type MatchRow struct {
	MatchKey       int64
	HomeTeamKey    int64
	AwayTeamKey    int64
	DateKey        int
	CompetitionKey int64
	Label          string
	HomeScore      *int
	AwayScore      *int
}

// MatchNaturalKey identifies a match independently of its surrogate key.
type MatchNaturalKey struct {
	HomeTeamKey    int64
	AwayTeamKey    int64
	DateKey        int
	CompetitionKey int64
}

func (m MatchRow) NaturalKey() MatchNaturalKey {
	return MatchNaturalKey{
		HomeTeamKey:    m.HomeTeamKey,
		AwayTeamKey:    m.AwayTeamKey,
		DateKey:        m.DateKey,
		CompetitionKey: m.CompetitionKey,
	}
}

// HasTeam reports whether teamKey plays in the match.
func (m MatchRow) HasTeam(teamKey int64) bool {
	return m.HomeTeamKey == teamKey || m.AwayTeamKey == teamKey
}

type CompetitionNaturalKey struct {
	Name   string
	Season string
}

// Tables is the full set of dimension rows produced by one run, each slice ordered by key.
type Tables struct {
	Dates        []DateRow
	Teams        []TeamRow
	Players      []PlayerRow
	Competitions []CompetitionRow
	Matches      []MatchRow
}
