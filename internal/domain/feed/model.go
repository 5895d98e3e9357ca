package feed

import (
	"fmt"
	"strings"
)

// Kind identifies one raw export.
type Kind string

const (
	KindGPSMatch         Kind = "gps_match"
	KindGPSTraining      Kind = "gps_training"
	KindPlayerOutfield   Kind = "player_outfield"
	KindPlayerGoalkeeper Kind = "player_goalkeeper"
	KindMatchInfo        Kind = "match_info"
)

// Kinds lists every feed in the order a run reads them.
func Kinds() []Kind {
	return []Kind{KindGPSMatch, KindGPSTraining, KindPlayerOutfield, KindPlayerGoalkeeper, KindMatchInfo}
}

func ParseKind(v string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range Kinds() {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown feed kind %q", v)
}

func (k Kind) IsGPS() bool {
	return k == KindGPSMatch || k == KindGPSTraining
}

// Identity carries the join fields every row exposes to the dimension builder.
type Identity struct {
	Player      string
	Team        string
	Date        string
	Match       string
	Competition string
	Season      string
	HomeTeam    string
	AwayTeam    string
}

// Row is implemented by the typed row of each feed.
type Row interface {
	Kind() Kind
	Identity() Identity
}

// GPSRow is one player session from the GPS vendor, for either match or training exports.
type GPSRow struct {
	Player string `csv:"name,player,player_name" validate:"required"`
	Team   string `csv:"team_name,team,club" validate:"required"`
	Date   string `csv:"date,session_date" validate:"required"`
	Match  string `csv:"match,match_label"`

	DurationMin    *float64 `csv:"duration_min,duration,minutes"`
	TotalDistance  *float64 `csv:"total_distance,distance"`
	HSRDistance    *float64 `csv:"hsr_distance,high_speed_running"`
	SprintDistance *float64 `csv:"sprint_distance"`
	MaxSpeed       *float64 `csv:"max_speed,top_speed"`
	Accelerations  *float64 `csv:"accelerations,accels"`
	Decelerations  *float64 `csv:"decelerations,decels"`
	PlayerLoad     *float64 `csv:"player_load,load"`

	kind Kind
}

func NewGPSRow(kind Kind) *GPSRow {
	return &GPSRow{kind: kind}
}

func (r *GPSRow) Kind() Kind {
	if r.kind == "" {
		return KindGPSMatch
	}
	return r.kind
}

func (r *GPSRow) Identity() Identity {
	return Identity{Player: r.Player, Team: r.Team, Date: r.Date, Match: r.Match}
}

// OutfieldRow is one outfield player's statistics for one match.
type OutfieldRow struct {
	Player      string `csv:"player,name,player_name" validate:"required"`
	Team        string `csv:"team_name,team,club" validate:"required"`
	Date        string `csv:"date,match_date" validate:"required"`
	Match       string `csv:"match,match_label"`
	Competition string `csv:"competition,competition_name"`
	Season      string `csv:"season"`

	Minutes        *float64 `csv:"minutes,minutes_played"`
	Goals          *float64 `csv:"goals"`
	Assists        *float64 `csv:"assists"`
	XG             *float64 `csv:"xg"`
	Shots          *float64 `csv:"shots"`
	Passes         *float64 `csv:"passes"`
	PassesAccurate *float64 `csv:"passes_accurate,accurate_passes"`
	Duels          *float64 `csv:"duels"`
	DuelsWon       *float64 `csv:"duels_won"`
	Interceptions  *float64 `csv:"interceptions"`
	Tackles        *float64 `csv:"tackles"`
}

func (r *OutfieldRow) Kind() Kind {
	return KindPlayerOutfield
}

func (r *OutfieldRow) Identity() Identity {
	return Identity{Player: r.Player, Team: r.Team, Date: r.Date, Match: r.Match, Competition: r.Competition, Season: r.Season}
}

// GoalkeeperRow is one goalkeeper's statistics for one match.
type GoalkeeperRow struct {
	Player      string `csv:"player,name,player_name" validate:"required"`
	Team        string `csv:"team_name,team,club" validate:"required"`
	Date        string `csv:"date,match_date" validate:"required"`
	Match       string `csv:"match,match_label"`
	Competition string `csv:"competition,competition_name"`
	Season      string `csv:"season"`

	Minutes        *float64 `csv:"minutes,minutes_played"`
	ShotsAgainst   *float64 `csv:"shots_against"`
	Saves          *float64 `csv:"saves"`
	GoalsConceded  *float64 `csv:"goals_conceded,conceded_goals"`
	XGAgainst      *float64 `csv:"xg_against,xcg"`
	Passes         *float64 `csv:"passes"`
	PassesAccurate *float64 `csv:"passes_accurate,accurate_passes"`
	Exits          *float64 `csv:"exits"`
}

func (r *GoalkeeperRow) Kind() Kind {
	return KindPlayerGoalkeeper
}

func (r *GoalkeeperRow) Identity() Identity {
	return Identity{Player: r.Player, Team: r.Team, Date: r.Date, Match: r.Match, Competition: r.Competition, Season: r.Season}
}

// MatchInfoRow is one team's line for one match. A match normally has two rows, one per side.
type MatchInfoRow struct {
	Match       string `csv:"match,match_label" validate:"required"`
	Date        string `csv:"date,match_date" validate:"required"`
	Team        string `csv:"team_name,team,club" validate:"required"`
	Competition string `csv:"competition,competition_name" validate:"required"`
	Season      string `csv:"season"`
	HomeTeam    string `csv:"home_team,home"`
	AwayTeam    string `csv:"away_team,away"`

	Goals          *float64 `csv:"goals"`
	XG             *float64 `csv:"xg"`
	Shots          *float64 `csv:"shots"`
	ShotsOnTarget  *float64 `csv:"shots_on_target"`
	Passes         *float64 `csv:"passes"`
	PassesAccurate *float64 `csv:"passes_accurate,accurate_passes"`
	Possession     *float64 `csv:"possession,possession_pct"`
	Duels          *float64 `csv:"duels"`
	DuelsWon       *float64 `csv:"duels_won"`
}

func (r *MatchInfoRow) Kind() Kind {
	return KindMatchInfo
}

func (r *MatchInfoRow) Identity() Identity {
	return Identity{
		Team:        r.Team,
		Date:        r.Date,
		Match:       r.Match,
		Competition: r.Competition,
		Season:      r.Season,
		HomeTeam:    r.HomeTeam,
		AwayTeam:    r.AwayTeam,
	}
}

// NewRow returns an empty typed row for kind.
func NewRow(kind Kind) (Row, error) {
	switch kind {
	case KindGPSMatch, KindGPSTraining:
		return NewGPSRow(kind), nil
	case KindPlayerOutfield:
		return &OutfieldRow{}, nil
	case KindPlayerGoalkeeper:
		return &GoalkeeperRow{}, nil
	case KindMatchInfo:
		return &MatchInfoRow{}, nil
	default:
		return nil, fmt.Errorf("unknown feed kind %q", kind)
	}
}

// ParseError reports a malformed raw field. The row is surfaced, never coerced.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("field %s: malformed value %q", e.Field, e.Value)
	}
	return fmt.Sprintf("field %s: malformed value %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Record is one raw line from a feed. Exactly one of Row and Err is set.
type Record struct {
	Kind Kind
	Line int
	Row  Row
	Err  error
}
