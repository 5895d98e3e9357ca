package fact

type SessionType string

const (
	SessionMatch    SessionType = "match"
	SessionTraining SessionType = "training"
)

type PlayerType string

const (
	PlayerOutfield   PlayerType = "outfield"
	PlayerGoalkeeper PlayerType = "goalkeeper"
)

// PlayerGPS is one player session. Distances are meters, speeds km/h.
type PlayerGPS struct {
	PlayerKey   int64
	TeamKey     int64
	DateKey     int
	SessionType SessionType
	MatchKey    *int64

	DurationMin     *float64
	TotalDistanceM  *float64
	HSRDistanceM    *float64
	SprintDistanceM *float64
	MaxSpeedKmh     *float64
	Accelerations   *float64
	Decelerations   *float64
	PlayerLoad      *float64
	MetersPerMin    *float64
	HSRShare        *float64
}

type PlayerGPSKey struct {
	PlayerKey   int64
	DateKey     int
	SessionType SessionType
}

func (f PlayerGPS) NaturalKey() PlayerGPSKey {
	return PlayerGPSKey{PlayerKey: f.PlayerKey, DateKey: f.DateKey, SessionType: f.SessionType}
}

// PlayerStats is one player's line for one match. Outfield and goalkeeper metrics share
// the table; columns that do not apply to the player type stay null.
type PlayerStats struct {
	PlayerKey      int64
	MatchKey       int64
	TeamKey        int64
	DateKey        int
	CompetitionKey int64
	PlayerType     PlayerType
	SessionType    SessionType

	Minutes        *float64
	Goals          *float64
	Assists        *float64
	XG             *float64
	Shots          *float64
	Passes         *float64
	PassesAccurate *float64
	PassAccuracy   *float64
	Duels          *float64
	DuelsWon       *float64
	DuelSuccess    *float64
	Interceptions  *float64
	Tackles        *float64
	ShotsAgainst   *float64
	Saves          *float64
	GoalsConceded  *float64
	XGAgainst      *float64
	Exits          *float64
	SaveRate       *float64
	GoalsPrevented *float64
}

type PlayerStatsKey struct {
	PlayerKey int64
	MatchKey  int64
}

func (f PlayerStats) NaturalKey() PlayerStatsKey {
	return PlayerStatsKey{PlayerKey: f.PlayerKey, MatchKey: f.MatchKey}
}

// TeamMatch is one side's statistics for one match.
type TeamMatch struct {
	TeamKey        int64
	MatchKey       int64
	DateKey        int
	CompetitionKey int64
	IsHome         bool

	Goals          *float64
	XG             *float64
	Shots          *float64
	ShotsOnTarget  *float64
	Passes         *float64
	PassesAccurate *float64
	PassAccuracy   *float64
	Possession     *float64
	Duels          *float64
	DuelsWon       *float64
}

type TeamMatchKey struct {
	TeamKey  int64
	MatchKey int64
}

func (f TeamMatch) NaturalKey() TeamMatchKey {
	return TeamMatchKey{TeamKey: f.TeamKey, MatchKey: f.MatchKey}
}

// Tables is the set of fact rows produced by one run.
type Tables struct {
	PlayerGPS   []PlayerGPS
	PlayerStats []PlayerStats
	TeamMatch   []TeamMatch
}

func (t Tables) Len() int {
	return len(t.PlayerGPS) + len(t.PlayerStats) + len(t.TeamMatch)
}
