package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type dateTableModel struct {
	DateKey      int       `db:"date_key"`
	CalendarDate time.Time `db:"calendar_date"`
}

// namedTableModel reads dim_team and dim_player through column aliases.
type namedTableModel struct {
	Key     int64          `db:"entity_key"`
	Name    string         `db:"entity_name"`
	Aliases pq.StringArray `db:"aliases"`
}

type competitionTableModel struct {
	CompetitionKey  int64  `db:"competition_key"`
	CompetitionName string `db:"competition_name"`
	Season          string `db:"season"`
}

type matchTableModel struct {
	MatchKey       int64          `db:"match_key"`
	HomeTeamKey    int64          `db:"home_team_key"`
	AwayTeamKey    int64          `db:"away_team_key"`
	DateKey        int            `db:"date_key"`
	CompetitionKey int64          `db:"competition_key"`
	MatchLabel     sql.NullString `db:"match_label"`
	HomeScore      sql.NullInt64  `db:"home_score"`
	AwayScore      sql.NullInt64  `db:"away_score"`
}
