package warehouse

import (
	"fmt"
	"time"

	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
	"github.com/riskibarqy/sports-warehouse/internal/domain/fact"
)

var (
	DimDate = Table{
		Name:       "dim_date",
		Columns:    []string{"date_key", "calendar_date", "year", "month", "day", "iso_year", "iso_week", "quarter"},
		NaturalKey: []string{"date_key"},
	}
	DimTeam = Table{
		Name:         "dim_team",
		Columns:      []string{"team_key", "team_name", "aliases"},
		NaturalKey:   []string{"team_name"},
		KeyColumn:    "team_key",
		ArrayColumns: []string{"aliases"},
	}
	DimPlayer = Table{
		Name:         "dim_player",
		Columns:      []string{"player_key", "player_name", "aliases"},
		NaturalKey:   []string{"player_name"},
		KeyColumn:    "player_key",
		ArrayColumns: []string{"aliases"},
	}
	DimCompetition = Table{
		Name:       "dim_competition",
		Columns:    []string{"competition_key", "competition_name", "season"},
		NaturalKey: []string{"competition_name", "season"},
		KeyColumn:  "competition_key",
	}
	DimMatch = Table{
		Name: "dim_match",
		Columns: []string{
			"match_key", "home_team_key", "away_team_key", "date_key", "competition_key",
			"match_label", "home_score", "away_score",
		},
		NaturalKey: []string{"home_team_key", "away_team_key", "date_key", "competition_key"},
		KeyColumn:  "match_key",
	}

	FactPlayerGPS = Table{
		Name: "fact_player_gps",
		Columns: []string{
			"player_key", "date_key", "session_type", "team_key", "match_key",
			"duration_min", "total_distance_m", "hsr_distance_m", "sprint_distance_m", "max_speed_kmh",
			"accelerations", "decelerations", "player_load", "meters_per_min", "hsr_share",
		},
		NaturalKey: []string{"player_key", "date_key", "session_type"},
	}
	FactPlayerStats = Table{
		Name: "fact_player_stats",
		Columns: []string{
			"player_key", "match_key", "team_key", "date_key", "competition_key", "player_type", "session_type",
			"minutes", "goals", "assists", "xg", "shots", "passes", "passes_accurate", "pass_accuracy",
			"duels", "duels_won", "duel_success", "interceptions", "tackles",
			"shots_against", "saves", "goals_conceded", "xg_against", "exits", "save_rate", "goals_prevented",
		},
		NaturalKey: []string{"player_key", "match_key"},
	}
	FactTeamMatch = Table{
		Name: "fact_team_match",
		Columns: []string{
			"team_key", "match_key", "date_key", "competition_key", "is_home",
			"goals", "xg", "shots", "shots_on_target", "passes", "passes_accurate", "pass_accuracy",
			"possession", "duels", "duels_won",
		},
		NaturalKey: []string{"team_key", "match_key"},
	}
)

// DimensionTables is the fixed dimension load order.
func DimensionTables() []Table {
	return []Table{DimDate, DimTeam, DimPlayer, DimCompetition, DimMatch}
}

func FactTables() []Table {
	return []Table{FactPlayerGPS, FactPlayerStats, FactTeamMatch}
}

// DimensionRows encodes dim into sink rows keyed by table name.
func DimensionRows(dim dimension.Tables) map[string][]Row {
	out := make(map[string][]Row, 5)

	dates := make([]Row, 0, len(dim.Dates))
	for _, d := range dim.Dates {
		dates = append(dates, Row{d.DateKey, d.CalendarDate, d.Year, d.Month, d.Day, d.ISOYear, d.ISOWeek, d.Quarter})
	}
	out[DimDate.Name] = dates

	teams := make([]Row, 0, len(dim.Teams))
	for _, team := range dim.Teams {
		teams = append(teams, Row{team.TeamKey, team.Name, append([]string(nil), team.Aliases...)})
	}
	out[DimTeam.Name] = teams

	players := make([]Row, 0, len(dim.Players))
	for _, player := range dim.Players {
		players = append(players, Row{player.PlayerKey, player.Name, append([]string(nil), player.Aliases...)})
	}
	out[DimPlayer.Name] = players

	competitions := make([]Row, 0, len(dim.Competitions))
	for _, c := range dim.Competitions {
		competitions = append(competitions, Row{c.CompetitionKey, c.Name, c.Season})
	}
	out[DimCompetition.Name] = competitions

	matches := make([]Row, 0, len(dim.Matches))
	for _, m := range dim.Matches {
		matches = append(matches, Row{
			m.MatchKey, m.HomeTeamKey, m.AwayTeamKey, m.DateKey, m.CompetitionKey,
			m.Label, m.HomeScore, m.AwayScore,
		})
	}
	out[DimMatch.Name] = matches

	return out
}

// FactRows encodes facts into sink rows keyed by table name.
func FactRows(facts fact.Tables) map[string][]Row {
	out := make(map[string][]Row, 3)

	gps := make([]Row, 0, len(facts.PlayerGPS))
	for _, f := range facts.PlayerGPS {
		gps = append(gps, Row{
			f.PlayerKey, f.DateKey, string(f.SessionType), f.TeamKey, f.MatchKey,
			f.DurationMin, f.TotalDistanceM, f.HSRDistanceM, f.SprintDistanceM, f.MaxSpeedKmh,
			f.Accelerations, f.Decelerations, f.PlayerLoad, f.MetersPerMin, f.HSRShare,
		})
	}
	out[FactPlayerGPS.Name] = gps

	stats := make([]Row, 0, len(facts.PlayerStats))
	for _, f := range facts.PlayerStats {
		stats = append(stats, Row{
			f.PlayerKey, f.MatchKey, f.TeamKey, f.DateKey, f.CompetitionKey, string(f.PlayerType), string(f.SessionType),
			f.Minutes, f.Goals, f.Assists, f.XG, f.Shots, f.Passes, f.PassesAccurate, f.PassAccuracy,
			f.Duels, f.DuelsWon, f.DuelSuccess, f.Interceptions, f.Tackles,
			f.ShotsAgainst, f.Saves, f.GoalsConceded, f.XGAgainst, f.Exits, f.SaveRate, f.GoalsPrevented,
		})
	}
	out[FactPlayerStats.Name] = stats

	teams := make([]Row, 0, len(facts.TeamMatch))
	for _, f := range facts.TeamMatch {
		teams = append(teams, Row{
			f.TeamKey, f.MatchKey, f.DateKey, f.CompetitionKey, f.IsHome,
			f.Goals, f.XG, f.Shots, f.ShotsOnTarget, f.Passes, f.PassesAccurate, f.PassAccuracy,
			f.Possession, f.Duels, f.DuelsWon,
		})
	}
	out[FactTeamMatch.Name] = teams

	return out
}

// DecodeDimensions is the inverse of DimensionRows for rows holding the encoded Go types.
func DecodeDimensions(rows map[string][]Row) (dimension.Tables, error) {
	var out dimension.Tables

	for i, row := range rows[DimDate.Name] {
		date, ok := row[1].(time.Time)
		if !ok {
			return dimension.Tables{}, fmt.Errorf("%s row %d: calendar_date is %T", DimDate.Name, i, row[1])
		}
		out.Dates = append(out.Dates, dimension.NewDateRow(date))
	}
	for i, row := range rows[DimTeam.Name] {
		key, name, aliases, err := decodeNamed(row)
		if err != nil {
			return dimension.Tables{}, fmt.Errorf("%s row %d: %w", DimTeam.Name, i, err)
		}
		out.Teams = append(out.Teams, dimension.TeamRow{TeamKey: key, Name: name, Aliases: aliases})
	}
	for i, row := range rows[DimPlayer.Name] {
		key, name, aliases, err := decodeNamed(row)
		if err != nil {
			return dimension.Tables{}, fmt.Errorf("%s row %d: %w", DimPlayer.Name, i, err)
		}
		out.Players = append(out.Players, dimension.PlayerRow{PlayerKey: key, Name: name, Aliases: aliases})
	}
	for i, row := range rows[DimCompetition.Name] {
		key, okKey := row[0].(int64)
		name, okName := row[1].(string)
		season, okSeason := row[2].(string)
		if !okKey || !okName || !okSeason {
			return dimension.Tables{}, fmt.Errorf("%s row %d: unexpected value types", DimCompetition.Name, i)
		}
		out.Competitions = append(out.Competitions, dimension.CompetitionRow{CompetitionKey: key, Name: name, Season: season})
	}
	for i, row := range rows[DimMatch.Name] {
		m := dimension.MatchRow{}
		var ok [6]bool
		m.MatchKey, ok[0] = row[0].(int64)
		m.HomeTeamKey, ok[1] = row[1].(int64)
		m.AwayTeamKey, ok[2] = row[2].(int64)
		m.DateKey, ok[3] = row[3].(int)
		m.CompetitionKey, ok[4] = row[4].(int64)
		m.Label, ok[5] = row[5].(string)
		for _, fine := range ok {
			if !fine {
				return dimension.Tables{}, fmt.Errorf("%s row %d: unexpected value types", DimMatch.Name, i)
			}
		}
		m.HomeScore, _ = row[6].(*int)
		m.AwayScore, _ = row[7].(*int)
		out.Matches = append(out.Matches, m)
	}

	return out, nil
}

func decodeNamed(row Row) (int64, string, []string, error) {
	key, okKey := row[0].(int64)
	name, okName := row[1].(string)
	aliases, okAliases := row[2].([]string)
	if !okKey || !okName || !okAliases {
		return 0, "", nil, fmt.Errorf("unexpected value types %T, %T, %T", row[0], row[1], row[2])
	}
	return key, name, append([]string(nil), aliases...), nil
}
