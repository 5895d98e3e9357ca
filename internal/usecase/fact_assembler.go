package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
	"github.com/riskibarqy/sports-warehouse/internal/domain/fact"
	"github.com/riskibarqy/sports-warehouse/internal/domain/feed"
	"github.com/riskibarqy/sports-warehouse/internal/domain/rejection"
	"github.com/riskibarqy/sports-warehouse/internal/platform/logging"
)

type FactAssemblerConfig struct {
	DistanceUnit fact.DistanceUnit
	SpeedUnit    fact.SpeedUnit
	NullDefaults fact.NullDefaults
}

func DefaultFactAssemblerConfig() FactAssemblerConfig {
	return FactAssemblerConfig{
		DistanceUnit: fact.Meters,
		SpeedUnit:    fact.KilometersPerHour,
	}
}

type AssembleResult struct {
	Facts        fact.Tables
	Rejections   []rejection.Record
	Deduplicated int
}

// FactAssembler turns resolved records into fact rows. It only reads dimension tables.
type FactAssembler struct {
	cfg    FactAssemblerConfig
	logger *logging.Logger
}

func NewFactAssembler(cfg FactAssemblerConfig, logger *logging.Logger) *FactAssembler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DistanceUnit == "" {
		cfg.DistanceUnit = fact.Meters
	}
	if cfg.SpeedUnit == "" {
		cfg.SpeedUnit = fact.KilometersPerHour
	}
	return &FactAssembler{cfg: cfg, logger: logger}
}

type dimensionIndex struct {
	dates        map[int]struct{}
	teams        map[int64]struct{}
	players      map[int64]struct{}
	competitions map[int64]struct{}
	matches      map[int64]dimension.MatchRow
}

func newDimensionIndex(tables dimension.Tables) dimensionIndex {
	idx := dimensionIndex{
		dates:        make(map[int]struct{}, len(tables.Dates)),
		teams:        make(map[int64]struct{}, len(tables.Teams)),
		players:      make(map[int64]struct{}, len(tables.Players)),
		competitions: make(map[int64]struct{}, len(tables.Competitions)),
		matches:      make(map[int64]dimension.MatchRow, len(tables.Matches)),
	}
	for _, row := range tables.Dates {
		idx.dates[row.DateKey] = struct{}{}
	}
	for _, row := range tables.Teams {
		idx.teams[row.TeamKey] = struct{}{}
	}
	for _, row := range tables.Players {
		idx.players[row.PlayerKey] = struct{}{}
	}
	for _, row := range tables.Competitions {
		idx.competitions[row.CompetitionKey] = struct{}{}
	}
	for _, row := range tables.Matches {
		idx.matches[row.MatchKey] = row
	}
	return idx
}

// Assemble builds fact rows for every resolved record. Rows whose keys are missing from the
// dimension tables are rejected as referential gaps. A repeated natural key keeps the last row.
func (a *FactAssembler) Assemble(ctx context.Context, resolved []ResolvedRecord, tables dimension.Tables) AssembleResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.FactAssembler.Assemble")
	defer span.End()

	idx := newDimensionIndex(tables)
	var result AssembleResult

	gpsIndex := make(map[fact.PlayerGPSKey]int)
	statsIndex := make(map[fact.PlayerStatsKey]int)
	teamIndex := make(map[fact.TeamMatchKey]int)

	for _, r := range resolved {
		switch row := r.Record.Row.(type) {
		case *feed.GPSRow:
			f, gap := a.playerGPS(r, row, idx)
			if gap != "" {
				result.Rejections = append(result.Rejections, rejectRecord(r.Record, rejection.ReasonReferentialGap, "", gap))
				continue
			}
			result.Facts.PlayerGPS, result.Deduplicated = upsertFact(result.Facts.PlayerGPS, gpsIndex, f.NaturalKey(), f, result.Deduplicated)
		case *feed.OutfieldRow:
			f, gap := a.outfieldStats(r, row, idx)
			if gap != "" {
				result.Rejections = append(result.Rejections, rejectRecord(r.Record, rejection.ReasonReferentialGap, "", gap))
				continue
			}
			result.Facts.PlayerStats, result.Deduplicated = upsertFact(result.Facts.PlayerStats, statsIndex, f.NaturalKey(), f, result.Deduplicated)
		case *feed.GoalkeeperRow:
			f, gap := a.goalkeeperStats(r, row, idx)
			if gap != "" {
				result.Rejections = append(result.Rejections, rejectRecord(r.Record, rejection.ReasonReferentialGap, "", gap))
				continue
			}
			result.Facts.PlayerStats, result.Deduplicated = upsertFact(result.Facts.PlayerStats, statsIndex, f.NaturalKey(), f, result.Deduplicated)
		case *feed.MatchInfoRow:
			f, gap := a.teamMatch(r, row, idx)
			if gap != "" {
				result.Rejections = append(result.Rejections, rejectRecord(r.Record, rejection.ReasonReferentialGap, "", gap))
				continue
			}
			result.Facts.TeamMatch, result.Deduplicated = upsertFact(result.Facts.TeamMatch, teamIndex, f.NaturalKey(), f, result.Deduplicated)
		default:
			result.Rejections = append(result.Rejections, rejectRecord(r.Record, rejection.ReasonMissingField, "",
				fmt.Sprintf("unsupported row type %T", r.Record.Row)))
		}
	}

	a.logger.InfoContext(ctx, "facts assembled",
		"player_gps", len(result.Facts.PlayerGPS),
		"player_stats", len(result.Facts.PlayerStats),
		"team_match", len(result.Facts.TeamMatch),
		"rejected", len(result.Rejections),
		"deduplicated", result.Deduplicated,
	)
	return result
}

func upsertFact[K comparable, F any](rows []F, index map[K]int, key K, row F, deduplicated int) ([]F, int) {
	if pos, ok := index[key]; ok {
		rows[pos] = row
		return rows, deduplicated + 1
	}
	index[key] = len(rows)
	return append(rows, row), deduplicated
}

// checkCommon returns a description of the first missing date, team or player key.
func (idx dimensionIndex) checkCommon(r ResolvedRecord, needPlayer bool) string {
	if _, ok := idx.dates[r.DateKey]; !ok {
		return fmt.Sprintf("date_key %d not in dim_date", r.DateKey)
	}
	if _, ok := idx.teams[r.TeamKey]; !ok {
		return fmt.Sprintf("team_key %d not in dim_team", r.TeamKey)
	}
	if needPlayer {
		if _, ok := idx.players[r.PlayerKey]; !ok {
			return fmt.Sprintf("player_key %d not in dim_player", r.PlayerKey)
		}
	}
	return ""
}

// checkMatch resolves the match of r and its competition, requiring the team to play in it.
func (idx dimensionIndex) checkMatch(r ResolvedRecord) (dimension.MatchRow, int64, string) {
	match, ok := idx.matches[r.MatchKey]
	if r.MatchKey == 0 || !ok {
		return dimension.MatchRow{}, 0, fmt.Sprintf("no match in dim_match for team_key %d on %d", r.TeamKey, r.DateKey)
	}
	if !match.HasTeam(r.TeamKey) {
		return dimension.MatchRow{}, 0, fmt.Sprintf("team_key %d does not play match_key %d", r.TeamKey, r.MatchKey)
	}
	competitionKey := r.CompetitionKey
	if competitionKey == 0 {
		competitionKey = match.CompetitionKey
	}
	if _, ok := idx.competitions[competitionKey]; !ok {
		return dimension.MatchRow{}, 0, fmt.Sprintf("competition_key %d not in dim_competition", competitionKey)
	}
	return match, competitionKey, ""
}

func (a *FactAssembler) playerGPS(r ResolvedRecord, row *feed.GPSRow, idx dimensionIndex) (fact.PlayerGPS, string) {
	if gap := idx.checkCommon(r, true); gap != "" {
		return fact.PlayerGPS{}, gap
	}

	f := fact.PlayerGPS{
		PlayerKey:   r.PlayerKey,
		TeamKey:     r.TeamKey,
		DateKey:     r.DateKey,
		SessionType: fact.SessionTraining,
	}
	// Session type follows the feed the row came from, never the row content.
	if r.Record.Kind == feed.KindGPSMatch {
		f.SessionType = fact.SessionMatch
		if _, _, gap := idx.checkMatch(r); gap != "" {
			return fact.PlayerGPS{}, gap
		}
		matchKey := r.MatchKey
		f.MatchKey = &matchKey
	}

	nulls := a.cfg.NullDefaults
	f.DurationMin = nulls.Apply("duration_min", row.DurationMin)
	f.TotalDistanceM = nulls.Apply("total_distance_m", a.cfg.DistanceUnit.ToMeters(row.TotalDistance))
	f.HSRDistanceM = nulls.Apply("hsr_distance_m", a.cfg.DistanceUnit.ToMeters(row.HSRDistance))
	f.SprintDistanceM = nulls.Apply("sprint_distance_m", a.cfg.DistanceUnit.ToMeters(row.SprintDistance))
	f.MaxSpeedKmh = nulls.Apply("max_speed_kmh", a.cfg.SpeedUnit.ToKmh(row.MaxSpeed))
	f.Accelerations = nulls.Apply("accelerations", row.Accelerations)
	f.Decelerations = nulls.Apply("decelerations", row.Decelerations)
	f.PlayerLoad = nulls.Apply("player_load", row.PlayerLoad)

	f.MetersPerMin = fact.Ratio(f.TotalDistanceM, f.DurationMin)
	f.HSRShare = fact.Ratio(f.HSRDistanceM, f.TotalDistanceM)
	return f, ""
}

func (a *FactAssembler) outfieldStats(r ResolvedRecord, row *feed.OutfieldRow, idx dimensionIndex) (fact.PlayerStats, string) {
	if gap := idx.checkCommon(r, true); gap != "" {
		return fact.PlayerStats{}, gap
	}
	_, competitionKey, gap := idx.checkMatch(r)
	if gap != "" {
		return fact.PlayerStats{}, gap
	}

	nulls := a.cfg.NullDefaults
	f := fact.PlayerStats{
		PlayerKey:      r.PlayerKey,
		MatchKey:       r.MatchKey,
		TeamKey:        r.TeamKey,
		DateKey:        r.DateKey,
		CompetitionKey: competitionKey,
		PlayerType:     fact.PlayerOutfield,
		SessionType:    fact.SessionMatch,

		Minutes:        nulls.Apply("minutes", row.Minutes),
		Goals:          nulls.Apply("goals", row.Goals),
		Assists:        nulls.Apply("assists", row.Assists),
		XG:             nulls.Apply("xg", row.XG),
		Shots:          nulls.Apply("shots", row.Shots),
		Passes:         nulls.Apply("passes", row.Passes),
		PassesAccurate: nulls.Apply("passes_accurate", row.PassesAccurate),
		Duels:          nulls.Apply("duels", row.Duels),
		DuelsWon:       nulls.Apply("duels_won", row.DuelsWon),
		Interceptions:  nulls.Apply("interceptions", row.Interceptions),
		Tackles:        nulls.Apply("tackles", row.Tackles),
	}
	f.PassAccuracy = fact.Ratio(f.PassesAccurate, f.Passes)
	f.DuelSuccess = fact.Ratio(f.DuelsWon, f.Duels)
	return f, ""
}

func (a *FactAssembler) goalkeeperStats(r ResolvedRecord, row *feed.GoalkeeperRow, idx dimensionIndex) (fact.PlayerStats, string) {
	if gap := idx.checkCommon(r, true); gap != "" {
		return fact.PlayerStats{}, gap
	}
	_, competitionKey, gap := idx.checkMatch(r)
	if gap != "" {
		return fact.PlayerStats{}, gap
	}

	nulls := a.cfg.NullDefaults
	f := fact.PlayerStats{
		PlayerKey:      r.PlayerKey,
		MatchKey:       r.MatchKey,
		TeamKey:        r.TeamKey,
		DateKey:        r.DateKey,
		CompetitionKey: competitionKey,
		PlayerType:     fact.PlayerGoalkeeper,
		SessionType:    fact.SessionMatch,

		Minutes:        nulls.Apply("minutes", row.Minutes),
		Passes:         nulls.Apply("passes", row.Passes),
		PassesAccurate: nulls.Apply("passes_accurate", row.PassesAccurate),
		ShotsAgainst:   nulls.Apply("shots_against", row.ShotsAgainst),
		Saves:          nulls.Apply("saves", row.Saves),
		GoalsConceded:  nulls.Apply("goals_conceded", row.GoalsConceded),
		XGAgainst:      nulls.Apply("xg_against", row.XGAgainst),
		Exits:          nulls.Apply("exits", row.Exits),
	}
	f.PassAccuracy = fact.Ratio(f.PassesAccurate, f.Passes)
	f.SaveRate = fact.Ratio(f.Saves, f.ShotsAgainst)
	f.GoalsPrevented = fact.Difference(f.XGAgainst, f.GoalsConceded)
	return f, ""
}

func (a *FactAssembler) teamMatch(r ResolvedRecord, row *feed.MatchInfoRow, idx dimensionIndex) (fact.TeamMatch, string) {
	if gap := idx.checkCommon(r, false); gap != "" {
		return fact.TeamMatch{}, gap
	}
	match, competitionKey, gap := idx.checkMatch(r)
	if gap != "" {
		return fact.TeamMatch{}, gap
	}

	nulls := a.cfg.NullDefaults
	f := fact.TeamMatch{
		TeamKey:        r.TeamKey,
		MatchKey:       r.MatchKey,
		DateKey:        r.DateKey,
		CompetitionKey: competitionKey,
		IsHome:         match.HomeTeamKey == r.TeamKey,

		Goals:          nulls.Apply("goals", row.Goals),
		XG:             nulls.Apply("xg", row.XG),
		Shots:          nulls.Apply("shots", row.Shots),
		ShotsOnTarget:  nulls.Apply("shots_on_target", row.ShotsOnTarget),
		Passes:         nulls.Apply("passes", row.Passes),
		PassesAccurate: nulls.Apply("passes_accurate", row.PassesAccurate),
		Possession:     nulls.Apply("possession", row.Possession),
		Duels:          nulls.Apply("duels", row.Duels),
		DuelsWon:       nulls.Apply("duels_won", row.DuelsWon),
	}
	f.PassAccuracy = fact.Ratio(f.PassesAccurate, f.Passes)
	return f, ""
}
