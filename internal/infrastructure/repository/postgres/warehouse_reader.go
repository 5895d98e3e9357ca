package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
	qb "github.com/riskibarqy/sports-warehouse/internal/platform/querybuilder"
	"github.com/riskibarqy/sports-warehouse/internal/platform/resilience"
)

// WarehouseReader reads committed dimension rows back for key seeding.
type WarehouseReader struct {
	db     *sqlx.DB
	flight resilience.SingleFlight
}

func NewWarehouseReader(db *sqlx.DB) *WarehouseReader {
	return &WarehouseReader{db: db}
}

// LoadDimensions returns every committed dimension row. Concurrent callers share one read.
func (r *WarehouseReader) LoadDimensions(ctx context.Context) (dimension.Tables, error) {
	out, err, _ := r.flight.Do("dimensions", func() (any, error) {
		return r.loadDimensions(ctx)
	})
	if err != nil {
		return dimension.Tables{}, err
	}
	tables, ok := out.(dimension.Tables)
	if !ok {
		return dimension.Tables{}, fmt.Errorf("unexpected dimension payload type %T", out)
	}
	return tables, nil
}

func (r *WarehouseReader) loadDimensions(ctx context.Context) (dimension.Tables, error) {
	var out dimension.Tables

	dates, err := r.listDates(ctx)
	if err != nil {
		return dimension.Tables{}, err
	}
	out.Dates = dates

	teams, err := r.listNamed(ctx, warehouse.DimTeam, "team_key", "team_name")
	if err != nil {
		return dimension.Tables{}, err
	}
	for _, row := range teams {
		out.Teams = append(out.Teams, dimension.TeamRow{TeamKey: row.Key, Name: row.Name, Aliases: []string(row.Aliases)})
	}

	players, err := r.listNamed(ctx, warehouse.DimPlayer, "player_key", "player_name")
	if err != nil {
		return dimension.Tables{}, err
	}
	for _, row := range players {
		out.Players = append(out.Players, dimension.PlayerRow{PlayerKey: row.Key, Name: row.Name, Aliases: []string(row.Aliases)})
	}

	competitions, err := r.listCompetitions(ctx)
	if err != nil {
		return dimension.Tables{}, err
	}
	out.Competitions = competitions

	matches, err := r.listMatches(ctx)
	if err != nil {
		return dimension.Tables{}, err
	}
	out.Matches = matches

	return out, nil
}

func (r *WarehouseReader) listDates(ctx context.Context) ([]dimension.DateRow, error) {
	query, args, err := qb.Select("date_key", "calendar_date").
		From(warehouse.DimDate.Name).
		OrderBy("date_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list dates query: %w", err)
	}

	var rows []dateTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list dates: %v", warehouse.ErrUnavailable, err)
	}

	out := make([]dimension.DateRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, dimension.NewDateRow(row.CalendarDate))
	}
	return out, nil
}

func (r *WarehouseReader) listNamed(ctx context.Context, table warehouse.Table, keyColumn, nameColumn string) ([]namedTableModel, error) {
	query, args, err := qb.Select(
		keyColumn+" AS entity_key",
		nameColumn+" AS entity_name",
		"COALESCE(aliases, '{}') AS aliases",
	).From(table.Name).
		OrderBy(keyColumn).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list %s query: %w", table.Name, err)
	}

	var rows []namedTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", warehouse.ErrUnavailable, table.Name, err)
	}
	return rows, nil
}

func (r *WarehouseReader) listCompetitions(ctx context.Context) ([]dimension.CompetitionRow, error) {
	query, args, err := qb.Select("competition_key", "competition_name", "season").
		From(warehouse.DimCompetition.Name).
		OrderBy("competition_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list competitions query: %w", err)
	}

	var rows []competitionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list competitions: %v", warehouse.ErrUnavailable, err)
	}

	out := make([]dimension.CompetitionRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, dimension.CompetitionRow{
			CompetitionKey: row.CompetitionKey,
			Name:           row.CompetitionName,
			Season:         row.Season,
		})
	}
	return out, nil
}

func (r *WarehouseReader) listMatches(ctx context.Context) ([]dimension.MatchRow, error) {
	query, args, err := qb.Select(
		"match_key",
		"home_team_key",
		"away_team_key",
		"date_key",
		"competition_key",
		"match_label",
		"home_score",
		"away_score",
	).From(warehouse.DimMatch.Name).
		OrderBy("match_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list matches: %v", warehouse.ErrUnavailable, err)
	}

	out := make([]dimension.MatchRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, dimension.MatchRow{
			MatchKey:       row.MatchKey,
			HomeTeamKey:    row.HomeTeamKey,
			AwayTeamKey:    row.AwayTeamKey,
			DateKey:        row.DateKey,
			CompetitionKey: row.CompetitionKey,
			Label:          row.MatchLabel.String,
			HomeScore:      nullInt(row.HomeScore),
			AwayScore:      nullInt(row.AwayScore),
		})
	}
	return out, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}
