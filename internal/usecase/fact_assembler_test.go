package usecase

import (
	"context"
	"math"
	"testing"

	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
	"github.com/riskibarqy/sports-warehouse/internal/domain/fact"
	"github.com/riskibarqy/sports-warehouse/internal/domain/feed"
	"github.com/riskibarqy/sports-warehouse/internal/domain/rejection"
)

func approx(got *float64, want float64) bool {
	return got != nil && math.Abs(*got-want) < 1e-9
}

func buildMatchDay(t *testing.T) BuildResult {
	t.Helper()

	result := NewDimensionBuilder(DefaultDimensionBuilderConfig(), nil).Build(context.Background(), matchDayRecords())
	if len(result.Rejections) != 0 {
		t.Fatalf("unexpected build rejections: %+v", result.Rejections)
	}
	return result
}

func TestFactAssembler_Assemble_MatchDay(t *testing.T) {
	t.Parallel()

	built := buildMatchDay(t)
	assembler := NewFactAssembler(FactAssemblerConfig{
		DistanceUnit: fact.Kilometers,
		SpeedUnit:    fact.MetersPerSecond,
	}, nil)

	result := assembler.Assemble(context.Background(), built.Resolved, built.Tables)
	if len(result.Rejections) != 0 {
		t.Fatalf("unexpected rejections: %+v", result.Rejections)
	}
	if len(result.Facts.PlayerGPS) != 2 || len(result.Facts.PlayerStats) != 2 || len(result.Facts.TeamMatch) != 2 {
		t.Fatalf("unexpected fact counts: gps=%d stats=%d team=%d",
			len(result.Facts.PlayerGPS), len(result.Facts.PlayerStats), len(result.Facts.TeamMatch))
	}
	matchKey := built.Tables.Matches[0].MatchKey

	matchSession, training := result.Facts.PlayerGPS[0], result.Facts.PlayerGPS[1]
	if matchSession.SessionType != fact.SessionMatch || matchSession.MatchKey == nil || *matchSession.MatchKey != matchKey {
		t.Fatalf("unexpected match session: %+v", matchSession)
	}
	if !approx(matchSession.TotalDistanceM, 10450) || !approx(matchSession.MaxSpeedKmh, 34.2) {
		t.Fatalf("units not converted: distance=%v speed=%v", matchSession.TotalDistanceM, matchSession.MaxSpeedKmh)
	}
	if !approx(matchSession.MetersPerMin, 110) || !approx(matchSession.HSRShare, 950.0/10450.0) {
		t.Fatalf("unexpected derived metrics: %+v", matchSession)
	}
	if matchSession.SprintDistanceM != nil || matchSession.PlayerLoad != nil {
		t.Fatalf("missing metrics must stay null")
	}
	if training.SessionType != fact.SessionTraining || training.MatchKey != nil || !approx(training.MetersPerMin, 100) {
		t.Fatalf("unexpected training session: %+v", training)
	}

	outfield, keeper := result.Facts.PlayerStats[0], result.Facts.PlayerStats[1]
	if outfield.PlayerType != fact.PlayerOutfield || outfield.MatchKey != matchKey {
		t.Fatalf("unexpected outfield row: %+v", outfield)
	}
	if !approx(outfield.PassAccuracy, 0.85) || !approx(outfield.DuelSuccess, 0.6) {
		t.Fatalf("unexpected outfield derived metrics: %+v", outfield)
	}
	if keeper.PlayerType != fact.PlayerGoalkeeper || !approx(keeper.SaveRate, 0.6) || !approx(keeper.GoalsPrevented, 0.4) {
		t.Fatalf("unexpected goalkeeper row: %+v", keeper)
	}
	if keeper.PassAccuracy != nil {
		t.Fatalf("pass accuracy without passes must stay null")
	}

	home, away := result.Facts.TeamMatch[0], result.Facts.TeamMatch[1]
	if !home.IsHome || away.IsHome {
		t.Fatalf("unexpected home flags: home=%+v away=%+v", home, away)
	}
	if !approx(home.PassAccuracy, 0.9) || away.PassAccuracy != nil {
		t.Fatalf("unexpected team pass accuracy: home=%v away=%v", home.PassAccuracy, away.PassAccuracy)
	}
}

func TestFactAssembler_Assemble_NullDefaults(t *testing.T) {
	t.Parallel()

	built := buildMatchDay(t)
	assembler := NewFactAssembler(FactAssemblerConfig{
		NullDefaults: fact.NullDefaults{"player_load": 0, "shots": 0},
	}, nil)

	result := assembler.Assemble(context.Background(), built.Resolved, built.Tables)
	for _, row := range result.Facts.PlayerGPS {
		if !approx(row.PlayerLoad, 0) {
			t.Fatalf("expected configured default for player_load, got %v", row.PlayerLoad)
		}
		if row.Accelerations != nil {
			t.Fatalf("metrics without a default must stay null")
		}
	}
	for _, row := range result.Facts.TeamMatch {
		if !approx(row.Shots, 0) {
			t.Fatalf("expected configured default for shots, got %v", row.Shots)
		}
	}
}

func TestFactAssembler_Assemble_ReferentialGaps(t *testing.T) {
	t.Parallel()

	built := buildMatchDay(t)

	tables := built.Tables
	tables.Matches = nil
	result := NewFactAssembler(DefaultFactAssemblerConfig(), nil).Assemble(context.Background(), built.Resolved, tables)

	// Only the training session survives without a match.
	if len(result.Facts.PlayerGPS) != 1 || result.Facts.PlayerGPS[0].SessionType != fact.SessionTraining {
		t.Fatalf("unexpected gps facts: %+v", result.Facts.PlayerGPS)
	}
	if len(result.Facts.PlayerStats) != 0 || len(result.Facts.TeamMatch) != 0 {
		t.Fatalf("facts without a match must be rejected")
	}
	counts := rejection.Count(result.Rejections)
	if counts[rejection.ReasonReferentialGap] != 5 {
		t.Fatalf("expected 5 referential gaps, got %+v", counts)
	}

	tables = built.Tables
	tables.Players = tables.Players[:1]
	result = NewFactAssembler(DefaultFactAssemblerConfig(), nil).Assemble(context.Background(), built.Resolved, tables)
	if len(result.Rejections) != 1 || result.Rejections[0].Feed != feed.KindPlayerGoalkeeper {
		t.Fatalf("expected the goalkeeper row to be rejected, got %+v", result.Rejections)
	}
}

func TestFactAssembler_Assemble_TeamOutsideMatch(t *testing.T) {
	t.Parallel()

	built := buildMatchDay(t)
	tables := built.Tables
	tables.Teams = append(tables.Teams, dimension.TeamRow{TeamKey: 99, Name: "tottenham"})

	resolved := append([]ResolvedRecord(nil), built.Resolved...)
	for i := range resolved {
		if resolved[i].Record.Kind == feed.KindPlayerOutfield {
			resolved[i].TeamKey = 99
		}
	}

	result := NewFactAssembler(DefaultFactAssemblerConfig(), nil).Assemble(context.Background(), resolved, tables)
	if len(result.Rejections) != 1 || result.Rejections[0].Reason != rejection.ReasonReferentialGap {
		t.Fatalf("expected one referential gap, got %+v", result.Rejections)
	}
}

func TestFactAssembler_Assemble_LastDuplicateWins(t *testing.T) {
	t.Parallel()

	first := feed.NewGPSRow(feed.KindGPSTraining)
	first.Player = "Bukayo Saka"
	first.Team = "Arsenal"
	first.Date = "2024-03-07"
	first.TotalDistance = f64(5000)

	second := feed.NewGPSRow(feed.KindGPSTraining)
	second.Player = "Bukayo Saka"
	second.Team = "Arsenal"
	second.Date = "07/03/2024"
	second.TotalDistance = f64(6200)

	built := NewDimensionBuilder(DefaultDimensionBuilderConfig(), nil).
		Build(context.Background(), feed.Rows(feed.KindGPSTraining, first, second))
	result := NewFactAssembler(DefaultFactAssemblerConfig(), nil).Assemble(context.Background(), built.Resolved, built.Tables)

	if len(result.Facts.PlayerGPS) != 1 || result.Deduplicated != 1 {
		t.Fatalf("expected one fact and one duplicate, got %d facts, %d duplicates", len(result.Facts.PlayerGPS), result.Deduplicated)
	}
	if !approx(result.Facts.PlayerGPS[0].TotalDistanceM, 6200) {
		t.Fatalf("expected the last row to win, got %v", result.Facts.PlayerGPS[0].TotalDistanceM)
	}
}
