package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/sports-warehouse/internal/platform/resilience"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func teamRows(n int) []warehouse.Row {
	names := []string{"arsenal", "chelsea", "liverpool", "everton"}
	rows := make([]warehouse.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, warehouse.Row{int64(i + 1), names[i], []string{names[i]}})
	}
	return rows
}

func TestWarehouseSinkUpsertBatches(t *testing.T) {
	db, mock := newMockDB(t)
	sink := NewWarehouseSink(db, WarehouseSinkConfig{BatchSize: 2}, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO dim_team (team_key, team_name, aliases) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (team_name) DO UPDATE SET aliases = EXCLUDED.aliases").
		WithArgs(int64(1), "arsenal", `{"arsenal"}`, int64(2), "chelsea", `{"chelsea"}`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO dim_team (team_key, team_name, aliases) VALUES ($1, $2, $3) ON CONFLICT (team_name) DO UPDATE SET aliases = EXCLUDED.aliases").
		WithArgs(int64(3), "liverpool", `{"liverpool"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := sink.Upsert(context.Background(), warehouse.DimTeam, teamRows(3)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWarehouseSinkNullMetrics(t *testing.T) {
	db, mock := newMockDB(t)
	sink := NewWarehouseSink(db, WarehouseSinkConfig{}, nil)

	distance := 10450.0
	row := warehouse.Row{
		int64(7), 20240305, "training", int64(1), (*int64)(nil),
		(*float64)(nil), &distance, (*float64)(nil), (*float64)(nil), (*float64)(nil),
		(*float64)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO fact_player_gps (player_key, date_key, session_type, team_key, match_key, duration_min, total_distance_m, hsr_distance_m, sprint_distance_m, max_speed_kmh, accelerations, decelerations, player_load, meters_per_min, hsr_share) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) ON CONFLICT (player_key, date_key, session_type) DO UPDATE SET team_key = EXCLUDED.team_key, match_key = EXCLUDED.match_key, duration_min = EXCLUDED.duration_min, total_distance_m = EXCLUDED.total_distance_m, hsr_distance_m = EXCLUDED.hsr_distance_m, sprint_distance_m = EXCLUDED.sprint_distance_m, max_speed_kmh = EXCLUDED.max_speed_kmh, accelerations = EXCLUDED.accelerations, decelerations = EXCLUDED.decelerations, player_load = EXCLUDED.player_load, meters_per_min = EXCLUDED.meters_per_min, hsr_share = EXCLUDED.hsr_share").
		WithArgs(int64(7), int64(20240305), "training", int64(1), nil, nil, 10450.0, nil, nil, nil, nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := sink.Upsert(context.Background(), warehouse.FactPlayerGPS, []warehouse.Row{row}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWarehouseSinkBatchFailure(t *testing.T) {
	db, mock := newMockDB(t)
	sink := NewWarehouseSink(db, WarehouseSinkConfig{BatchSize: 2}, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO dim_team (team_key, team_name, aliases) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (team_name) DO UPDATE SET aliases = EXCLUDED.aliases").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO dim_team (team_key, team_name, aliases) VALUES ($1, $2, $3) ON CONFLICT (team_name) DO UPDATE SET aliases = EXCLUDED.aliases").
		WillReturnError(errors.New("pq: duplicate key value violates unique constraint \"dim_team_pkey\""))
	mock.ExpectRollback()

	err := sink.Upsert(context.Background(), warehouse.DimTeam, teamRows(3))
	var batchErr *warehouse.BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected batch error, got %v", err)
	}
	if batchErr.Table != "dim_team" || batchErr.Batch != 1 || batchErr.Rows != 1 {
		t.Fatalf("unexpected batch error: %+v", batchErr)
	}
	if errors.Is(err, warehouse.ErrUnavailable) {
		t.Fatalf("row-level failure must not be reported as unavailable")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWarehouseSinkEmptyRowsSkipDatabase(t *testing.T) {
	db, mock := newMockDB(t)
	sink := NewWarehouseSink(db, WarehouseSinkConfig{}, nil)

	if err := sink.Upsert(context.Background(), warehouse.DimTeam, nil); err != nil {
		t.Fatalf("upsert empty: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database calls: %v", err)
	}
}

func TestWarehouseSinkRejectsMalformedRows(t *testing.T) {
	db, _ := newMockDB(t)
	sink := NewWarehouseSink(db, WarehouseSinkConfig{}, nil)

	err := sink.Upsert(context.Background(), warehouse.DimTeam, []warehouse.Row{{int64(1), "arsenal"}})
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestWarehouseSinkCircuitOpensOnConnectionFailure(t *testing.T) {
	db, mock := newMockDB(t)
	sink := NewWarehouseSink(db, WarehouseSinkConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, nil)

	mock.ExpectBegin().WillReturnError(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"))

	err := sink.Upsert(context.Background(), warehouse.DimTeam, teamRows(1))
	if !errors.Is(err, warehouse.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}

	err = sink.Upsert(context.Background(), warehouse.DimTeam, teamRows(1))
	if !errors.Is(err, warehouse.ErrUnavailable) {
		t.Fatalf("expected circuit rejection, got %v", err)
	}
	if got := sink.breaker.State(); got != resilience.CircuitStateOpen {
		t.Fatalf("expected open circuit, got %s", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
