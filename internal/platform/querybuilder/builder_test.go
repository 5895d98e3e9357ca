package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("competition_key", "competition_name", "season").
		From("dim_competition").
		OrderBy("competition_key").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT competition_key, competition_name, season FROM dim_competition ORDER BY competition_key"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := Select("date_key").ToSQL(); err == nil {
		t.Fatalf("expected error without table")
	}
}

func TestInsertBuilderOnConflict(t *testing.T) {
	query, args, err := InsertInto("dim_team").
		Columns("team_key", "team_name", "aliases").
		Values(int64(1), "arsenal", "{Arsenal}").
		Values(int64(2), "chelsea", "{Chelsea FC}").
		OnConflict("team_name").
		DoUpdate("aliases").
		ToSQL()
	if err != nil {
		t.Fatalf("build upsert query: %v", err)
	}

	wantQuery := "INSERT INTO dim_team (team_key, team_name, aliases) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (team_name) DO UPDATE SET aliases = EXCLUDED.aliases"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || args[3] != int64(2) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderOnConflictDoNothing(t *testing.T) {
	query, _, err := InsertInto("dim_date").
		Columns("date_key").
		Values(20240305).
		OnConflict("date_key").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO dim_date (date_key) VALUES ($1) ON CONFLICT (date_key) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
}

func TestInsertBuilderRowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("dim_team").
		Columns("team_key", "team_name").
		Values(int64(1)).
		ToSQL()
	if err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestInsertBuilderParameterLimit(t *testing.T) {
	if got := RowsPerStatement(27); got != 2427 {
		t.Fatalf("unexpected rows per statement: %d", got)
	}

	builder := InsertInto("fact_player_stats").Columns("player_key", "match_key", "goals")
	for i := 0; i < RowsPerStatement(3)+1; i++ {
		builder.Values(int64(i), int64(1), 0.0)
	}
	if _, _, err := builder.ToSQL(); err == nil {
		t.Fatalf("expected parameter limit error")
	}
}
