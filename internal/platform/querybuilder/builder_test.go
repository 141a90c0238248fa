package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("payload").
		From("league_snapshots").
		Where(Eq("league_key", "default")).
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT payload FROM league_snapshots WHERE league_key = $1 LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "default" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("users").
		Columns("id", "name").
		Values("u1", "name-1").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO users (id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "u1" || args[1] != "name-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("users").
		Set("name", "new").
		Set("version", int64(2)).
		Where(Eq("id", "u1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE users SET name = $1, version = $2 WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "new" || args[2] != "u1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := Update("users").Set("name", "x").ToSQL(); err == nil {
		t.Fatalf("expected error for update without conditions")
	}
}

type snapshotRow struct {
	Key     string `db:"league_key"`
	Payload string `db:"payload"`
	Version int64  `db:"version,omitempty"`
	Skipped string `db:"-"`
	local   string
}

func TestModelBuilders(t *testing.T) {
	row := snapshotRow{Key: "default", Payload: "{}", Version: 3, Skipped: "x", local: "y"}

	query, args, err := InsertModel("league_snapshots", &row, "ON CONFLICT (league_key) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}
	wantQuery := "INSERT INTO league_snapshots (league_key, payload, version) VALUES ($1, $2, $3) ON CONFLICT (league_key) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}

	query, args, err = UpdateModel("league_snapshots", row, Eq("league_key", row.Key))
	if err != nil {
		t.Fatalf("build update model query: %v", err)
	}
	wantQuery = "UPDATE league_snapshots SET payload = $1, version = $2 WHERE league_key = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "{}" || args[1] != int64(3) || args[2] != "default" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModel("t", 42, ""); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("race_standings").
		Where(Eq("league_key", "default")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM race_standings WHERE league_key = $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "default" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("race_standings").ToSQL(); err == nil {
		t.Fatalf("expected error for delete without conditions")
	}
}

func TestInsertBuilder_MultipleRows(t *testing.T) {
	query, args, err := InsertInto("race_standings").
		Columns("race_id", "user_id").
		Values(int64(1), int64(10)).
		Values(int64(1), int64(11)).
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO race_standings (race_id, user_id) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
