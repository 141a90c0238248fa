package standing

import "testing"

func TestNew_TotalsComponents(t *testing.T) {
	s := New(20, 3, 2, 4)
	if s.Total != 29 || s.Draft() != 23 {
		t.Fatalf("unexpected standing: %+v", s)
	}
}

func TestSortRows(t *testing.T) {
	rows := []Row{
		{UserID: 1, Username: "max", Total: 10},
		{UserID: 2, Username: "Zed", Total: 30},
		{UserID: 3, Username: "alex", Total: 10},
		{UserID: 4, Username: "Alex", Total: 10},
	}
	SortRows(rows)

	wantOrder := []int64{2, 4, 3, 1}
	wantRank := []int{1, 2, 3, 4}
	for i := range rows {
		if rows[i].UserID != wantOrder[i] || rows[i].Rank != wantRank[i] {
			t.Fatalf("row %d: got user=%d rank=%d, want user=%d rank=%d", i, rows[i].UserID, rows[i].Rank, wantOrder[i], wantRank[i])
		}
	}
}

func TestParseFilter(t *testing.T) {
	for _, v := range []string{"", "all", "ALL"} {
		f, err := ParseFilter(v)
		if err != nil || !f.All {
			t.Fatalf("expected all filter for %q, got %+v %v", v, f, err)
		}
	}

	f, err := ParseFilter("1717171717171")
	if err != nil || f.All || f.RaceID != 1717171717171 {
		t.Fatalf("unexpected race filter: %+v %v", f, err)
	}

	if _, err := ParseFilter("-3"); err == nil {
		t.Fatalf("expected error for negative race id")
	}
}

func TestBook_RemoveUser(t *testing.T) {
	b := Book{}
	b.ReplaceRace(1, map[int64]Standing{10: New(1, 1, 0, 0), 11: New(2, 0, 0, 0)})
	b.RemoveUser(10)
	if _, ok := b[1][10]; ok {
		t.Fatalf("expected user standings removed")
	}
	if _, ok := b[1][11]; !ok {
		t.Fatalf("other user standings must remain")
	}
}
