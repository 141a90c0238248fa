package postgres

import "time"

type snapshotModel struct {
	LeagueKey string    `db:"league_key"`
	Payload   string    `db:"payload"`
	Version   int64     `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}

var raceStandingColumns = []string{
	"league_key",
	"race_id",
	"user_id",
	"username",
	"grojean_points",
	"chilton_points",
	"pole_bonus",
	"top5_bonus",
	"total",
}
