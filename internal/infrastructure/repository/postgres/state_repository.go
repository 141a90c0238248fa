package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	qb "github.com/riskibarqy/f1-draft/internal/platform/querybuilder"
)

// StateRepository stores the league snapshot as one JSONB row and keeps a
// flat race_standings projection in sync for reporting queries.
type StateRepository struct {
	db  *sqlx.DB
	key string
}

func NewStateRepository(db *sqlx.DB, leagueKey string) *StateRepository {
	if leagueKey == "" {
		leagueKey = DefaultLeagueKey
	}
	return &StateRepository{db: db, key: leagueKey}
}

func (r *StateRepository) Load(ctx context.Context) (state.Snapshot, bool, error) {
	query, args, err := qb.Select("payload").From("league_snapshots").
		Where(qb.Eq("league_key", r.key)).
		Limit(1).
		ToSQL()
	if err != nil {
		return state.Snapshot{}, false, fmt.Errorf("build get league snapshot query: %w", err)
	}

	var payload []byte
	if err := r.db.GetContext(ctx, &payload, query, args...); err != nil {
		if isNotFound(err) {
			return state.Snapshot{}, false, nil
		}
		return state.Snapshot{}, false, unavailable(fmt.Errorf("get league snapshot key=%s: %w", r.key, err))
	}

	snapshot, err := state.Decode(payload)
	if err != nil {
		return state.Snapshot{}, false, fmt.Errorf("decode league snapshot key=%s: %w", r.key, err)
	}
	return snapshot, true, nil
}

func (r *StateRepository) Save(ctx context.Context, snapshot state.Snapshot) error {
	payload, err := state.Encode(snapshot)
	if err != nil {
		return fmt.Errorf("encode league snapshot: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable(fmt.Errorf("begin tx save league snapshot: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.writeSnapshot(ctx, tx, snapshotModel{
		LeagueKey: r.key,
		Payload:   string(payload),
		Version:   snapshot.Version,
		UpdatedAt: snapshot.UpdatedAt,
	}); err != nil {
		return err
	}

	if err := r.replaceStandings(ctx, tx, snapshot); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return unavailable(fmt.Errorf("commit save league snapshot tx: %w", err))
	}
	return nil
}

// writeSnapshot updates the existing row and inserts it on the first save.
// The insert still upserts in case another writer created the row first.
func (r *StateRepository) writeSnapshot(ctx context.Context, tx *sqlx.Tx, model snapshotModel) error {
	updateQuery, updateArgs, err := qb.UpdateModel("league_snapshots", model, qb.Eq("league_key", model.LeagueKey))
	if err != nil {
		return fmt.Errorf("build update league snapshot query: %w", err)
	}
	res, err := tx.ExecContext(ctx, updateQuery, updateArgs...)
	if err != nil {
		return fmt.Errorf("update league snapshot key=%s: %w", model.LeagueKey, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	insertQuery, insertArgs, err := qb.InsertModel("league_snapshots", model, `ON CONFLICT (league_key)
DO UPDATE SET
    payload = EXCLUDED.payload,
    version = EXCLUDED.version,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build insert league snapshot query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("insert league snapshot key=%s: %w", model.LeagueKey, err)
	}
	return nil
}

func (r *StateRepository) replaceStandings(ctx context.Context, tx *sqlx.Tx, snapshot state.Snapshot) error {
	clearQuery, clearArgs, err := qb.DeleteFrom("race_standings").
		Where(qb.Eq("league_key", r.key)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear race standings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear race standings: %w", err)
	}

	insert := qb.InsertInto("race_standings").Columns(raceStandingColumns...)
	rows := 0
	for _, raceID := range snapshot.Standings.RaceIDs() {
		byUser := snapshot.Standings[raceID]
		for _, u := range snapshot.Users {
			row, ok := byUser[u.ID]
			if !ok {
				continue
			}
			insert.Values(r.key, raceID, u.ID, u.Username,
				row.Grojean, row.Chilton, row.PoleBonus, row.Top5Bonus, row.Total)
			rows++
		}
	}
	if rows == 0 {
		return nil
	}

	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert race standings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert race standings rows=%d: %w", rows, err)
	}
	return nil
}
