package postgres

import (
	"database/sql"
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
)

const DefaultLeagueKey = "default"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// unavailable marks connection level failures so callers can fail over.
func unavailable(err error) error {
	return crerr.Mark(err, state.ErrUnavailable)
}
