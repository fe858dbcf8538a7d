package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

const (
	insertUserSQL     = `INSERT INTO Users (username, email) VALUES (?, ?)`
	lookupUserSQL     = `SELECT user_id FROM Users WHERE username = ? ORDER BY user_id LIMIT 1`
	insertActivitySQL = `INSERT INTO Activities (user_id, game, score, date) VALUES (?, ?, ?, ?)`
)

// AddUser inserts a user with a store-assigned id and returns that id.
// Both fields are required.
func (b *Backend) AddUser(ctx context.Context, username, email string) (int64, error) {
	if username == "" || email == "" {
		return 0, fmt.Errorf("%w: please enter both username and email", types.ErrValidation)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.handle()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx, insertUserSQL, username, email)
	if err != nil {
		return 0, fmt.Errorf("%w: adding user %s: %v", types.ErrStore, username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: reading new user id: %v", types.ErrStore, err)
	}

	b.log.Info().Int64("user_id", id).Str("username", username).Msg("user added")
	return id, nil
}

// AddActivity inserts an activity for the user with the given username and
// returns the new activity id. All fields are required. If no user has
// that name the call fails with ErrNotFound and nothing is inserted; when
// several users share the name the one with the lowest id is used.
//
// score and date are stored as given unless the backend was attached with
// StrictTypes, in which case score must be an integer and date YYYY-MM-DD.
func (b *Backend) AddActivity(ctx context.Context, username, game, score, date string) (int64, error) {
	if username == "" || game == "" || score == "" || date == "" {
		return 0, fmt.Errorf("%w: please fill out all fields to add an activity", types.ErrValidation)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.handle()
	if err != nil {
		return 0, err
	}

	var scoreArg any = score
	if b.config.StrictTypes {
		n, err := strconv.ParseInt(strings.TrimSpace(score), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: score %q is not an integer", types.ErrValidation, score)
		}
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(date)); err != nil {
			return 0, fmt.Errorf("%w: date %q is not YYYY-MM-DD", types.ErrValidation, date)
		}
		scoreArg = n
		date = strings.TrimSpace(date)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: beginning transaction: %v", types.ErrStore, err)
	}
	defer tx.Rollback()

	var userID int64
	err = tx.QueryRowContext(ctx, lookupUserSQL, username).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: user %s does not exist", types.ErrNotFound, username)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: looking up user %s: %v", types.ErrStore, username, err)
	}

	res, err := tx.ExecContext(ctx, insertActivitySQL, userID, game, scoreArg, date)
	if err != nil {
		return 0, fmt.Errorf("%w: adding activity: %v", types.ErrStore, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: reading new activity id: %v", types.ErrStore, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing activity: %v", types.ErrStore, err)
	}

	b.log.Info().Int64("activity_id", id).Int64("user_id", userID).Str("game", game).Msg("activity added")
	return id, nil
}
