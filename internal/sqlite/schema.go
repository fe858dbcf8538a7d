package sqlite

import (
	"context"
	"database/sql"
)

// Schema DDL. date is TEXT so YYYY-MM-DD values come back unchanged.
const (
	createUsers = `CREATE TABLE IF NOT EXISTS Users (
    user_id INTEGER PRIMARY KEY,
    username TEXT,
    email TEXT
);`

	createActivities = `CREATE TABLE IF NOT EXISTS Activities (
    activity_id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER,
    game TEXT,
    score INTEGER,
    date TEXT,
    FOREIGN KEY (user_id) REFERENCES Users(user_id)
);`
)

// Index DDL for the lookups the mutation service and filter query do.
const (
	idxUsersUsername  = `CREATE INDEX IF NOT EXISTS idx_users_username ON Users(username);`
	idxActivitiesUser = `CREATE INDEX IF NOT EXISTS idx_activities_user ON Activities(user_id);`
	enableForeignKeys = `PRAGMA foreign_keys = ON;`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createUsers,
	createActivities,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxUsersUsername,
	idxActivitiesUser,
}

// applySchema turns on foreign key enforcement for the connection and
// creates any missing tables and indexes.
func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, enableForeignKeys); err != nil {
		return err
	}
	for _, stmt := range schemaDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
