// Package audit records invite activity in a SQLite log. The log is
// append-only and queried for channel history, so it lives in its own
// database rather than the main KV store.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Action identifies what an audit entry records.
type Action string

// Audit actions.
const (
	ActionMembersInvited Action = "members_invited"
	ActionInviteFailed   Action = "invite_failed"
)

// Entry is one audit log record.
type Entry struct {
	ID        string
	Action    Action
	ActorID   string
	ChannelID string
	TeamID    string
	UserIDs   []string
	Detail    string
	CreatedAt time.Time
}

// Log provides SQLite-backed audit persistence.
type Log struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates an audit log at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool to few writers (SQLite limitation).
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Log{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends an entry to the log. The entry's ID and CreatedAt are
// assigned here.
func (l *Log) Record(ctx context.Context, entry *Entry) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO invite_audit (id, action, actor_id, channel_id, team_id, user_ids, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		string(entry.Action),
		entry.ActorID,
		entry.ChannelID,
		entry.TeamID,
		joinIDs(entry.UserIDs),
		entry.Detail,
		entry.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	if l.logger != nil {
		l.logger.Debug("audit entry recorded",
			slog.String("action", string(entry.Action)),
			slog.String("channel_id", entry.ChannelID),
			slog.Int("user_count", len(entry.UserIDs)))
	}
	return nil
}

// ForChannel returns the most recent entries for a channel, newest first.
func (l *Log) ForChannel(ctx context.Context, channelID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, action, actor_id, channel_id, team_id, user_ids, detail, created_at
		FROM invite_audit
		WHERE channel_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var action, userIDs string
		var createdAt int64
		if err := rows.Scan(&entry.ID, &action, &entry.ActorID, &entry.ChannelID,
			&entry.TeamID, &userIDs, &entry.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Action = Action(action)
		entry.UserIDs = splitIDs(userIDs)
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
