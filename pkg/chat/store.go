package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// HistoryStore persists chat sessions in a local sqlite database so the
// terminal client keeps its conversations across invocations (the web
// front-end used browser storage for the same purpose).
type HistoryStore struct {
	db *sqlx.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	session_id TEXT    NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	role       TEXT    NOT NULL,
	content    TEXT    NOT NULL,
	citations  TEXT,
	PRIMARY KEY (session_id, position)
);
`

// OpenHistory opens (creating if needed) the history database at path.
// Use ":memory:" for an ephemeral store.
func OpenHistory(path string) (*HistoryStore, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, errorRegistry.WrapWith(ErrHistory, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errorRegistry.WrapWith(ErrHistory, err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, errorRegistry.WrapWith(ErrHistory, err)
	}
	return &HistoryStore{db: db}, nil
}

// Close releases the database handle.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

type sessionRow struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

type messageRow struct {
	SessionID string         `db:"session_id"`
	Position  int            `db:"position"`
	Role      string         `db:"role"`
	Content   string         `db:"content"`
	Citations sql.NullString `db:"citations"`
}

// Save upserts a session and replaces its messages.
func (s *HistoryStore) Save(ctx context.Context, session *Session) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errorRegistry.WrapWith(ErrHistory, err)
	}
	defer tx.Rollback()

	row := sessionRow{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt.UnixMilli(),
		UpdatedAt: session.UpdatedAt.UnixMilli(),
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (:id, :title, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET title = :title, updated_at = :updated_at`,
		row)
	if err != nil {
		return errorRegistry.WrapWith(ErrHistory, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", session.ID); err != nil {
		return errorRegistry.WrapWith(ErrHistory, err)
	}

	for i, msg := range session.Messages {
		mr := messageRow{
			SessionID: session.ID,
			Position:  i,
			Role:      msg.Role,
			Content:   msg.Content,
		}
		if len(msg.Citations) > 0 {
			encoded, err := json.Marshal(msg.Citations)
			if err != nil {
				return errorRegistry.WrapWith(ErrHistory, err)
			}
			mr.Citations = sql.NullString{String: string(encoded), Valid: true}
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO messages (session_id, position, role, content, citations)
			VALUES (:session_id, :position, :role, :content, :citations)`,
			mr)
		if err != nil {
			return errorRegistry.WrapWith(ErrHistory, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errorRegistry.WrapWith(ErrHistory, err)
	}
	return nil
}

// Load fetches one session with its messages.
func (s *HistoryStore) Load(ctx context.Context, id string) (*Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, "SELECT id, title, created_at, updated_at FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorRegistry.New(ErrSessionNotFound)
	}
	if err != nil {
		return nil, errorRegistry.WrapWith(ErrHistory, err)
	}

	var msgRows []messageRow
	err = s.db.SelectContext(ctx, &msgRows,
		"SELECT session_id, position, role, content, citations FROM messages WHERE session_id = ? ORDER BY position", id)
	if err != nil {
		return nil, errorRegistry.WrapWith(ErrHistory, err)
	}

	session := &Session{
		ID:        row.ID,
		Title:     row.Title,
		CreatedAt: time.UnixMilli(row.CreatedAt),
		UpdatedAt: time.UnixMilli(row.UpdatedAt),
		Messages:  make([]*Message, 0, len(msgRows)),
	}
	for _, mr := range msgRows {
		msg := &Message{Role: mr.Role, Content: mr.Content}
		if mr.Citations.Valid {
			if err := json.Unmarshal([]byte(mr.Citations.String), &msg.Citations); err != nil {
				return nil, errorRegistry.WrapWith(ErrHistory, err)
			}
		}
		session.Messages = append(session.Messages, msg)
	}
	return session, nil
}

// List returns all sessions, newest first, without their messages.
func (s *HistoryStore) List(ctx context.Context) ([]*Session, error) {
	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, title, created_at, updated_at FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, errorRegistry.WrapWith(ErrHistory, err)
	}

	sessions := make([]*Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, &Session{
			ID:        row.ID,
			Title:     row.Title,
			CreatedAt: time.UnixMilli(row.CreatedAt),
			UpdatedAt: time.UnixMilli(row.UpdatedAt),
		})
	}
	return sessions, nil
}

// Delete removes a session and its messages.
func (s *HistoryStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return errorRegistry.WrapWith(ErrHistory, err)
	}
	return nil
}
