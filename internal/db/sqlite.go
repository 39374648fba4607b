// Package db keeps the oracle-side conversation cache in SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/qninhdt/aethelgard/server/internal/oracle"
)

// DB wraps database operations
type DB struct {
	conn   *sql.DB
	window int
	mu     sync.RWMutex
}

// NewDB opens dbPath and keeps at most window messages per session. Use
// ":memory:" for a throwaway store.
func NewDB(dbPath string, window int) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, window: window}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs database migrations
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Replace discards any history for session and stores msgs.
func (db *DB) Replace(ctx context.Context, session string, msgs []oracle.Message) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", session); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET created_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
	`, session)
	if err != nil {
		return err
	}
	if err := insertMessages(ctx, tx, session, oracle.Window(msgs, db.window)); err != nil {
		return err
	}

	return tx.Commit()
}

// Append adds msgs and evicts the oldest pairs beyond the window.
func (db *DB) Append(ctx context.Context, session string, msgs ...oracle.Message) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE sessions SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", session)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", oracle.ErrNoSession, session)
	}
	if err := insertMessages(ctx, tx, session, msgs); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages WHERE session_id = ?", session).Scan(&count); err != nil {
		return err
	}
	drop := 0
	for db.window > 0 && count-drop > db.window && count-drop >= 2 {
		drop += 2
	}
	if drop > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM messages WHERE id IN (
				SELECT id FROM messages WHERE session_id = ? ORDER BY id LIMIT ?
			)
		`, session, drop)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// History returns the stored messages oldest first.
func (db *DB) History(ctx context.Context, session string) ([]oracle.Message, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var exists int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions WHERE id = ?", session).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", oracle.ErrNoSession, session)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT role, text FROM messages WHERE session_id = ? ORDER BY id
	`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []oracle.Message
	for rows.Next() {
		var m oracle.Message
		var role string
		if err := rows.Scan(&role, &m.Text); err != nil {
			return nil, err
		}
		m.Role = oracle.Role(role)
		out = append(out, m)
	}

	return out, rows.Err()
}

// Delete forgets session.
func (db *DB) Delete(ctx context.Context, session string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", session); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", session); err != nil {
		return err
	}
	return tx.Commit()
}

// Sessions returns the ids of every stored session, most recently used first.
func (db *DB) Sessions(ctx context.Context) ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, "SELECT id FROM sessions ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func insertMessages(ctx context.Context, tx *sql.Tx, session string, msgs []oracle.Message) error {
	for _, m := range msgs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO messages (session_id, role, text) VALUES (?, ?, ?)
		`, session, string(m.Role), m.Text)
		if err != nil {
			return err
		}
	}
	return nil
}
