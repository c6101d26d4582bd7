package session

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// sqlKV stores session keys in a two-column table over any
// database/sql driver. The update-then-insert dance keeps the upsert
// portable across sqlite, postgres and mysql dialects.
type sqlKV struct {
	db     *sql.DB
	driver string
}

const sessionTableDDL = `CREATE TABLE IF NOT EXISTS session_state (
  state_key VARCHAR(128) PRIMARY KEY,
  state_value TEXT NOT NULL,
  updated_at TIMESTAMP NOT NULL
)`

// NewSQLStore wraps an already-open database handle. The driver name
// decides placeholder style.
func NewSQLStore(db *sql.DB, driver, secret string) (*Store, error) {
	if _, err := db.Exec(sessionTableDDL); err != nil {
		return nil, fmt.Errorf("create session_state table: %w", err)
	}
	return newStore(&sqlKV{db: db, driver: driver}, secret), nil
}

// OpenSQLStore opens driver+dsn and wraps it. pgx and mysql drivers
// are registered by this package; sqlite callers open through
// internal/db and use NewSQLStore.
func OpenSQLStore(driver, dsn, secret string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return NewSQLStore(db, driver, secret)
}

func (s *sqlKV) ph(i int) string {
	if strings.Contains(strings.ToLower(s.driver), "pgx") || strings.Contains(strings.ToLower(s.driver), "postgres") {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func (s *sqlKV) get(ctx context.Context, key string) (string, bool, error) {
	var v string
	q := fmt.Sprintf("SELECT state_value FROM session_state WHERE state_key=%s", s.ph(1))
	err := s.db.QueryRowContext(ctx, q, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *sqlKV) set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	updateQ := fmt.Sprintf("UPDATE session_state SET state_value=%s, updated_at=%s WHERE state_key=%s", s.ph(1), s.ph(2), s.ph(3))
	res, err := s.db.ExecContext(ctx, updateQ, value, now, key)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	insertQ := fmt.Sprintf("INSERT INTO session_state(state_key,state_value,updated_at) VALUES(%s,%s,%s)", s.ph(1), s.ph(2), s.ph(3))
	if _, err := s.db.ExecContext(ctx, insertQ, key, value, now); err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique") {
			_, err = s.db.ExecContext(ctx, updateQ, value, now, key)
		}
		return err
	}
	return nil
}

func (s *sqlKV) del(ctx context.Context, key string) error {
	q := fmt.Sprintf("DELETE FROM session_state WHERE state_key=%s", s.ph(1))
	_, err := s.db.ExecContext(ctx, q, key)
	return err
}

func (s *sqlKV) ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
