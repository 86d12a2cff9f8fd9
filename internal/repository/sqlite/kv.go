package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Get returns the value stored under key. Absent keys yield "", false, nil.
func (r *SQLiteRepo) Get(ctx context.Context, key string) (string, bool, error) {
	row := r.conn.QueryRow(ctx, `SELECT value FROM kv_records WHERE key = ?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

// Put upserts key. The statement is committed before Put returns.
func (r *SQLiteRepo) Put(ctx context.Context, key, value string) error {
	_, err := r.conn.Exec(ctx, `INSERT INTO kv_records (key, value, updated) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated=excluded.updated`, key, value, now())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	r.logger.Debug("kv: put", slog.String("key", key), slog.Int("bytes", len(value)))
	return nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM kv_records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
