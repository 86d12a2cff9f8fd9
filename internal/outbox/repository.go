package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garnizeh/rozgar/internal/db"
	"github.com/garnizeh/rozgar/internal/events"
)

type Repository struct {
	db *db.DB
}

func NewRepository(d *db.DB) *Repository { return &Repository{db: d} }

// Enqueue stores e for delivery and returns the row id. Enqueuing the same
// event id twice is a no-op that returns 0.
func (r *Repository) Enqueue(ctx context.Context, e events.Event, maxAttempts int) (int64, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("encode event: %w", err)
	}
	now := time.Now().UTC().Unix()
	q := `INSERT INTO outbox_events(event_id, type, payload, status, attempts, max_attempts, created, updated) VALUES(?,?,?,?,?,?,?,?) ON CONFLICT(event_id) DO NOTHING`
	res, err := r.db.Exec(ctx, q, e.ID, string(e.Type), string(payload), StatusQueued, 0, maxAttempts, now, now)
	if err != nil {
		return 0, fmt.Errorf("enqueue failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, nil
	}
	return res.LastInsertId()
}

// FetchNext claims the oldest deliverable record, or returns nil when there
// is none.
func (r *Repository) FetchNext(ctx context.Context) (*Record, error) {
	now := time.Now().UTC().Unix()
	q := `UPDATE outbox_events SET status = ?, updated = ?
		WHERE id = (
			SELECT id FROM outbox_events
			WHERE (status = ? OR status = ?) AND (next_try_at IS NULL OR next_try_at <= ?)
			ORDER BY created ASC, id ASC LIMIT 1
		)
		RETURNING id, event_id, type, payload, status, attempts, max_attempts, next_try_at, last_error, created, updated`
	row := r.db.QueryRow(ctx, q, StatusProcessing, now, StatusQueued, StatusRetry, now)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch next event: %w", err)
	}
	return rec, nil
}

// Get returns the record for eventID, or nil.
func (r *Repository) Get(ctx context.Context, eventID string) (*Record, error) {
	q := `SELECT id, event_id, type, payload, status, attempts, max_attempts, next_try_at, last_error, created, updated FROM outbox_events WHERE event_id = ?`
	rec, err := scanRecord(r.db.QueryRow(ctx, q, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return rec, nil
}

// Update updates attempts, status, next_try_at, last_error
func (r *Repository) Update(ctx context.Context, rec *Record) error {
	var nextTry any
	if rec.NextTryAt != nil {
		nextTry = rec.NextTryAt.UTC().Unix()
	}
	q := `UPDATE outbox_events SET status = ?, attempts = ?, next_try_at = ?, last_error = ?, updated = ? WHERE id = ?`
	_, err := r.db.Exec(ctx, q, rec.Status, rec.Attempts, nextTry, rec.LastError, time.Now().UTC().Unix(), rec.ID)
	return err
}

// MoveToDeadLetter moves a record to outbox_dead_letters and deletes the original
func (r *Repository) MoveToDeadLetter(ctx context.Context, rec *Record) error {
	tx, err := r.db.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	insert := `INSERT INTO outbox_dead_letters(event_id, type, payload, attempts, last_error, failed_at) VALUES(?,?,?,?,?,?)`
	if _, err := tx.ExecContext(ctx, insert, rec.EventID, rec.Type, string(rec.Payload), rec.Attempts, rec.LastError, time.Now().UTC().Unix()); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM outbox_events WHERE id = ?`, rec.ID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CountDeadLetters returns how many events gave up.
func (r *Repository) CountDeadLetters(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_dead_letters`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dead letters: %w", err)
	}
	return n, nil
}

// Requeue makes records stuck in processing deliverable again, e.g. after a
// crash mid-delivery.
func (r *Repository) Requeue(ctx context.Context) (int64, error) {
	res, err := r.db.Exec(ctx, `UPDATE outbox_events SET status = ?, updated = ? WHERE status = ?`, StatusRetry, time.Now().UTC().Unix(), StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("requeue events: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec       Record
		payload   sql.NullString
		nextTry   sql.NullInt64
		lastError sql.NullString
		created   int64
		updated   int64
	)
	if err := row.Scan(&rec.ID, &rec.EventID, &rec.Type, &payload, &rec.Status, &rec.Attempts, &rec.MaxAttempts, &nextTry, &lastError, &created, &updated); err != nil {
		return nil, err
	}
	rec.Created = time.Unix(created, 0)
	rec.Updated = time.Unix(updated, 0)
	if payload.Valid {
		rec.Payload = json.RawMessage(payload.String)
	}
	if nextTry.Valid {
		t := time.Unix(nextTry.Int64, 0)
		rec.NextTryAt = &t
	}
	if lastError.Valid {
		rec.LastError = lastError.String
	}
	return &rec, nil
}
