// Package ledger maintains the per-profile work history. Entries are kept
// most recent first and every change is persisted through the Profile Store
// before the call returns.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garnizeh/rozgar/pkg/models"
)

// ProfileWriter is the slice of the Profile Store the ledger needs.
type ProfileWriter interface {
	Put(ctx context.Context, phone string, p *models.Profile) error
}

type Ledger struct {
	store  ProfileWriter
	logger *slog.Logger
}

func New(store ProfileWriter, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{store: store, logger: logger}
}

// Append inserts item at the front of the history and persists the profile.
// An item whose id already exists is rejected to keep ids unique.
func (l *Ledger) Append(ctx context.Context, p *models.Profile, item models.WorkHistoryItem) error {
	if p == nil {
		return fmt.Errorf("ledger: profile is nil")
	}
	if p.HistoryItem(item.ID) != nil {
		return fmt.Errorf("ledger: history item %s already exists", item.ID)
	}
	next := p.Clone()
	next.WorkHistory = append([]models.WorkHistoryItem{item}, next.WorkHistory...)
	if err := l.store.Put(ctx, next.Phone, next); err != nil {
		return fmt.Errorf("ledger: append %s: %w", item.ID, err)
	}
	*p = *next
	return nil
}

// MarkReached moves the entry with itemID to reached. Unknown ids and
// entries already reached are silent no-ops; only persistence failures are
// reported. It reports whether the history changed.
func (l *Ledger) MarkReached(ctx context.Context, p *models.Profile, itemID string) (bool, error) {
	if p == nil {
		return false, nil
	}
	cur := p.HistoryItem(itemID)
	if cur == nil {
		l.logger.Debug("ledger: mark reached for unknown item", slog.String("id", itemID))
		return false, nil
	}
	if cur.Status != models.StatusOngoing {
		// reached stays reached; settled/completed belong to settlement flows
		return false, nil
	}
	next := p.Clone()
	next.HistoryItem(itemID).Status = models.StatusReached
	if err := l.store.Put(ctx, next.Phone, next); err != nil {
		return false, fmt.Errorf("ledger: mark reached %s: %w", itemID, err)
	}
	*p = *next
	return true, nil
}
