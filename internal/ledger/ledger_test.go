package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/rozgar/internal/ledger"
	"github.com/garnizeh/rozgar/internal/profile"
	"github.com/garnizeh/rozgar/pkg/models"
	"github.com/garnizeh/rozgar/pkg/repository/mock"
)

func setup(t *testing.T) (*ledger.Ledger, *profile.Store, *mock.KVStore, *models.Profile) {
	t.Helper()
	kv := mock.NewKVStore()
	store, err := profile.NewStore(kv, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	p := &models.Profile{
		Name:        "शिव कुमार",
		RoleType:    models.RoleWorker,
		Photo:       "x",
		Phone:       "9876543210",
		WorkHistory: []models.WorkHistoryItem{},
	}
	if err := store.Put(context.Background(), p.Phone, p); err != nil {
		t.Fatalf("Put: %v", err)
	}
	return ledger.New(store, nil), store, kv, p
}

func item(id string) models.WorkHistoryItem {
	return models.WorkHistoryItem{ID: id, Role: "मिस्त्री", Price: "₹700", Status: models.StatusOngoing}
}

func TestAppend_MostRecentFirstAndPersisted(t *testing.T) {
	l, store, _, p := setup(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		if err := l.Append(ctx, p, item(id)); err != nil {
			t.Fatalf("Append %s: %v", id, err)
		}
	}
	if len(p.WorkHistory) != 3 || p.WorkHistory[0].ID != "3" || p.WorkHistory[2].ID != "1" {
		t.Fatalf("unexpected in-memory order %#v", p.WorkHistory)
	}

	stored, _ := store.Get(ctx, p.Phone)
	if stored == nil || len(stored.WorkHistory) != 3 || stored.WorkHistory[0].ID != "3" {
		t.Fatalf("history not persisted in order: %#v", stored)
	}
}

func TestAppend_DuplicateID(t *testing.T) {
	l, _, _, p := setup(t)
	ctx := context.Background()
	if err := l.Append(ctx, p, item("1")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append(ctx, p, item("1")); err == nil {
		t.Fatalf("expected duplicate id to be rejected")
	}
	if len(p.WorkHistory) != 1 {
		t.Fatalf("expected one entry, got %d", len(p.WorkHistory))
	}
}

func TestAppend_PersistFailureLeavesProfile(t *testing.T) {
	l, _, kv, p := setup(t)
	kv.PutErr = errors.New("read-only")

	if err := l.Append(context.Background(), p, item("1")); err == nil {
		t.Fatalf("expected persistence error")
	}
	if len(p.WorkHistory) != 0 {
		t.Fatalf("profile must be unchanged after failed append")
	}
}

func TestMarkReached(t *testing.T) {
	l, store, kv, p := setup(t)
	ctx := context.Background()
	if err := l.Append(ctx, p, item("1")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	changed, err := l.MarkReached(ctx, p, "1")
	if err != nil || !changed {
		t.Fatalf("MarkReached: changed=%v err=%v", changed, err)
	}
	if p.WorkHistory[0].Status != models.StatusReached {
		t.Fatalf("expected reached, got %s", p.WorkHistory[0].Status)
	}
	stored, _ := store.Get(ctx, p.Phone)
	if stored.WorkHistory[0].Status != models.StatusReached {
		t.Fatalf("reached status not persisted")
	}

	// idempotent: no second write
	writes := kv.Puts
	changed, err = l.MarkReached(ctx, p, "1")
	if err != nil || changed {
		t.Fatalf("second MarkReached: changed=%v err=%v", changed, err)
	}
	if kv.Puts != writes {
		t.Fatalf("idempotent MarkReached must not write")
	}
}

func TestMarkReached_UnknownIDIsSilent(t *testing.T) {
	l, _, kv, p := setup(t)
	writes := kv.Puts

	changed, err := l.MarkReached(context.Background(), p, "404")
	if err != nil || changed {
		t.Fatalf("unknown id must be a silent no-op, changed=%v err=%v", changed, err)
	}
	if kv.Puts != writes {
		t.Fatalf("unknown id must not write")
	}
	if _, err := l.MarkReached(context.Background(), nil, "1"); err != nil {
		t.Fatalf("nil profile must be a no-op, got %v", err)
	}
}

func TestMarkReached_DoesNotTouchSettled(t *testing.T) {
	l, _, _, p := setup(t)
	ctx := context.Background()
	settled := item("7")
	settled.Status = models.StatusSettled
	if err := l.Append(ctx, p, settled); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if changed, _ := l.MarkReached(ctx, p, "7"); changed {
		t.Fatalf("settled entries must not move")
	}
	if p.WorkHistory[0].Status != models.StatusSettled {
		t.Fatalf("status changed to %s", p.WorkHistory[0].Status)
	}
}
