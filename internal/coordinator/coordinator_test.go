package coordinator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	rozgardb "github.com/garnizeh/rozgar/db"
	"github.com/garnizeh/rozgar/internal/coordinator"
	"github.com/garnizeh/rozgar/internal/events"
	"github.com/garnizeh/rozgar/internal/geo"
	"github.com/garnizeh/rozgar/internal/jobboard"
	"github.com/garnizeh/rozgar/internal/onboarding"
	"github.com/garnizeh/rozgar/internal/profile"
	"github.com/garnizeh/rozgar/internal/timer"
	"github.com/garnizeh/rozgar/internal/tracking"
	"github.com/garnizeh/rozgar/pkg/models"
	"github.com/garnizeh/rozgar/pkg/repository/mock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu  sync.Mutex
	got []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, e)
	return nil
}

func (r *recorder) count(typ events.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.got {
		if e.Type == typ {
			n++
		}
	}
	return n
}

type harness struct {
	c     *coordinator.Coordinator
	kv    *mock.KVStore
	store *profile.Store
	clk   *timer.Manual
	feed  *geo.Feed
	pub   *recorder
}

func newHarness(t *testing.T, kv *mock.KVStore) *harness {
	t.Helper()
	if kv == nil {
		kv = mock.NewKVStore()
	}
	store, err := profile.NewStore(kv, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	seed, err := jobboard.LoadSeed(rozgardb.SeedFiles, "seed/jobs.yaml")
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	h := &harness{kv: kv, store: store, clk: timer.NewManual(), feed: geo.NewFeed(), pub: &recorder{}}
	h.c, err = coordinator.New(coordinator.Deps{
		Profiles:  store,
		Seed:      seed,
		Clock:     h.clk,
		Locator:   h.feed,
		Publisher: h.pub,
	}, coordinator.Settings{OfferCountdown: 20, OfferDelay: 5 * time.Second, DeclineWindow: 240, Tick: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(h.c.Close)
	if _, err := h.c.Boot(context.Background()); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	return h
}

func (h *harness) registerWorker(t *testing.T, phone, name string) coordinator.View {
	t.Helper()
	ctx := context.Background()
	if _, err := h.c.SubmitPhone(ctx, phone); err != nil {
		t.Fatalf("SubmitPhone: %v", err)
	}
	if _, err := h.c.SelectRole(ctx, models.RoleWorker); err != nil {
		t.Fatalf("SelectRole: %v", err)
	}
	v, err := h.c.SubmitName(ctx, name)
	if err != nil {
		t.Fatalf("SubmitName: %v", err)
	}
	return v
}

func jobIDs(jobs []models.Job) []int64 {
	out := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestScenario_WorkerAcceptsFirstJob(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	v, _ := h.c.View(ctx)
	if v.Screen != string(onboarding.StepLogin) {
		t.Fatalf("expected login, got %s", v.Screen)
	}
	v, err := h.c.SubmitPhone(ctx, "9876543210")
	if err != nil || v.Screen != string(onboarding.StepRoleSelection) {
		t.Fatalf("SubmitPhone: %s %v", v.Screen, err)
	}
	v, err = h.c.SelectRole(ctx, models.RoleWorker)
	if err != nil || v.Screen != string(onboarding.StepNameInput) {
		t.Fatalf("SelectRole: %s %v", v.Screen, err)
	}
	v, err = h.c.SubmitName(ctx, "शिव कुमार")
	if err != nil || v.Screen != string(onboarding.StepApp) {
		t.Fatalf("SubmitName: %s %v", v.Screen, err)
	}

	job, err := h.c.AcceptJob(ctx, 1)
	if err != nil || job.ID != 1 {
		t.Fatalf("AcceptJob: %#v %v", job, err)
	}
	accepted, _ := h.c.ListAccepted(ctx)
	if ids := jobIDs(accepted); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("accepted = %v", ids)
	}
	available, _ := h.c.ListAvailable(ctx)
	if ids := jobIDs(available); len(ids) != 2 || ids[0] != 2 {
		t.Fatalf("available = %v", ids)
	}

	p, _ := h.c.Profile(ctx)
	if len(p.WorkHistory) != 1 || p.WorkHistory[0].ID != "1" || p.WorkHistory[0].Status != models.StatusOngoing {
		t.Fatalf("history = %#v", p.WorkHistory)
	}
	item := p.WorkHistory[0]
	if item.Role != "मिस्त्री" || item.Price != "₹700" || item.Location != "नजदीकी" || item.Days != "5 दिन" {
		t.Fatalf("unexpected derived entry %#v", item)
	}
	stored, _ := h.store.Get(ctx, "9876543210")
	if stored == nil || len(stored.WorkHistory) != 1 {
		t.Fatalf("history not persisted: %#v", stored)
	}
	if phone, ok, _ := h.store.CurrentSession(ctx); !ok || phone != "9876543210" {
		t.Fatalf("session pointer = %q %v", phone, ok)
	}

	v, _ = h.c.View(ctx)
	if v.Screen != coordinator.ScreenTracking || v.Tracking == nil || v.Tracking.JobID != 1 {
		t.Fatalf("expected tracking for job 1, got %#v", v)
	}
	if h.pub.count(events.JobAccepted) != 1 || h.pub.count(events.ProfileCreated) != 1 {
		t.Fatalf("unexpected events %#v", h.pub.got)
	}
}

func TestLogin_InvalidPhoneTouchesNothing(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	for _, phone := range []string{"12345", "98765432100", "abcdefghij"} {
		v, err := h.c.SubmitPhone(ctx, phone)
		if !onboarding.IsValidation(err) {
			t.Fatalf("%q: expected validation error, got %v", phone, err)
		}
		if v.Screen != string(onboarding.StepLogin) {
			t.Fatalf("%q: screen moved to %s", phone, v.Screen)
		}
	}
	if h.kv.Puts != 0 {
		t.Fatalf("invalid logins wrote to the store %d times", h.kv.Puts)
	}
}

func TestLogin_KnownPhoneGoesToApp(t *testing.T) {
	kv := mock.NewKVStore()
	first := newHarness(t, kv)
	first.registerWorker(t, "9876543210", "शिव कुमार")
	first.c.Close()

	h := newHarness(t, kv)
	ctx := context.Background()
	if _, err := h.c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	v, err := h.c.SubmitPhone(ctx, "9876543210")
	if err != nil || v.Screen != string(onboarding.StepApp) || v.Profile == nil || v.Profile.Name != "शिव कुमार" {
		t.Fatalf("known phone should resume: %#v %v", v, err)
	}
}

func TestLogin_StoredRecordWithoutPhone(t *testing.T) {
	kv := mock.NewKVStore()
	kv.Set(profile.UsersKey, `{"9876543210": {"name": "शिव कुमार", "roles": ["मज़दूर"], "roleType": "worker", "photo": "x", "workHistory": []}}`)
	h := newHarness(t, kv)
	ctx := context.Background()

	v, err := h.c.SubmitPhone(ctx, "9876543210")
	if err != nil || v.Screen != string(onboarding.StepApp) || v.Profile == nil || v.Profile.Phone != "9876543210" {
		t.Fatalf("SubmitPhone: %#v %v", v, err)
	}
	if phone, ok := h.c.SessionPhone(); !ok || phone != "9876543210" {
		t.Fatalf("SessionPhone = %q %v", phone, ok)
	}
	if _, err := h.c.AcceptJob(ctx, 1); err != nil {
		t.Fatalf("AcceptJob: %v", err)
	}
	stored, _ := h.store.Get(ctx, "9876543210")
	if stored == nil || len(stored.WorkHistory) != 1 || stored.WorkHistory[0].ID != "1" {
		t.Fatalf("history not persisted under the login phone: %#v", stored)
	}
}

func TestAccept_TwiceIsNotFound(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")

	if _, err := h.c.AcceptJob(ctx, 2); err != nil {
		t.Fatalf("AcceptJob: %v", err)
	}
	if _, err := h.c.AcceptJob(ctx, 2); !errors.Is(err, jobboard.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	p, _ := h.c.Profile(ctx)
	if len(p.WorkHistory) != 1 {
		t.Fatalf("history grew on failed accept: %#v", p.WorkHistory)
	}
}

func TestReject(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")

	if err := h.c.RejectJob(ctx, 3); err != nil {
		t.Fatalf("RejectJob: %v", err)
	}
	if err := h.c.RejectJob(ctx, 42); err != nil {
		t.Fatalf("RejectJob absent: %v", err)
	}
	available, _ := h.c.ListAvailable(ctx)
	if ids := jobIDs(available); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("available = %v", ids)
	}
	accepted, _ := h.c.ListAccepted(ctx)
	if len(accepted) != 0 {
		t.Fatalf("reject touched accepted")
	}
	p, _ := h.c.Profile(ctx)
	if len(p.WorkHistory) != 0 {
		t.Fatalf("reject touched history")
	}
}

func TestOffer_ExpiresIntoDecline(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")

	if _, err := h.c.CurrentOffer(ctx); !errors.Is(err, coordinator.ErrNoOffer) {
		t.Fatalf("offer before delay: %v", err)
	}
	h.clk.Advance(5 * time.Second)
	o, err := h.c.CurrentOffer(ctx)
	if err != nil || o.Job.ID != 1 || o.Remaining != 20 {
		t.Fatalf("expected offer for job 1, got %#v %v", o, err)
	}

	h.clk.Advance(20 * time.Second)
	if _, err := h.c.CurrentOffer(ctx); !errors.Is(err, coordinator.ErrNoOffer) {
		t.Fatalf("offer should have expired, got %v", err)
	}
	available, _ := h.c.ListAvailable(ctx)
	if ids := jobIDs(available); len(ids) != 2 || ids[0] != 2 {
		t.Fatalf("expired job should be removed, available = %v", ids)
	}
	p, _ := h.c.Profile(ctx)
	if len(p.WorkHistory) != 0 {
		t.Fatalf("expiry created history: %#v", p.WorkHistory)
	}
	if h.pub.count(events.OfferExpired) != 1 {
		t.Fatalf("expected one offer.expired event")
	}

	h.clk.Advance(5 * time.Second)
	if o, err := h.c.CurrentOffer(ctx); err != nil || o.Job.ID != 2 {
		t.Fatalf("feeder should offer job 2 next, got %#v %v", o, err)
	}
}

func TestOffer_AcceptStartsTracking(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")
	h.clk.Advance(5 * time.Second)

	job, err := h.c.AcceptOffer(ctx)
	if err != nil || job.ID != 1 {
		t.Fatalf("AcceptOffer: %#v %v", job, err)
	}
	v, _ := h.c.View(ctx)
	if v.Screen != coordinator.ScreenTracking || v.Offer != nil {
		t.Fatalf("unexpected view %#v", v)
	}
	// no new offers while tracking
	h.clk.Advance(time.Minute)
	if _, err := h.c.CurrentOffer(ctx); !errors.Is(err, coordinator.ErrNoOffer) {
		t.Fatalf("offer rang during tracking: %v", err)
	}
	if _, err := h.c.AcceptOffer(ctx); !errors.Is(err, coordinator.ErrNoOffer) {
		t.Fatalf("expected ErrNoOffer, got %v", err)
	}
}

func TestOffer_DeclineRearmsFeeder(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")
	h.clk.Advance(5 * time.Second)

	if err := h.c.DeclineOffer(ctx); err != nil {
		t.Fatalf("DeclineOffer: %v", err)
	}
	available, _ := h.c.ListAvailable(ctx)
	if ids := jobIDs(available); len(ids) != 2 || ids[0] != 2 {
		t.Fatalf("available = %v", ids)
	}
	h.clk.Advance(5 * time.Second)
	if o, err := h.c.CurrentOffer(ctx); err != nil || o.Job.ID != 2 {
		t.Fatalf("expected offer for job 2, got %#v %v", o, err)
	}
}

func TestCardAcceptWhileRinging(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")
	h.clk.Advance(5 * time.Second)

	if _, err := h.c.AcceptJob(ctx, 1); err != nil {
		t.Fatalf("AcceptJob while ringing: %v", err)
	}
	if _, err := h.c.CurrentOffer(ctx); !errors.Is(err, coordinator.ErrNoOffer) {
		t.Fatalf("ringing offer should be resolved by the card accept")
	}
	h.clk.Advance(time.Minute)
	p, _ := h.c.Profile(ctx)
	if len(p.WorkHistory) != 1 || p.WorkHistory[0].ID != "1" {
		t.Fatalf("history = %#v", p.WorkHistory)
	}
}

func TestTracking_ReachedIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")
	if _, err := h.c.AcceptJob(ctx, 1); err != nil {
		t.Fatalf("AcceptJob: %v", err)
	}

	if _, err := h.c.Reached(ctx); !errors.Is(err, tracking.ErrNotSharing) {
		t.Fatalf("expected ErrNotSharing before sharing, got %v", err)
	}
	snap, err := h.c.ShareLocation(ctx)
	if err != nil || !snap.Sharing {
		t.Fatalf("ShareLocation: %#v %v", snap, err)
	}
	h.feed.Push(geo.Position{Coords: models.Coords{Lat: 26.1, Lng: 85.3}})
	h.clk.Advance(3 * time.Second)
	snap, _ = h.c.TrackingState(ctx)
	if snap.Coords == nil || snap.Coords.Lat != 26.1 || snap.Window != "3:57" {
		t.Fatalf("unexpected tracking state %#v", snap)
	}

	a, err := h.c.Reached(ctx)
	if err != nil || !a.First || !a.Tracking.Arrived || a.Message == "" {
		t.Fatalf("Reached: %#v %v", a, err)
	}
	a, err = h.c.Reached(ctx)
	if err != nil || a.First {
		t.Fatalf("second Reached: %#v %v", a, err)
	}

	p, _ := h.c.Profile(ctx)
	if p.WorkHistory[0].Status != models.StatusReached {
		t.Fatalf("status = %s", p.WorkHistory[0].Status)
	}
	stored, _ := h.store.Get(ctx, "9876543210")
	if stored.WorkHistory[0].Status != models.StatusReached {
		t.Fatalf("reached not persisted")
	}
	if h.pub.count(events.WorkerArrived) != 1 {
		t.Fatalf("arrival must be published exactly once")
	}
	if h.feed.Watchers() != 0 {
		t.Fatalf("location subscription leaked after arrival")
	}
}

func TestTracking_PermissionDenied(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")
	_, _ = h.c.AcceptJob(ctx, 1)
	_, _ = h.c.ShareLocation(ctx)

	h.feed.Deny()
	snap, _ := h.c.TrackingState(ctx)
	if snap.Phase != tracking.PendingDecision || snap.Notice == "" {
		t.Fatalf("denial should revert to pending with a notice: %#v", snap)
	}
	if _, err := h.c.ShareLocation(ctx); !errors.Is(err, geo.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestTracking_LeaveAndReopen(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")
	_, _ = h.c.AcceptJob(ctx, 1)

	v, err := h.c.LeaveTracking(ctx)
	if err != nil || v.Screen != string(onboarding.StepApp) || v.Tracking != nil {
		t.Fatalf("LeaveTracking: %#v %v", v, err)
	}
	if _, err := h.c.ShareLocation(ctx); !errors.Is(err, coordinator.ErrNoTracking) {
		t.Fatalf("expected ErrNoTracking, got %v", err)
	}
	if _, err := h.c.OpenTracking(ctx, 2); !errors.Is(err, jobboard.ErrNotFound) {
		t.Fatalf("tracking a job that was not accepted: %v", err)
	}
	snap, err := h.c.OpenTracking(ctx, 1)
	if err != nil || snap.JobID != 1 || snap.Remaining != 240 {
		t.Fatalf("OpenTracking: %#v %v", snap, err)
	}
}

func TestLogout_KeepsProfileAndRelogin(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")
	_, _ = h.c.AcceptJob(ctx, 1)
	_, _ = h.c.ShareLocation(ctx)

	v, err := h.c.Logout(ctx)
	if err != nil || v.Screen != string(onboarding.StepLogin) || v.Profile != nil {
		t.Fatalf("Logout: %#v %v", v, err)
	}
	if _, ok, _ := h.store.CurrentSession(ctx); ok {
		t.Fatalf("session pointer not cleared")
	}
	if p, _ := h.store.Get(ctx, "9876543210"); p == nil {
		t.Fatalf("logout deleted the profile")
	}
	if h.clk.Pending() != 0 || h.feed.Watchers() != 0 {
		t.Fatalf("logout leaked timers=%d watchers=%d", h.clk.Pending(), h.feed.Watchers())
	}
	if _, err := h.c.ListAvailable(ctx); !errors.Is(err, coordinator.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	v, err = h.c.SubmitPhone(ctx, "9876543210")
	if err != nil || v.Screen != string(onboarding.StepApp) {
		t.Fatalf("relogin: %#v %v", v, err)
	}
	if len(v.Profile.WorkHistory) != 1 || v.Profile.WorkHistory[0].ID != "1" {
		t.Fatalf("history lost across logout: %#v", v.Profile.WorkHistory)
	}
	accepted, _ := h.c.ListAccepted(ctx)
	if ids := jobIDs(accepted); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("accepted after relogin = %v", ids)
	}
	if _, err := h.c.AcceptJob(ctx, 1); !errors.Is(err, jobboard.ErrNotFound) {
		t.Fatalf("job in history must not be accepted twice, got %v", err)
	}
}

func TestBoot_RestoresSession(t *testing.T) {
	kv := mock.NewKVStore()
	first := newHarness(t, kv)
	first.registerWorker(t, "9876543210", "शिव कुमार")
	first.c.Close()

	h := newHarness(t, kv)
	v, _ := h.c.View(context.Background())
	if v.Screen != string(onboarding.StepApp) || v.Profile == nil || v.Profile.Phone != "9876543210" {
		t.Fatalf("session not restored: %#v", v)
	}
}

func TestBoot_CorruptSessionStartsAtLogin(t *testing.T) {
	kv := mock.NewKVStore()
	kv.Set(profile.SessionKey, "9876543210")
	kv.Set(profile.UsersKey, "{broken")
	h := newHarness(t, kv)
	v, _ := h.c.View(context.Background())
	if v.Screen != string(onboarding.StepLogin) {
		t.Fatalf("expected login, got %s", v.Screen)
	}
}

func TestContractorRegistrationAndPosting(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _ = h.c.SubmitPhone(ctx, "9123456780")
	_, _ = h.c.SelectRole(ctx, models.RoleContractor)
	v, _ := h.c.SubmitName(ctx, "रमेश")
	if v.Screen != string(onboarding.StepPhotoUpload) {
		t.Fatalf("expected photo-upload, got %s", v.Screen)
	}
	if _, err := h.c.LocateAddress(ctx); !errors.Is(err, onboarding.ErrWrongStep) {
		t.Fatalf("LocateAddress outside address step: %v", err)
	}
	v, _ = h.c.Back(ctx)
	if v.Screen != string(onboarding.StepNameInput) {
		t.Fatalf("Back: %s", v.Screen)
	}
	_, _ = h.c.SubmitName(ctx, "रमेश")
	_, _ = h.c.SubmitPhoto(ctx, "data:image/png;base64,AAAA")

	h.feed.Push(geo.Position{Coords: models.Coords{Lat: 25.6, Lng: 85.1}})
	sug, err := h.c.LocateAddress(ctx)
	if err != nil || sug.Address != onboarding.NearbyLabel {
		t.Fatalf("LocateAddress: %#v %v", sug, err)
	}
	v, err = h.c.SubmitAddress(ctx, sug.Address, &sug.Coords)
	if err != nil || v.Screen != string(onboarding.StepApp) {
		t.Fatalf("SubmitAddress: %#v %v", v, err)
	}
	if v.Profile.JobsPosted == nil || *v.Profile.JobsPosted != 42 || v.Profile.Coords == nil {
		t.Fatalf("unexpected contractor profile %#v", v.Profile)
	}

	// posters are never rung
	h.clk.Advance(time.Minute)
	if _, err := h.c.CurrentOffer(ctx); !errors.Is(err, coordinator.ErrNoOffer) {
		t.Fatalf("contractor got an offer: %v", err)
	}

	job, err := h.c.PostJob(ctx, jobboard.Posting{WorkerType: "मिस्त्री", Count: 5, Wage: 700, DurationDays: 3})
	if err != nil || job.ID != 4 {
		t.Fatalf("PostJob: %#v %v", job, err)
	}
	p, _ := h.c.Profile(ctx)
	if *p.JobsPosted != 43 {
		t.Fatalf("jobs posted = %d", *p.JobsPosted)
	}
	if _, err := h.c.PostJob(ctx, jobboard.Posting{WorkerType: "मिस्त्री", Count: 7, Wage: 700, DurationDays: 3}); !errors.Is(err, jobboard.ErrInvalidPosting) {
		t.Fatalf("expected ErrInvalidPosting, got %v", err)
	}
}

func TestPosting_IDsSurviveRelogin(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _ = h.c.SubmitPhone(ctx, "9123456780")
	_, _ = h.c.SelectRole(ctx, models.RoleEmployer)
	_, _ = h.c.SubmitName(ctx, "रमेश")
	_, _ = h.c.SubmitPhoto(ctx, "data:image/png;base64,AAAA")
	if v, err := h.c.SubmitAddress(ctx, "पटना", nil); err != nil || v.Screen != string(onboarding.StepApp) {
		t.Fatalf("SubmitAddress: %#v %v", v, err)
	}

	posting := jobboard.Posting{WorkerType: "मजदूर", Count: 2, Wage: 600, DurationDays: 1}
	job, err := h.c.PostJob(ctx, posting)
	if err != nil || job.ID != 4 {
		t.Fatalf("PostJob: %#v %v", job, err)
	}
	if _, err := h.c.AcceptJob(ctx, 4); err != nil {
		t.Fatalf("AcceptJob: %v", err)
	}

	if _, err := h.c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := h.c.SubmitPhone(ctx, "9123456780"); err != nil {
		t.Fatalf("relogin: %v", err)
	}
	job, err = h.c.PostJob(ctx, posting)
	if err != nil || job.ID != 5 {
		t.Fatalf("PostJob after relogin: %#v %v", job, err)
	}
	if _, err := h.c.AcceptJob(ctx, 5); err != nil {
		t.Fatalf("AcceptJob after relogin: %v", err)
	}
}

func TestWorkerCannotPost(t *testing.T) {
	h := newHarness(t, nil)
	h.registerWorker(t, "9876543210", "शिव कुमार")
	_, err := h.c.PostJob(context.Background(), jobboard.Posting{WorkerType: "मजदूर", Count: 1, Wage: 600, DurationDays: 1})
	if !errors.Is(err, coordinator.ErrNotPoster) {
		t.Fatalf("expected ErrNotPoster, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.registerWorker(t, "9876543210", "शिव कुमार")

	name, addr := "शिव", "पटना"
	p, err := h.c.UpdateProfile(ctx, coordinator.ProfileUpdate{Name: &name, Address: &addr, Roles: []string{"मज़दूर", "मिस्त्री"}})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if p.Name != "शिव" || p.Address != "पटना" || len(p.Roles) != 2 || p.Phone != "9876543210" {
		t.Fatalf("unexpected profile %#v", p)
	}
	stored, _ := h.store.Get(ctx, "9876543210")
	if stored.Name != "शिव" {
		t.Fatalf("update not persisted")
	}
	empty := " "
	if _, err := h.c.UpdateProfile(ctx, coordinator.ProfileUpdate{Name: &empty}); !errors.Is(err, coordinator.ErrInvalidUpdate) {
		t.Fatalf("expected ErrInvalidUpdate, got %v", err)
	}
}

func TestDictateName_Unsupported(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	if _, err := h.c.DictateName(ctx); !errors.Is(err, onboarding.ErrWrongStep) {
		t.Fatalf("expected ErrWrongStep at login, got %v", err)
	}
	_, _ = h.c.SubmitPhone(ctx, "9876543210")
	_, _ = h.c.SelectRole(ctx, models.RoleWorker)
	if _, err := h.c.DictateName(ctx); !errors.Is(err, onboarding.ErrSpeechUnsupported) {
		t.Fatalf("expected ErrSpeechUnsupported, got %v", err)
	}
}

func TestClose_RejectsCalls(t *testing.T) {
	h := newHarness(t, nil)
	h.registerWorker(t, "9876543210", "शिव कुमार")
	h.c.Close()
	if h.clk.Pending() != 0 {
		t.Fatalf("Close left %d timers", h.clk.Pending())
	}
	if _, err := h.c.View(context.Background()); !errors.Is(err, coordinator.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
