package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pingme/internal/registry"
	"pingme/internal/store"
)

// fakeRegistry records registrations in memory.
type fakeRegistry struct {
	active       map[string]registry.Plan
	failRegister bool
	registers    int
	deregisters  []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{active: map[string]registry.Plan{}}
}

func (f *fakeRegistry) Register(_ context.Context, jobID string, plan registry.Plan) error {
	if f.failRegister {
		return errors.New("activation rejected")
	}
	f.registers++
	f.active[jobID] = plan
	return nil
}

func (f *fakeRegistry) Deregister(_ context.Context, jobID string) error {
	f.deregisters = append(f.deregisters, jobID)
	delete(f.active, jobID)
	return nil
}

func (f *fakeRegistry) IsActive(_ context.Context, jobID string) (bool, error) {
	_, ok := f.active[jobID]
	return ok, nil
}

type sent struct {
	title   string
	message string
}

type fakeNotifier struct {
	sent []sent
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, title, message string) error {
	f.sent = append(f.sent, sent{title: title, message: message})
	return f.err
}

func newTestEngine(t *testing.T) (*Engine, *fakeRegistry, *fakeNotifier) {
	t.Helper()
	reg := newFakeRegistry()
	n := &fakeNotifier{}
	e := New(store.New(t.TempDir()), reg, n, zerolog.Nop())
	e.spawn = func(string) error { return nil }
	return e, reg, n
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestScheduleOnceImmediateShortCircuit(t *testing.T) {
	t.Parallel()
	e, reg, n := newTestEngine(t)
	now := time.Date(2025, time.March, 10, 18, 0, 0, 0, time.Local)
	e.now = fixedClock(now)

	res, err := e.ScheduleOnce(context.Background(), now.Add(-time.Minute), "too late")
	if err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}
	if !res.Immediate || res.ID != "" {
		t.Fatalf("expected immediate result, got %+v", res)
	}
	if len(n.sent) != 1 || n.sent[0].message != "too late" {
		t.Fatalf("expected one immediate display, got %+v", n.sent)
	}
	if reg.registers != 0 {
		t.Fatal("immediate fire must not register")
	}
	records, err := e.store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("immediate fire must not persist, store has %+v", records)
	}
}

func TestScheduleOnceRoundTrip(t *testing.T) {
	t.Parallel()
	e, reg, _ := newTestEngine(t)
	now := time.Date(2025, time.March, 10, 18, 0, 0, 0, time.Local)
	e.now = fixedClock(now)
	ctx := context.Background()

	at := now.Add(90 * time.Minute)
	res, err := e.ScheduleOnce(ctx, at, "tea")
	if err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}
	if res.ID == "" || res.Delay != 90*time.Minute {
		t.Fatalf("unexpected result: %+v", res)
	}
	plan, ok := reg.active[res.ID]
	if !ok || plan.OneShot == nil {
		t.Fatalf("expected one-shot registration for %s", res.ID)
	}
	if plan.OneShot.Hour != 19 || plan.OneShot.Minute != 30 {
		t.Fatalf("calendar fields = %+v", plan.OneShot)
	}

	lst, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(lst.OneShot) != 1 || len(lst.Recurring) != 0 {
		t.Fatalf("unexpected listing: %+v", lst)
	}
	if lst.OneShot[0].ID != res.ID || lst.OneShot[0].Message != "tea" {
		t.Fatalf("listing entry mismatch: %+v", lst.OneShot[0])
	}

	cancelled, err := e.Cancel(ctx, res.ID)
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if len(cancelled) != 1 || cancelled[0].ID != res.ID {
		t.Fatalf("unexpected cancel result: %+v", cancelled)
	}
	if _, ok := reg.active[res.ID]; ok {
		t.Fatal("cancel must deregister")
	}

	lst, err = e.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if !lst.Empty() {
		t.Fatalf("expected empty listing, got %+v", lst)
	}
}

func TestScheduleOnceRegisterFailureLeavesNothing(t *testing.T) {
	t.Parallel()
	e, reg, _ := newTestEngine(t)
	reg.failRegister = true
	now := time.Now()

	if _, err := e.ScheduleOnce(context.Background(), now.Add(time.Hour), "x"); err == nil {
		t.Fatal("expected registration failure")
	}
	records, err := e.store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("store must stay untouched on failure, has %+v", records)
	}
}

func TestScheduleRecurringMinimumInterval(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.ScheduleRecurring(ctx, 30*time.Second, "x"); !errors.Is(err, ErrIntervalTooShort) {
		t.Fatalf("expected ErrIntervalTooShort, got %v", err)
	}

	res, err := e.ScheduleRecurring(ctx, time.Minute, "x")
	if err != nil {
		t.Fatalf("ScheduleRecurring error: %v", err)
	}
	lst, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(lst.Recurring) != 1 || lst.Recurring[0].ID != res.ID {
		t.Fatalf("expected one recurring entry, got %+v", lst)
	}
	if lst.Recurring[0].Interval != 60 {
		t.Fatalf("interval = %d, want 60", lst.Recurring[0].Interval)
	}
}

func TestFireOneShotRetiresRecord(t *testing.T) {
	t.Parallel()
	e, _, n := newTestEngine(t)
	now := time.Now()
	e.now = fixedClock(now)
	var spawned []string
	e.spawn = func(id string) error {
		spawned = append(spawned, id)
		return nil
	}
	ctx := context.Background()

	res, err := e.ScheduleOnce(ctx, now.Add(time.Hour), "tea")
	if err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}

	if err := e.Fire(ctx, res.ID); err != nil {
		t.Fatalf("Fire error: %v", err)
	}
	if len(spawned) != 1 || spawned[0] != res.ID {
		t.Fatalf("expected one detached cleanup for %s, got %v", res.ID, spawned)
	}
	if len(n.sent) != 1 || n.sent[0].title != titleOneShot {
		t.Fatalf("expected one one-shot display, got %+v", n.sent)
	}
	records, err := e.store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("one-shot record must be retired, store has %+v", records)
	}

	// Second fire for the same id is a no-op, not an error.
	if err := e.Fire(ctx, res.ID); err != nil {
		t.Fatalf("duplicate Fire error: %v", err)
	}
	if len(n.sent) != 1 {
		t.Fatalf("duplicate fire must not display again, got %+v", n.sent)
	}
	if len(spawned) != 1 {
		t.Fatalf("duplicate fire must not spawn cleanup again, got %v", spawned)
	}
}

func TestFireRecurringLeavesStateAlone(t *testing.T) {
	t.Parallel()
	e, reg, n := newTestEngine(t)
	ctx := context.Background()

	res, err := e.ScheduleRecurring(ctx, 10*time.Minute, "stretch")
	if err != nil {
		t.Fatalf("ScheduleRecurring error: %v", err)
	}
	if err := e.Fire(ctx, res.ID); err != nil {
		t.Fatalf("Fire error: %v", err)
	}
	if len(n.sent) != 1 || n.sent[0].title != titleRecurring {
		t.Fatalf("expected recurring display, got %+v", n.sent)
	}
	if _, ok := reg.active[res.ID]; !ok {
		t.Fatal("recurring fire must not deregister")
	}
	records, err := e.store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("recurring record must persist, store has %+v", records)
	}
}

func TestListPrunesStaleRecords(t *testing.T) {
	t.Parallel()
	e, reg, _ := newTestEngine(t)
	now := time.Now()
	e.now = fixedClock(now)
	ctx := context.Background()

	// A one-shot in the past with no registration: pruned.
	// A recurring job whose unit vanished out-of-band: pruned.
	// A one-shot in the past whose unit is still active: kept (in-flight).
	past, err := e.ScheduleOnce(ctx, now.Add(time.Hour), "stale")
	if err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}
	rec, err := e.ScheduleRecurring(ctx, time.Minute, "vanished")
	if err != nil {
		t.Fatalf("ScheduleRecurring error: %v", err)
	}
	inflight, err := e.ScheduleOnce(ctx, now.Add(2*time.Hour), "in flight")
	if err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}

	delete(reg.active, past.ID)
	delete(reg.active, rec.ID)
	e.now = fixedClock(now.Add(3 * time.Hour))

	lst, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(lst.Recurring) != 0 {
		t.Fatalf("vanished recurring job not pruned: %+v", lst.Recurring)
	}
	if len(lst.OneShot) != 1 || lst.OneShot[0].ID != inflight.ID {
		t.Fatalf("expected only the in-flight job, got %+v", lst.OneShot)
	}

	// The pruning persisted.
	records, err := e.store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(records) != 1 || records[0].ID != inflight.ID {
		t.Fatalf("prune not written back, store has %+v", records)
	}
}

func TestListOrdersOneShotByFireTime(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t)
	now := time.Now()
	e.now = fixedClock(now)
	ctx := context.Background()

	later, err := e.ScheduleOnce(ctx, now.Add(2*time.Hour), "later")
	if err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}
	sooner, err := e.ScheduleOnce(ctx, now.Add(time.Hour), "sooner")
	if err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}

	lst, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(lst.OneShot) != 2 || lst.OneShot[0].ID != sooner.ID || lst.OneShot[1].ID != later.ID {
		t.Fatalf("listing not ordered by fire time: %+v", lst.OneShot)
	}
}

func TestCancelByMessageSubstring(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t)
	now := time.Now()
	e.now = fixedClock(now)
	ctx := context.Background()

	if _, err := e.ScheduleOnce(ctx, now.Add(time.Hour), "Buy TEA bags"); err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}
	if _, err := e.ScheduleOnce(ctx, now.Add(time.Hour), "water plants"); err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}

	cancelled, err := e.Cancel(ctx, "tea")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if len(cancelled) != 1 || cancelled[0].Message != "Buy TEA bags" {
		t.Fatalf("unexpected cancel matches: %+v", cancelled)
	}

	if _, err := e.Cancel(ctx, "nothing-matches-this"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestClearAll(t *testing.T) {
	t.Parallel()
	e, reg, _ := newTestEngine(t)
	now := time.Now()
	e.now = fixedClock(now)
	ctx := context.Background()

	if _, err := e.ScheduleOnce(ctx, now.Add(time.Hour), "a"); err != nil {
		t.Fatalf("ScheduleOnce error: %v", err)
	}
	if _, err := e.ScheduleRecurring(ctx, time.Minute, "b"); err != nil {
		t.Fatalf("ScheduleRecurring error: %v", err)
	}

	n, err := e.ClearAll(ctx)
	if err != nil {
		t.Fatalf("ClearAll error: %v", err)
	}
	if n != 2 {
		t.Fatalf("cleared %d, want 2", n)
	}
	if len(reg.active) != 0 {
		t.Fatalf("registrations left behind: %v", reg.active)
	}
	lst, err := e.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if !lst.Empty() {
		t.Fatalf("expected empty listing, got %+v", lst)
	}
}

func TestScheduleProducesDistinctIDs(t *testing.T) {
	t.Parallel()
	e, _, _ := newTestEngine(t)
	now := time.Now()
	e.now = fixedClock(now)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		res, err := e.ScheduleOnce(ctx, now.Add(time.Hour), "same message")
		if err != nil {
			t.Fatalf("ScheduleOnce error: %v", err)
		}
		if len(res.ID) != 8 {
			t.Fatalf("id %q, want 8 chars", res.ID)
		}
		if seen[res.ID] {
			t.Fatalf("duplicate id %s", res.ID)
		}
		seen[res.ID] = true
	}
}
