package reminder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeStore struct {
	reminders []Reminder
	nextID    int
}

func (f *fakeStore) Insert(_ context.Context, r Reminder) (Reminder, error) {
	f.nextID++
	r.ID = fmt.Sprintf("rem-%d", f.nextID)
	r.CreatedAt = time.Now()
	f.reminders = append(f.reminders, r)
	return r, nil
}

func (f *fakeStore) FindForUser(_ context.Context, id, userID string) (Reminder, error) {
	for _, r := range f.reminders {
		if r.ID == id && r.UserID == userID {
			return r, nil
		}
	}
	return Reminder{}, ErrNotFound
}

func (f *fakeStore) ListForUser(_ context.Context, userID string) ([]Reminder, error) {
	var out []Reminder
	for _, r := range f.reminders {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, r Reminder) error {
	for i := range f.reminders {
		if f.reminders[i].ID == r.ID {
			f.reminders[i] = r
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, id, userID string) error {
	for i, r := range f.reminders {
		if r.ID == id && r.UserID == userID {
			f.reminders = append(f.reminders[:i], f.reminders[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) ListDue(_ context.Context, before time.Time) ([]Reminder, error) {
	var out []Reminder
	for _, r := range f.reminders {
		if !r.Notified && !r.DueAt.After(before) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) SetNotified(_ context.Context, id string) error {
	for i := range f.reminders {
		if f.reminders[i].ID == id {
			f.reminders[i].Notified = true
			return nil
		}
	}
	return ErrNotFound
}

func newTestService() (*Service, *fakeStore, *time.Time) {
	store := &fakeStore{}
	svc := NewService(store)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := &now
	svc.now = func() time.Time { return *clock }
	return svc, store, clock
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _, clock := newTestService()
	r, err := svc.Create(context.Background(), "user-1", Input{
		Title: "  Submit grades  ",
		DueAt: clock.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if r.Title != "Submit grades" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Priority != PriorityLow || r.Color != "#3B82F6" || r.Repeat != RepeatNone {
		t.Errorf("defaults not applied: %+v", r)
	}
	if r.Notified {
		t.Error("new reminder already notified")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, clock := newTestService()
	due := clock.Add(time.Hour)

	tests := []struct {
		name string
		in   Input
	}{
		{"blank title", Input{Title: "  ", DueAt: due}},
		{"zero due time", Input{Title: "x"}},
		{"bad priority", Input{Title: "x", DueAt: due, Priority: "urgent"}},
		{"bad repeat", Input{Title: "x", DueAt: due, Repeat: "hourly"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "user-1", tt.in); err == nil {
				t.Fatal("invalid input accepted")
			}
		})
	}
}

func TestUpdateResetsNotified(t *testing.T) {
	svc, store, clock := newTestService()
	ctx := context.Background()
	r, _ := svc.Create(ctx, "user-1", Input{Title: "x", DueAt: clock.Add(time.Hour)})
	if err := store.SetNotified(ctx, r.ID); err != nil {
		t.Fatalf("set notified failed: %v", err)
	}

	updated, err := svc.Update(ctx, r.ID, "user-1", Input{
		Title:    "y",
		DueAt:    clock.Add(2 * time.Hour),
		Priority: PriorityHigh,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Notified {
		t.Error("notified flag survived a reschedule")
	}
	if updated.Title != "y" || updated.Priority != PriorityHigh {
		t.Errorf("updated = %+v", updated)
	}
}

func TestUpdateScopedToOwner(t *testing.T) {
	svc, _, clock := newTestService()
	ctx := context.Background()
	r, _ := svc.Create(ctx, "user-1", Input{Title: "x", DueAt: clock.Add(time.Hour)})

	_, err := svc.Update(ctx, r.ID, "user-2", Input{Title: "y", DueAt: clock.Add(time.Hour)})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign update error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, r.ID, "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete error = %v, want ErrNotFound", err)
	}
}

func TestDueSkipsNotifiedAndFuture(t *testing.T) {
	svc, store, clock := newTestService()
	ctx := context.Background()

	past, _ := svc.Create(ctx, "user-1", Input{Title: "past", DueAt: clock.Add(-time.Minute)})
	done, _ := svc.Create(ctx, "user-1", Input{Title: "done", DueAt: clock.Add(-time.Hour)})
	svc.Create(ctx, "user-1", Input{Title: "future", DueAt: clock.Add(time.Hour)})
	store.SetNotified(ctx, done.ID)

	due, err := svc.Due(ctx)
	if err != nil {
		t.Fatalf("due failed: %v", err)
	}
	if len(due) != 1 || due[0].ID != past.ID {
		t.Fatalf("due = %+v, want only %s", due, past.ID)
	}
}

func TestNextOccurrence(t *testing.T) {
	due := time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		repeat string
		want   time.Time
	}{
		{RepeatDaily, due.AddDate(0, 0, 1)},
		{RepeatWeekly, due.AddDate(0, 0, 7)},
		{RepeatMonthly, due.AddDate(0, 1, 0)},
		{RepeatNone, due},
	}
	for _, tt := range tests {
		if got := nextOccurrence(due, tt.repeat); !got.Equal(tt.want) {
			t.Errorf("nextOccurrence(%s) = %v, want %v", tt.repeat, got, tt.want)
		}
	}
}

func TestDispatchReschedulesRepeating(t *testing.T) {
	svc, store, clock := newTestService()
	ctx := context.Background()

	r, _ := svc.Create(ctx, "user-1", Input{
		Title:  "standup",
		DueAt:  clock.Add(-time.Minute),
		Repeat: RepeatDaily,
	})
	if err := svc.Dispatch(ctx, r); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	orig, _ := store.FindForUser(ctx, r.ID, "user-1")
	if !orig.Notified {
		t.Error("dispatched reminder not marked notified")
	}

	all, _ := store.ListForUser(ctx, "user-1")
	if len(all) != 2 {
		t.Fatalf("got %d reminders after dispatch, want 2", len(all))
	}
	next := all[1]
	if !next.DueAt.Equal(r.DueAt.AddDate(0, 0, 1)) {
		t.Errorf("next due = %v, want %v", next.DueAt, r.DueAt.AddDate(0, 0, 1))
	}
	if next.Notified {
		t.Error("rescheduled reminder already notified")
	}
}

func TestDispatchOneShotDoesNotReschedule(t *testing.T) {
	svc, store, clock := newTestService()
	ctx := context.Background()
	r, _ := svc.Create(ctx, "user-1", Input{Title: "once", DueAt: clock.Add(-time.Minute)})

	if err := svc.Dispatch(ctx, r); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	all, _ := store.ListForUser(ctx, "user-1")
	if len(all) != 1 {
		t.Fatalf("got %d reminders, want 1", len(all))
	}
}

func TestDispatchSkipsStaleOccurrences(t *testing.T) {
	svc, store, clock := newTestService()
	ctx := context.Background()

	// Due two days ago; the next daily occurrence is still in the past, so
	// no new row is created.
	r, _ := svc.Create(ctx, "user-1", Input{
		Title:  "stale",
		DueAt:  clock.AddDate(0, 0, -2),
		Repeat: RepeatDaily,
	})
	if err := svc.Dispatch(ctx, r); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	all, _ := store.ListForUser(ctx, "user-1")
	if len(all) != 1 {
		t.Fatalf("got %d reminders, want 1 (stale occurrence rescheduled)", len(all))
	}
}
