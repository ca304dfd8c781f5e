package reminder

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Store is the persistence contract the service needs.
type Store interface {
	Insert(ctx context.Context, r Reminder) (Reminder, error)
	FindForUser(ctx context.Context, id, userID string) (Reminder, error)
	ListForUser(ctx context.Context, userID string) ([]Reminder, error)
	Update(ctx context.Context, r Reminder) error
	Delete(ctx context.Context, id, userID string) error
	ListDue(ctx context.Context, before time.Time) ([]Reminder, error)
	SetNotified(ctx context.Context, id string) error
}

// Service implements per-user reminders and the notification cycle.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a reminder service.
func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Input carries the user-editable reminder fields.
type Input struct {
	Title       string
	Description string
	DueAt       time.Time
	Priority    string
	Color       string
	Repeat      string
}

func (in *Input) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return errors.New("title is required")
	}
	if in.DueAt.IsZero() {
		return errors.New("date and time is required")
	}
	if in.Priority == "" {
		in.Priority = PriorityLow
	}
	if !validPriority(in.Priority) {
		return errors.New("invalid priority")
	}
	if in.Color == "" {
		in.Color = "#3B82F6"
	}
	if in.Repeat == "" {
		in.Repeat = RepeatNone
	}
	if !validRepeat(in.Repeat) {
		return errors.New("invalid repeat")
	}
	return nil
}

// Create adds a reminder for the user.
func (s *Service) Create(ctx context.Context, userID string, in Input) (Reminder, error) {
	if err := in.normalize(); err != nil {
		return Reminder{}, err
	}
	return s.store.Insert(ctx, Reminder{
		UserID:      userID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		DueAt:       in.DueAt,
		Priority:    in.Priority,
		Color:       in.Color,
		Repeat:      in.Repeat,
	})
}

// List returns the user's reminders ordered by due time.
func (s *Service) List(ctx context.Context, userID string) ([]Reminder, error) {
	return s.store.ListForUser(ctx, userID)
}

// Get returns one reminder owned by the user.
func (s *Service) Get(ctx context.Context, id, userID string) (Reminder, error) {
	return s.store.FindForUser(ctx, id, userID)
}

// Update replaces the editable fields and resets the notified flag so a
// rescheduled reminder fires again.
func (s *Service) Update(ctx context.Context, id, userID string, in Input) (Reminder, error) {
	if err := in.normalize(); err != nil {
		return Reminder{}, err
	}
	r, err := s.store.FindForUser(ctx, id, userID)
	if err != nil {
		return Reminder{}, err
	}
	r.Title = in.Title
	r.Description = strings.TrimSpace(in.Description)
	r.DueAt = in.DueAt
	r.Priority = in.Priority
	r.Color = in.Color
	r.Repeat = in.Repeat
	r.Notified = false
	if err := s.store.Update(ctx, r); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// Delete removes a reminder owned by the user.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.store.Delete(ctx, id, userID)
}

// Due returns unnotified reminders whose time has come.
func (s *Service) Due(ctx context.Context) ([]Reminder, error) {
	return s.store.ListDue(ctx, s.now())
}

// Dispatch marks a reminder notified and, for repeating reminders, creates
// the next occurrence when it still lies in the future.
func (s *Service) Dispatch(ctx context.Context, r Reminder) error {
	if err := s.store.SetNotified(ctx, r.ID); err != nil {
		return err
	}
	if r.Repeat == RepeatNone {
		return nil
	}
	next := nextOccurrence(r.DueAt, r.Repeat)
	if !next.After(s.now()) {
		return nil
	}
	_, err := s.store.Insert(ctx, Reminder{
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		DueAt:       next,
		Priority:    r.Priority,
		Color:       r.Color,
		Repeat:      r.Repeat,
	})
	return err
}
