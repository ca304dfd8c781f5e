package classroom

import (
	"context"
	"errors"
	"strings"
)

// Store is the persistence contract the service needs.
type Store interface {
	Insert(ctx context.Context, c Classroom) (Classroom, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	FindByID(ctx context.Context, id string) (Classroom, error)
	FindByCode(ctx context.Context, code string) (Classroom, error)
	ListCreatedBy(ctx context.Context, userID string) ([]Classroom, error)
	ListJoinedBy(ctx context.Context, userID string) ([]Classroom, error)
	ListAll(ctx context.Context) ([]Classroom, error)
	Update(ctx context.Context, c Classroom) error
	Delete(ctx context.Context, id string) error
	AddStudent(ctx context.Context, classroomID, studentID string) error
	RemoveStudent(ctx context.Context, classroomID, studentID string) error
	IsCreator(ctx context.Context, classroomID, userID string) (bool, error)
	IsMember(ctx context.Context, classroomID, userID string) (bool, error)
	ListMembers(ctx context.Context, classroomID string) ([]Member, error)
}

// Service implements classroom management and membership.
type Service struct {
	store Store
}

// NewService creates a classroom service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create makes a new classroom with a unique join code. The creator is
// auto-joined so their own attendance queries resolve.
func (s *Service) Create(ctx context.Context, creatorID, name, description string) (Classroom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Classroom{}, errors.New("classroom name is required")
	}

	code := newCode()
	for {
		taken, err := s.store.CodeExists(ctx, code)
		if err != nil {
			return Classroom{}, err
		}
		if !taken {
			break
		}
		code = newCode()
	}

	created, err := s.store.Insert(ctx, Classroom{
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   creatorID,
	})
	if err != nil {
		return Classroom{}, err
	}
	if err := s.store.AddStudent(ctx, created.ID, creatorID); err != nil && !errors.Is(err, ErrAlreadyJoined) {
		return Classroom{}, err
	}
	return created, nil
}

// Join adds a student to the classroom identified by its code.
func (s *Service) Join(ctx context.Context, code, studentID string) (Classroom, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Classroom{}, errors.New("classroom code is required")
	}
	c, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return Classroom{}, err
	}
	if err := s.store.AddStudent(ctx, c.ID, studentID); err != nil {
		return Classroom{}, err
	}
	return c, nil
}

// Leave removes a student from the classroom.
func (s *Service) Leave(ctx context.Context, classroomID, studentID string) error {
	if _, err := s.store.FindByID(ctx, classroomID); err != nil {
		return err
	}
	return s.store.RemoveStudent(ctx, classroomID, studentID)
}

// Get returns a classroom by id.
func (s *Service) Get(ctx context.Context, id string) (Classroom, error) {
	return s.store.FindByID(ctx, id)
}

// ListFor returns the classrooms a user sees: created ones for teachers and
// admins, joined ones for students.
func (s *Service) ListFor(ctx context.Context, userID, role string) ([]Classroom, error) {
	if role == "teacher" || role == "admin" {
		return s.store.ListCreatedBy(ctx, userID)
	}
	return s.store.ListJoinedBy(ctx, userID)
}

// ListAll returns every classroom.
func (s *Service) ListAll(ctx context.Context) ([]Classroom, error) {
	return s.store.ListAll(ctx)
}

// Update edits name and description. Only the creator or an admin may edit.
func (s *Service) Update(ctx context.Context, id, callerID, callerRole, name, description string) (Classroom, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Classroom{}, err
	}
	if c.CreatedBy != callerID && callerRole != "admin" {
		return Classroom{}, ErrNotCreator
	}
	if name = strings.TrimSpace(name); name != "" {
		c.Name = name
	}
	c.Description = strings.TrimSpace(description)
	if err := s.store.Update(ctx, c); err != nil {
		return Classroom{}, err
	}
	return c, nil
}

// Delete removes a classroom. Only the creator or an admin may delete.
func (s *Service) Delete(ctx context.Context, id, callerID, callerRole string) error {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c.CreatedBy != callerID && callerRole != "admin" {
		return ErrNotCreator
	}
	return s.store.Delete(ctx, id)
}

// Members returns the roster of a classroom.
func (s *Service) Members(ctx context.Context, classroomID string) ([]Member, error) {
	return s.store.ListMembers(ctx, classroomID)
}

// IsCreator reports whether userID created the classroom.
func (s *Service) IsCreator(ctx context.Context, classroomID, userID string) (bool, error) {
	return s.store.IsCreator(ctx, classroomID, userID)
}

// IsMember reports whether userID has joined the classroom.
func (s *Service) IsMember(ctx context.Context, classroomID, userID string) (bool, error) {
	return s.store.IsMember(ctx, classroomID, userID)
}
