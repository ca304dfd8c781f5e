package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"classhub/internal/auth"
)

var (
	// ErrNotFound indicates no user matched the query.
	ErrNotFound = errors.New("user not found")
	// ErrExists indicates the login id or email is already taken.
	ErrExists = errors.New("user already exists")
	// ErrBadCredentials indicates a failed password check.
	ErrBadCredentials = errors.New("invalid credentials")
)

// Store is the persistence contract the service needs.
type Store interface {
	Insert(ctx context.Context, u User) (User, error)
	FindByLogin(ctx context.Context, emailOrID string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context, role string) ([]User, error)
	Delete(ctx context.Context, id string) error
}

// CommunityProvisioner creates the default community for newly registered
// teachers. Optional; a nil provisioner skips the step.
type CommunityProvisioner interface {
	ProvisionForTeacher(ctx context.Context, teacherID, teacherName string) error
}

// Service implements account registration, login, and admin operations.
type Service struct {
	store       Store
	communities CommunityProvisioner
}

// NewService creates a user service.
func NewService(store Store, communities CommunityProvisioner) *Service {
	return &Service{store: store, communities: communities}
}

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	LoginID  string
	Password string
	Role     string
}

// Register validates the input, hashes the password, and creates the account.
// New teachers get a community provisioned for them.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.LoginID = strings.TrimSpace(in.LoginID)
	if in.Name == "" || in.Email == "" || in.LoginID == "" || in.Password == "" {
		return User{}, errors.New("all fields are required")
	}
	if len(in.Password) < 6 {
		return User{}, errors.New("password must be at least 6 characters")
	}
	if !ValidRole(in.Role) {
		return User{}, fmt.Errorf("%q is not a valid role", in.Role)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.Insert(ctx, User{
		Name:         in.Name,
		Email:        in.Email,
		LoginID:      in.LoginID,
		Role:         in.Role,
		PasswordHash: hash,
	})
	if err != nil {
		return User{}, err
	}

	if created.Role == RoleTeacher && s.communities != nil {
		if err := s.communities.ProvisionForTeacher(ctx, created.ID, created.Name); err != nil {
			// Account creation already succeeded; the community can be
			// provisioned later.
			return created, nil
		}
	}
	return created, nil
}

// Login authenticates by email or login id and returns the matching user.
func (s *Service) Login(ctx context.Context, emailOrID, password string) (User, error) {
	if emailOrID == "" || password == "" {
		return User{}, ErrBadCredentials
	}
	u, err := s.store.FindByLogin(ctx, strings.TrimSpace(emailOrID))
	if err != nil {
		return User{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return User{}, ErrBadCredentials
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.store.FindByID(ctx, id)
}

// List returns users, optionally filtered by role.
func (s *Service) List(ctx context.Context, role string) ([]User, error) {
	return s.store.List(ctx, role)
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
