package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type fakeStore struct {
	users  []User
	nextID int
}

func (f *fakeStore) Insert(_ context.Context, u User) (User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.LoginID == u.LoginID {
			return User{}, ErrExists
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	u.CreatedAt = time.Now()
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeStore) FindByLogin(_ context.Context, emailOrID string) (User, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(emailOrID) || u.LoginID == emailOrID {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) FindByID(_ context.Context, id string) (User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) List(_ context.Context, role string) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type fakeProvisioner struct {
	calls []string
	err   error
}

func (f *fakeProvisioner) ProvisionForTeacher(_ context.Context, teacherID, teacherName string) error {
	f.calls = append(f.calls, teacherID+"/"+teacherName)
	return f.err
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:     "Asha",
		Email:    "Asha@Example.com",
		LoginID:  "asha01",
		Password: "s3cret!",
		Role:     RoleStudent,
	}
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil)

	u, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if u.Email != "asha@example.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret!" {
		t.Error("password not hashed")
	}
	if u.ID == "" {
		t.Error("id not assigned")
	}
}

func TestRegisterValidation(t *testing.T) {
	mutate := func(fn func(*RegisterInput)) RegisterInput {
		in := validInput()
		fn(&in)
		return in
	}
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"blank name", mutate(func(in *RegisterInput) { in.Name = "  " })},
		{"blank email", mutate(func(in *RegisterInput) { in.Email = "" })},
		{"blank login id", mutate(func(in *RegisterInput) { in.LoginID = "" })},
		{"short password", mutate(func(in *RegisterInput) { in.Password = "abc" })},
		{"unknown role", mutate(func(in *RegisterInput) { in.Role = "superuser" })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeStore{}, nil)
			if _, err := svc.Register(context.Background(), tt.in); err == nil {
				t.Fatal("invalid input accepted")
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := NewService(&fakeStore{}, nil)
	ctx := context.Background()
	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(ctx, validInput()); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate register error = %v, want ErrExists", err)
	}
}

func TestRegisterProvisionsTeacherCommunity(t *testing.T) {
	prov := &fakeProvisioner{}
	svc := NewService(&fakeStore{}, prov)
	ctx := context.Background()

	in := validInput()
	in.Role = RoleTeacher
	u, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if len(prov.calls) != 1 || prov.calls[0] != u.ID+"/Asha" {
		t.Fatalf("provisioner calls = %v", prov.calls)
	}

	// Students do not get a community.
	in2 := validInput()
	in2.Email = "other@example.com"
	in2.LoginID = "other01"
	if _, err := svc.Register(ctx, in2); err != nil {
		t.Fatalf("student register failed: %v", err)
	}
	if len(prov.calls) != 1 {
		t.Fatalf("provisioner called for a student: %v", prov.calls)
	}
}

func TestRegisterToleratesProvisionFailure(t *testing.T) {
	prov := &fakeProvisioner{err: errors.New("boom")}
	svc := NewService(&fakeStore{}, prov)

	in := validInput()
	in.Role = RoleTeacher
	u, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register failed despite account creation succeeding: %v", err)
	}
	if u.ID == "" {
		t.Fatal("no user returned")
	}
}

func TestLoginByEmailOrLoginID(t *testing.T) {
	svc := NewService(&fakeStore{}, nil)
	ctx := context.Background()
	if _, err := svc.Register(ctx, validInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(ctx, "asha@example.com", "s3cret!"); err != nil {
		t.Errorf("login by email failed: %v", err)
	}
	if _, err := svc.Login(ctx, "asha01", "s3cret!"); err != nil {
		t.Errorf("login by login id failed: %v", err)
	}
	if _, err := svc.Login(ctx, "asha01", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("wrong password error = %v, want ErrBadCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody", "s3cret!"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("empty credentials error = %v, want ErrBadCredentials", err)
	}
}

func TestListFiltersByRole(t *testing.T) {
	svc := NewService(&fakeStore{}, nil)
	ctx := context.Background()

	for i, role := range []string{RoleStudent, RoleStudent, RoleTeacher} {
		in := validInput()
		in.Email = fmt.Sprintf("u%d@example.com", i)
		in.LoginID = fmt.Sprintf("u%d", i)
		in.Role = role
		if _, err := svc.Register(ctx, in); err != nil {
			t.Fatalf("register %d failed: %v", i, err)
		}
	}

	students, err := svc.List(ctx, RoleStudent)
	if err != nil || len(students) != 2 {
		t.Fatalf("students = %v, %v, want 2", students, err)
	}
	all, err := svc.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("all users = %v, %v, want 3", all, err)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleStudent, RoleTeacher, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false", role)
		}
	}
	for _, role := range []string{"", "Student", "superuser"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true", role)
		}
	}
}
