package community

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeStore struct {
	communities map[string]Community
	members     map[string]map[string]bool
	messages    map[string]Message
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		communities: map[string]Community{},
		members:     map[string]map[string]bool{},
		messages:    map[string]Message{},
	}
}

func (f *fakeStore) Insert(_ context.Context, c Community) (Community, error) {
	f.nextID++
	c.ID = fmt.Sprintf("com-%d", f.nextID)
	c.CreatedAt = time.Now()
	f.communities[c.ID] = c
	f.members[c.ID] = map[string]bool{}
	return c, nil
}

func (f *fakeStore) NameExists(_ context.Context, name string) (bool, error) {
	for _, c := range f.communities {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (Community, error) {
	c, ok := f.communities[id]
	if !ok {
		return Community{}, ErrNotFound
	}
	for m := range f.members[id] {
		c.Members = append(c.Members, m)
	}
	return c, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]Community, error) {
	var out []Community
	for id := range f.communities {
		c, _ := f.FindByID(context.Background(), id)
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	delete(f.communities, id)
	delete(f.members, id)
	return nil
}

func (f *fakeStore) AddMember(_ context.Context, communityID, userID string) error {
	set := f.members[communityID]
	if set[userID] {
		return ErrAlreadyMember
	}
	set[userID] = true
	return nil
}

func (f *fakeStore) RemoveMember(_ context.Context, communityID, userID string) error {
	set := f.members[communityID]
	if !set[userID] {
		return ErrNotMember
	}
	delete(set, userID)
	return nil
}

func (f *fakeStore) IsMember(_ context.Context, communityID, userID string) (bool, error) {
	return f.members[communityID][userID], nil
}

func (f *fakeStore) InsertMessage(_ context.Context, m Message) (Message, error) {
	f.nextID++
	m.ID = fmt.Sprintf("msg-%d", f.nextID)
	m.CreatedAt = time.Now()
	f.messages[m.ID] = m
	return m, nil
}

func (f *fakeStore) FindMessage(_ context.Context, communityID, messageID string) (Message, error) {
	m, ok := f.messages[messageID]
	if !ok || m.CommunityID != communityID {
		return Message{}, ErrMessageNotFound
	}
	return m, nil
}

func (f *fakeStore) UpdateMessageText(_ context.Context, messageID, text string) error {
	m, ok := f.messages[messageID]
	if !ok {
		return ErrMessageNotFound
	}
	m.Text = text
	f.messages[messageID] = m
	return nil
}

func (f *fakeStore) DeleteMessage(_ context.Context, messageID string) error {
	delete(f.messages, messageID)
	return nil
}

func (f *fakeStore) ListMessages(_ context.Context, communityID string) ([]Message, error) {
	var out []Message
	for _, m := range f.messages {
		if m.CommunityID == communityID {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestValidateAttachment(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantType string
		wantErr  error
	}{
		{"pdf", "syllabus.pdf", 1024, "pdf", nil},
		{"docx uppercase extension", "notes.DOCX", 1024, "docx", nil},
		{"doc at the cap", "old.doc", MaxFileSize, "doc", nil},
		{"over the cap", "big.pdf", MaxFileSize + 1, "", ErrFileTooLarge},
		{"disallowed extension", "run.exe", 10, "", ErrBadFileType},
		{"no extension", "README", 10, "", ErrBadFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAttachment(tt.filename, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.wantType {
				t.Fatalf("file type = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestProvisionForTeacher(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.ProvisionForTeacher(ctx, "teacher-1", "Asha"); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	all, _ := svc.ListAll(ctx)
	if len(all) != 1 {
		t.Fatalf("got %d communities, want 1", len(all))
	}
	c := all[0]
	if c.Name != "Asha's Community" {
		t.Errorf("name = %q", c.Name)
	}
	if c.TeacherID != "teacher-1" || !c.IsActive {
		t.Errorf("community = %+v", c)
	}
	if !store.members[c.ID]["teacher-1"] {
		t.Error("teacher not a member of their own community")
	}

	// Same display name again gets a disambiguated community name.
	if err := svc.ProvisionForTeacher(ctx, "teacher-2", "Asha"); err != nil {
		t.Fatalf("second provision failed: %v", err)
	}
	all, _ = svc.ListAll(ctx)
	names := map[string]bool{}
	for _, c := range all {
		names[c.Name] = true
	}
	if len(names) != 2 {
		t.Fatalf("community names collide: %v", names)
	}
}

func TestJoinAndLeave(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()
	svc.ProvisionForTeacher(ctx, "teacher-1", "Asha")
	all, _ := svc.ListAll(ctx)
	id := all[0].ID

	if err := svc.Join(ctx, id, "student-1"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := svc.Join(ctx, id, "student-1"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("second join error = %v, want ErrAlreadyMember", err)
	}
	if err := svc.Leave(ctx, id, "student-1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if err := svc.Leave(ctx, id, "student-1"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("second leave error = %v, want ErrNotMember", err)
	}
	if err := svc.Join(ctx, "missing", "student-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("join missing community error = %v, want ErrNotFound", err)
	}
}

func provisioned(t *testing.T) (*Service, string) {
	t.Helper()
	svc := NewService(newFakeStore())
	ctx := context.Background()
	if err := svc.ProvisionForTeacher(ctx, "teacher-1", "Asha"); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	all, _ := svc.ListAll(ctx)
	return svc, all[0].ID
}

func TestPostMessagePermissions(t *testing.T) {
	tests := []struct {
		name    string
		author  string
		role    string
		wantErr error
	}{
		{"owning teacher", "teacher-1", "teacher", nil},
		{"admin", "admin-1", "admin", nil},
		{"other teacher", "teacher-2", "teacher", ErrNotTeacher},
		{"student", "student-1", "student", ErrNotTeacher},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, id := provisioned(t)
			_, err := svc.PostMessage(context.Background(), id, tt.author, tt.role, "hello", nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostMessageContentRules(t *testing.T) {
	svc, id := provisioned(t)
	ctx := context.Background()

	if _, err := svc.PostMessage(ctx, id, "teacher-1", "teacher", "   ", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("blank message error = %v, want ErrEmptyMessage", err)
	}

	file := &FileMeta{URL: "https://files/x.pdf", Filename: "x.pdf", FileType: "pdf", FileSize: 100}
	m, err := svc.PostMessage(ctx, id, "teacher-1", "teacher", "", file)
	if err != nil {
		t.Fatalf("file-only message failed: %v", err)
	}
	if m.File == nil || m.File.Filename != "x.pdf" {
		t.Errorf("message file = %+v", m.File)
	}

	bad := &FileMeta{Filename: "x.exe", FileSize: 100}
	if _, err := svc.PostMessage(ctx, id, "teacher-1", "teacher", "", bad); !errors.Is(err, ErrBadFileType) {
		t.Fatalf("bad attachment error = %v, want ErrBadFileType", err)
	}
}

func TestUpdateAndDeleteMessageAuthorOnly(t *testing.T) {
	svc, id := provisioned(t)
	ctx := context.Background()
	m, err := svc.PostMessage(ctx, id, "teacher-1", "teacher", "original", nil)
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	if err := svc.UpdateMessage(ctx, id, m.ID, "admin-1", "edited"); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("foreign update error = %v, want ErrNotAuthor", err)
	}
	if err := svc.UpdateMessage(ctx, id, m.ID, "teacher-1", "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("blank update error = %v, want ErrEmptyMessage", err)
	}
	if err := svc.UpdateMessage(ctx, id, m.ID, "teacher-1", "edited"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	msgs, _ := svc.Messages(ctx, id)
	if len(msgs) != 1 || msgs[0].Text != "edited" {
		t.Fatalf("messages = %+v", msgs)
	}

	if err := svc.DeleteMessage(ctx, id, m.ID, "admin-1"); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("foreign delete error = %v, want ErrNotAuthor", err)
	}
	if err := svc.DeleteMessage(ctx, id, m.ID, "teacher-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeleteMessage(ctx, id, m.ID, "teacher-1"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("delete after delete error = %v, want ErrMessageNotFound", err)
	}
}
