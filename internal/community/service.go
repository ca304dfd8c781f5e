package community

import (
	"context"
	"fmt"
	"strings"
)

// Store is the persistence contract the service needs.
type Store interface {
	Insert(ctx context.Context, c Community) (Community, error)
	NameExists(ctx context.Context, name string) (bool, error)
	FindByID(ctx context.Context, id string) (Community, error)
	ListAll(ctx context.Context) ([]Community, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, communityID, userID string) error
	RemoveMember(ctx context.Context, communityID, userID string) error
	IsMember(ctx context.Context, communityID, userID string) (bool, error)
	InsertMessage(ctx context.Context, m Message) (Message, error)
	FindMessage(ctx context.Context, communityID, messageID string) (Message, error)
	UpdateMessageText(ctx context.Context, messageID, text string) error
	DeleteMessage(ctx context.Context, messageID string) error
	ListMessages(ctx context.Context, communityID string) ([]Message, error)
}

// Service implements community boards and their messages.
type Service struct {
	store Store
}

// NewService creates a community service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ProvisionForTeacher creates the default community for a newly registered
// teacher, with the teacher as first member. Name collisions get the teacher
// id suffixed.
func (s *Service) ProvisionForTeacher(ctx context.Context, teacherID, teacherName string) error {
	name := fmt.Sprintf("%s's Community", teacherName)
	taken, err := s.store.NameExists(ctx, name)
	if err != nil {
		return err
	}
	if taken {
		name = fmt.Sprintf("%s (%s)", name, teacherID)
	}

	c, err := s.store.Insert(ctx, Community{
		Name:        name,
		Description: fmt.Sprintf("Welcome to %s's community", teacherName),
		TeacherID:   teacherID,
		IsActive:    true,
	})
	if err != nil {
		return err
	}
	return s.store.AddMember(ctx, c.ID, teacherID)
}

// ListAll returns every community with its member ids.
func (s *Service) ListAll(ctx context.Context) ([]Community, error) {
	return s.store.ListAll(ctx)
}

// Get returns one community.
func (s *Service) Get(ctx context.Context, id string) (Community, error) {
	return s.store.FindByID(ctx, id)
}

// Join adds a user as a member.
func (s *Service) Join(ctx context.Context, communityID, userID string) error {
	if _, err := s.store.FindByID(ctx, communityID); err != nil {
		return err
	}
	return s.store.AddMember(ctx, communityID, userID)
}

// Leave removes a user from the member list.
func (s *Service) Leave(ctx context.Context, communityID, userID string) error {
	if _, err := s.store.FindByID(ctx, communityID); err != nil {
		return err
	}
	return s.store.RemoveMember(ctx, communityID, userID)
}

// PostMessage posts text and/or an attachment to the board. Only the owning
// teacher or an admin may post. Attachment rules are enforced here even when
// the caller pre-validated.
func (s *Service) PostMessage(ctx context.Context, communityID, authorID, authorRole, text string, file *FileMeta) (Message, error) {
	c, err := s.store.FindByID(ctx, communityID)
	if err != nil {
		return Message{}, err
	}
	if c.TeacherID != authorID && authorRole != "admin" {
		return Message{}, ErrNotTeacher
	}

	text = strings.TrimSpace(text)
	if text == "" && file == nil {
		return Message{}, ErrEmptyMessage
	}
	if file != nil {
		if _, err := ValidateAttachment(file.Filename, file.FileSize); err != nil {
			return Message{}, err
		}
	}

	return s.store.InsertMessage(ctx, Message{
		CommunityID: communityID,
		AuthorID:    authorID,
		Text:        text,
		File:        file,
	})
}

// UpdateMessage edits a message's text. Only the author may edit.
func (s *Service) UpdateMessage(ctx context.Context, communityID, messageID, callerID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	m, err := s.store.FindMessage(ctx, communityID, messageID)
	if err != nil {
		return err
	}
	if m.AuthorID != callerID {
		return ErrNotAuthor
	}
	return s.store.UpdateMessageText(ctx, messageID, text)
}

// DeleteMessage removes a message. Only the author may delete.
func (s *Service) DeleteMessage(ctx context.Context, communityID, messageID, callerID string) error {
	m, err := s.store.FindMessage(ctx, communityID, messageID)
	if err != nil {
		return err
	}
	if m.AuthorID != callerID {
		return ErrNotAuthor
	}
	return s.store.DeleteMessage(ctx, messageID)
}

// Messages returns a community's messages, oldest first.
func (s *Service) Messages(ctx context.Context, communityID string) ([]Message, error) {
	if _, err := s.store.FindByID(ctx, communityID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, communityID)
}

// Delete removes a community (admin operation).
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
