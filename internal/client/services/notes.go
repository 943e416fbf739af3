package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/schedsync/internal/client/client"
	"github.com/dmitrijs2005/schedsync/internal/client/models"
	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/protocol"
	"github.com/google/uuid"
)

var colorCodePattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type NoteService interface {
	Add(ctx context.Context, f protocol.NoteFields) (*models.Note, error)
	List(ctx context.Context) ([]models.Note, error)
	Get(ctx context.Context, ref string) (*models.Note, error)
	Update(ctx context.Context, ref string, edit func(*protocol.NoteFields)) (*models.Note, error)
	Delete(ctx context.Context, ref string) error
}

type noteService struct {
	repos *client.Repositories
}

func NewNoteService(repos *client.Repositories) NoteService {
	return &noteService{repos: repos}
}

func validateNote(f *protocol.NoteFields) error {
	if f.ColorCode != nil && !colorCodePattern.MatchString(*f.ColorCode) {
		return fmt.Errorf("%w: color must look like #rrggbb", common.ErrorValidation)
	}
	return nil
}

func (s *noteService) Add(ctx context.Context, f protocol.NoteFields) (*models.Note, error) {
	if err := validateNote(&f); err != nil {
		return nil, err
	}
	me, err := owner(ctx, s.repos)
	if err != nil {
		return nil, err
	}

	n := &models.Note{LocalID: uuid.NewString(), UserID: me.ID, NoteFields: f}
	if err := s.repos.Notes.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return n, nil
}

func (s *noteService) List(ctx context.Context) ([]models.Note, error) {
	return s.repos.Notes.List(ctx)
}

func (s *noteService) Get(ctx context.Context, ref string) (*models.Note, error) {
	list, err := s.repos.Notes.List(ctx)
	if err != nil {
		return nil, err
	}
	return resolve(list, ref,
		func(n *models.Note) string { return n.LocalID },
		func(n *models.Note) int64 { return n.ServerID })
}

func (s *noteService) Update(ctx context.Context, ref string, edit func(*protocol.NoteFields)) (*models.Note, error) {
	n, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	edit(&n.NoteFields)
	if err := validateNote(&n.NoteFields); err != nil {
		return nil, err
	}
	if err := s.repos.Notes.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return n, nil
}

func (s *noteService) Delete(ctx context.Context, ref string) error {
	n, err := s.Get(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.repos.Notes.MarkDeleted(ctx, n.LocalID); err != nil {
		return fmt.Errorf("error deleting note: %w", err)
	}
	return nil
}
