package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/holistic_money/internal/core/ports/services"
	"github.com/google/uuid"
)

// Warnings returned when a write is accepted while the relational store is down.
const (
	WarningCommentNotPersisted = "Comment accepted but not persisted due to database connectivity issues"
	WarningUpdateNotPersisted  = "Comment update accepted but not persisted due to database connectivity issues"
)

type commentService struct {
	BaseService
	clients  portsrepo.ClientReader
	comments portsrepo.CommentRepositoryFacade
	health   portsrepo.StoreHealth
	now      func() time.Time
	newID    func() (uuid.UUID, error)
}

// CommentServiceOption is a functional option for configuring the comment service
type CommentServiceOption func(*commentService)

// WithCommentClock overrides the clock used for comment timestamps.
func WithCommentClock(now func() time.Time) CommentServiceOption {
	return func(s *commentService) {
		s.now = now
	}
}

// WithCommentIDGenerator overrides comment id generation.
func WithCommentIDGenerator(newID func() (uuid.UUID, error)) CommentServiceOption {
	return func(s *commentService) {
		s.newID = newID
	}
}

// NewCommentService creates the comment write path.
func NewCommentService(clients portsrepo.ClientReader, comments portsrepo.CommentRepositoryFacade, health portsrepo.StoreHealth, options ...CommentServiceOption) portssvc.CommentSvc {
	svc := &commentService{
		clients:  clients,
		comments: comments,
		health:   health,
		now:      time.Now,
		newID:    uuid.NewV7,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CommentSvc = (*commentService)(nil)

func (s *commentService) AddComment(ctx context.Context, input domain.NewCommentInput) (*domain.CommentWriteResult, error) {
	if strings.TrimSpace(input.EntryID) == "" || strings.TrimSpace(input.CommentText) == "" ||
		strings.TrimSpace(input.CreatedBy) == "" || strings.TrimSpace(input.ClientName) == "" {
		return nil, apperrors.NewValidationError("Missing required fields")
	}
	return s.appendVersion(ctx, input, WarningCommentNotPersisted)
}

func (s *commentService) UpdateComment(ctx context.Context, input domain.NewCommentInput) (*domain.CommentWriteResult, error) {
	if strings.TrimSpace(input.EntryID) == "" || strings.TrimSpace(input.CommentText) == "" ||
		strings.TrimSpace(input.ClientName) == "" {
		return nil, apperrors.NewValidationError("Comment text and client are required")
	}
	if strings.TrimSpace(input.CreatedBy) == "" {
		input.CreatedBy = domain.DefaultCommentAuthor
	}
	return s.appendVersion(ctx, input, WarningUpdateNotPersisted)
}

// appendVersion writes a new version of the entry's comment. Earlier versions are never modified.
func (s *commentService) appendVersion(ctx context.Context, input domain.NewCommentInput, unavailableWarning string) (*domain.CommentWriteResult, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate comment id: %w", err)
	}
	now := s.now().UTC()
	comment := domain.Comment{
		CommentID:   id.String(),
		EntryID:     input.EntryID,
		CommentText: input.CommentText,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if !s.health.Available() {
		s.LogWarn(ctx, "Relational store unavailable, comment not persisted",
			slog.String("entry_id", input.EntryID),
			slog.String("client", input.ClientName))
		return &domain.CommentWriteResult{Comment: comment, Warning: unavailableWarning}, nil
	}

	client, err := s.resolveClient(ctx, input.ClientName)
	if err != nil {
		return nil, err
	}

	hasEarlier, err := s.comments.HasComments(ctx, client.CommentsTableName, input.EntryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check existing comments", slog.String("entry_id", input.EntryID))
		return nil, fmt.Errorf("failed to check existing comments: %w", err)
	}
	if err := s.comments.InsertComment(ctx, client.CommentsTableName, comment); err != nil {
		s.LogError(ctx, err, "Failed to insert comment",
			slog.String("entry_id", input.EntryID),
			slog.String("table", client.CommentsTableName))
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	s.LogDebug(ctx, "Comment version stored",
		slog.String("comment_id", comment.CommentID),
		slog.String("entry_id", comment.EntryID))
	return &domain.CommentWriteResult{Comment: comment, Persisted: true, FirstVersion: !hasEarlier}, nil
}

func (s *commentService) DeleteComment(ctx context.Context, entryID, clientName string) (*domain.CommentDeleteResult, error) {
	if strings.TrimSpace(clientName) == "" {
		return nil, apperrors.NewValidationError("Client is required")
	}
	if !s.health.Available() {
		return nil, apperrors.NewServiceUnavailableError("Database connection is not available")
	}
	client, err := s.resolveClient(ctx, clientName)
	if err != nil {
		return nil, err
	}
	n, err := s.comments.DeleteCommentsByEntryID(ctx, client.CommentsTableName, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to delete comments", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to delete comment: %w", err)
	}
	if n == 0 {
		return nil, apperrors.NewNotFoundError("Comment not found")
	}
	s.LogInfo(ctx, "Comments deleted", slog.String("entry_id", entryID), slog.Int64("deleted_count", n))
	return &domain.CommentDeleteResult{EntryID: entryID, DeletedCount: n}, nil
}

func (s *commentService) resolveClient(ctx context.Context, name string) (*domain.Client, error) {
	name = strings.TrimSpace(name)
	client, err := s.clients.FindClientByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Client '%s' not found", name))
		}
		s.LogError(ctx, err, "Failed to look up client", slog.String("client", name))
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	return client, nil
}
