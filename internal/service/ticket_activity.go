package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const commentPreviewLength = 120

// CommentInput is a new note on a ticket.
type CommentInput struct {
	Comment    string
	IsInternal bool
}

// AttachmentInput describes an already stored file.
type AttachmentInput struct {
	FileName    string
	FilePath    string
	ContentType string
	SizeBytes   int64
}

// FeedbackInput is the requester's rating.
type FeedbackInput struct {
	Rating  int
	Comment string
}

// AddComment appends a comment and bumps the ticket's updated_at.
func (s *TicketService) AddComment(ctx context.Context, ticketID int64, input CommentInput, authorID int64) (*domain.TicketComment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	author, ok, err := exists(s.users.GetByID(ctx, authorID))
	if err != nil {
		return nil, err
	}
	if !activeUser(author, ok) {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": authorID})
	}

	text := strings.TrimSpace(input.Comment)
	if s.sanitizer != nil {
		text = s.sanitizer.PlainText(text)
	}
	if text == "" {
		return nil, apperrors.NewValidationError("Comment is required", map[string]any{"field": "comment"})
	}

	now := nextUpdatedAt(s.now(), ticket.UpdatedAt)
	comment := &domain.TicketComment{
		TicketID:   ticketID,
		UserID:     authorID,
		Comment:    text,
		IsInternal: input.IsInternal,
		CreatedAt:  now,
		AuthorName: author.FullName(),
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		return s.tickets.Touch(ctx, ticketID, now)
	})
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}

	publish(ctx, s.dispatcher, events.NewEvent(events.EventTicketCommentAdded, ticketID, authorID, events.TicketCommentAddedPayload{
		CommentID:  comment.ID,
		IsInternal: comment.IsInternal,
		Preview:    preview(comment.Comment),
	}))
	return comment, nil
}

// GetComments lists comments newest first; internal ones only on request.
func (s *TicketService) GetComments(ctx context.Context, ticketID int64, includeInternal bool) ([]domain.TicketComment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID, includeInternal)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// AddAttachment records metadata for a file stored elsewhere.
func (s *TicketService) AddAttachment(ctx context.Context, ticketID int64, input AttachmentInput, uploaderID int64) (*domain.TicketAttachment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	uploader, ok, err := exists(s.users.GetByID(ctx, uploaderID))
	if err != nil {
		return nil, err
	}
	if !activeUser(uploader, ok) {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": uploaderID})
	}
	fileName, err := requireName(input.FileName, "File name")
	if err != nil {
		return nil, err
	}
	filePath, err := requireName(input.FilePath, "File path")
	if err != nil {
		return nil, err
	}
	if input.SizeBytes < 0 {
		return nil, apperrors.NewValidationError("File size must not be negative", map[string]any{"size_bytes": input.SizeBytes})
	}

	now := nextUpdatedAt(s.now(), ticket.UpdatedAt)
	attachment := &domain.TicketAttachment{
		TicketID:    ticketID,
		UserID:      uploaderID,
		FileName:    fileName,
		FilePath:    filePath,
		ContentType: strings.TrimSpace(input.ContentType),
		SizeBytes:   input.SizeBytes,
		UploadedAt:  now,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.attachments.Create(ctx, attachment); err != nil {
			return err
		}
		return s.tickets.Touch(ctx, ticketID, now)
	})
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	return attachment, nil
}

func (s *TicketService) GetAttachments(ctx context.Context, ticketID int64) ([]domain.TicketAttachment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	list, err := s.attachments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// SubmitFeedback lets the creator rate a closed ticket once.
func (s *TicketService) SubmitFeedback(ctx context.Context, ticketID int64, input FeedbackInput, userID int64) (*domain.TicketFeedback, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	if input.Rating < domain.MinFeedbackRating || input.Rating > domain.MaxFeedbackRating {
		return nil, apperrors.NewValidationError("Rating must be between 1 and 5", map[string]any{"rating": input.Rating})
	}
	if ticket.CreatedByID != userID {
		return nil, apperrors.NewForbidden("Only the ticket creator can submit feedback")
	}
	if !ticket.IsClosed() {
		return nil, apperrors.NewValidationError("Feedback can only be submitted for closed tickets", map[string]any{"ticket_id": ticketID})
	}
	_, found, err := exists(s.feedback.GetByTicket(ctx, ticketID))
	if err != nil {
		return nil, err
	}
	if found {
		return nil, apperrors.NewValidationError("Feedback already submitted for this ticket", map[string]any{"ticket_id": ticketID})
	}

	text := strings.TrimSpace(input.Comment)
	if s.sanitizer != nil {
		text = s.sanitizer.PlainText(text)
	}
	fb := &domain.TicketFeedback{
		TicketID:  ticketID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   text,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("feedback submitted", zap.Int64("ticket_id", ticketID), zap.Int("rating", fb.Rating))
	publish(ctx, s.dispatcher, events.NewEvent(events.EventTicketFeedbackSubmitted, ticketID, userID, events.TicketFeedbackPayload{Rating: fb.Rating}))
	return fb, nil
}

func (s *TicketService) GetFeedback(ctx context.Context, ticketID int64) (*domain.TicketFeedback, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	fb, err := s.feedback.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "feedback", ticketID)
	}
	return fb, nil
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= commentPreviewLength {
		return s
	}
	return string([]rune(s)[:commentPreviewLength]) + "..."
}
