package repository

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// AttachmentRepository stores attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.TicketAttachment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAttachment, error)
}

type attachmentRepository struct {
	base
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(db persistence.Querier) AttachmentRepository {
	return &attachmentRepository{base{db: db}}
}

func (r *attachmentRepository) Create(ctx context.Context, a *domain.TicketAttachment) error {
	stmt := psql.Insert("ticket_attachments").
		Columns("ticket_id", "user_id", "file_name", "file_path", "content_type", "size_bytes", "uploaded_at").
		Values(a.TicketID, a.UserID, a.FileName, a.FilePath, a.ContentType, a.SizeBytes, a.UploadedAt).
		Suffix("RETURNING id")
	return insertReturning(ctx, r.q(ctx), stmt, &a.ID)
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAttachment, error) {
	stmt := psql.Select("id", "ticket_id", "user_id", "file_name", "file_path", "content_type", "size_bytes", "uploaded_at").
		From("ticket_attachments").
		Where(squirrel.Eq{"ticket_id": ticketID}).
		OrderBy("uploaded_at DESC", "id DESC")
	return selectAll[domain.TicketAttachment](ctx, r.q(ctx), stmt)
}
