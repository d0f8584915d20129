package domain

import "time"

// TicketComment captures a note on a ticket thread.
type TicketComment struct {
	ID         int64     `db:"id"`
	TicketID   int64     `db:"ticket_id"`
	UserID     int64     `db:"user_id"`
	Comment    string    `db:"comment"`
	IsInternal bool      `db:"is_internal"`
	CreatedAt  time.Time `db:"created_at"`
	AuthorName string    `db:"author_name"`
}

// TicketAttachment stores metadata for a file uploaded against a ticket.
type TicketAttachment struct {
	ID          int64     `db:"id"`
	TicketID    int64     `db:"ticket_id"`
	UserID      int64     `db:"user_id"`
	FileName    string    `db:"file_name"`
	FilePath    string    `db:"file_path"`
	ContentType string    `db:"content_type"`
	SizeBytes   int64     `db:"size_bytes"`
	UploadedAt  time.Time `db:"uploaded_at"`
}

// TicketFeedback is the requester's rating of a closed ticket.
type TicketFeedback struct {
	ID        int64     `db:"id"`
	TicketID  int64     `db:"ticket_id"`
	UserID    int64     `db:"user_id"`
	Rating    int       `db:"rating"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

const (
	MinFeedbackRating = 1
	MaxFeedbackRating = 5
)
