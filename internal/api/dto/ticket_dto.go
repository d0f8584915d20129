package dto

import "time"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=10000"`
	CategoryID   int64  `json:"category_id" validate:"required,gt=0"`
	PriorityID   int64  `json:"priority_id" validate:"required,gt=0"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
	TeamID       *int64 `json:"team_id" validate:"omitempty,gt=0"`
	AssignedToID *int64 `json:"assigned_to_id" validate:"omitempty,gt=0"`
}

// UpdateTicketRequest replaces the editable fields.
type UpdateTicketRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=10000"`
	CategoryID   int64  `json:"category_id" validate:"required,gt=0"`
	PriorityID   int64  `json:"priority_id" validate:"required,gt=0"`
	StatusID     int64  `json:"status_id" validate:"required,gt=0"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
	TeamID       *int64 `json:"team_id" validate:"omitempty,gt=0"`
	AssignedToID *int64 `json:"assigned_to_id" validate:"omitempty,gt=0"`
}

type AssignRequest struct {
	AssigneeID int64 `json:"assignee_id" validate:"required,gt=0"`
}

type StatusRequest struct {
	StatusID int64 `json:"status_id" validate:"required,gt=0"`
}

type CommentRequest struct {
	Comment    string `json:"comment" validate:"required,max=10000"`
	IsInternal bool   `json:"is_internal"`
}

// AttachmentRequest registers a file already placed in storage.
type AttachmentRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	FilePath    string `json:"file_path" validate:"required,max=1024"`
	ContentType string `json:"content_type" validate:"max=255"`
	SizeBytes   int64  `json:"size_bytes" validate:"gte=0"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// TicketResponse is the full ticket projection.
type TicketResponse struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	CategoryID     int64      `json:"category_id"`
	CategoryName   string     `json:"category_name"`
	PriorityID     int64      `json:"priority_id"`
	PriorityName   string     `json:"priority_name"`
	StatusID       int64      `json:"status_id"`
	StatusName     string     `json:"status_name"`
	IsClosed       bool       `json:"is_closed"`
	DepartmentID   int64      `json:"department_id"`
	DepartmentName string     `json:"department_name"`
	TeamID         *int64     `json:"team_id"`
	TeamName       *string    `json:"team_name"`
	AssignedToID   *int64     `json:"assigned_to_id"`
	AssignedToName *string    `json:"assigned_to_name"`
	CreatedByID    int64      `json:"created_by_id"`
	CreatedByName  string     `json:"created_by_name"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at"`
}

type CommentResponse struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticket_id"`
	UserID     int64     `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Comment    string    `json:"comment"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

type AttachmentResponse struct {
	ID          int64     `json:"id"`
	TicketID    int64     `json:"ticket_id"`
	UserID      int64     `json:"user_id"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type FeedbackResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusCount is one row of the per-status breakdown.
type StatusCount struct {
	StatusID   int64  `json:"status_id"`
	StatusName string `json:"status_name"`
	Count      int64  `json:"count"`
}

// TicketStatsResponse backs GET /api/tickets/stats.
type TicketStatsResponse struct {
	Total    int64         `json:"total"`
	Active   int64         `json:"active"`
	ByStatus []StatusCount `json:"by_status"`
}

// CountResponse wraps a scalar analytic.
type CountResponse struct {
	Count int64 `json:"count"`
}
