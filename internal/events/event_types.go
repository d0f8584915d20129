package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated           EventType = "ticket.created"
	EventTicketUpdated           EventType = "ticket.updated"
	EventTicketDeleted           EventType = "ticket.deleted"
	EventTicketAssigned          EventType = "ticket.assigned"
	EventTicketUnassigned        EventType = "ticket.unassigned"
	EventTicketStatusChanged     EventType = "ticket.status_changed"
	EventTicketCommentAdded      EventType = "ticket.comment_added"
	EventTicketFeedbackSubmitted EventType = "ticket.feedback_submitted"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketDeleted,
	EventTicketAssigned,
	EventTicketUnassigned,
	EventTicketStatusChanged,
	EventTicketCommentAdded,
	EventTicketFeedbackSubmitted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	ActorID   int64     `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, ticketID, actorID int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title        string `json:"title"`
	DepartmentID int64  `json:"department_id"`
	PriorityID   int64  `json:"priority_id"`
	CreatedByID  int64  `json:"created_by_id"`
}

// TicketAssignedPayload covers assign, reassign and unassign.
type TicketAssignedPayload struct {
	PreviousAssigneeID *int64 `json:"previous_assignee_id,omitempty"`
	AssigneeID         *int64 `json:"assignee_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatusID   int64  `json:"old_status_id"`
	NewStatusID   int64  `json:"new_status_id"`
	NewStatusName string `json:"new_status_name"`
	Closed        bool   `json:"closed"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID  int64  `json:"comment_id"`
	IsInternal bool   `json:"is_internal"`
	Preview    string `json:"preview"`
}

// TicketFeedbackPayload payload.
type TicketFeedbackPayload struct {
	Rating int `json:"rating"`
}
