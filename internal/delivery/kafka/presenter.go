package kafka

import "time"

// Events consumed from the workforce services. Each names the user to
// notify; the payload is forwarded to that user's live connections.

type TaskAssignedEvent struct {
	TaskID     int64      `json:"task_id"`
	AssigneeID int64      `json:"assignee_id"`
	Title      string     `json:"title"`
	Priority   string     `json:"priority"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

type ShiftUpdatedEvent struct {
	ShiftID   int64     `json:"shift_id"`
	UserID    int64     `json:"user_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Timestamp time.Time `json:"timestamp"`
}

type ReportSubmittedEvent struct {
	ReportID   int64     `json:"report_id"`
	AuthorID   int64     `json:"author_id"`
	ReviewerID int64     `json:"reviewer_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Events published by the gateway.

type PresenceChangedEvent struct {
	UserID    int64     `json:"user_id"`
	Online    bool      `json:"online"`
	Timestamp time.Time `json:"timestamp"`
}
