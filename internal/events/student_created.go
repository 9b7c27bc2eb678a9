package events

import "time"

const StudentCreatedTopic = "internship.student.lifecycle.v1"

type StudentCreatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	StudentID  string    `json:"student_id"`
	Company    string    `json:"company"`
	OccurredAt time.Time `json:"occurred_at"`
}
