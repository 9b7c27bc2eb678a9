package events

import "time"

const AttendanceReconciledTopic = "internship.attendance.reconciled.v1"

const (
	SourceGenerate = "generate"
	SourceRegister = "register"
	SourcePresence = "presence"
	SourceImport   = "import"
)

// AttendanceReconciledEvent is emitted after a batch was merged into the
// stored attendance collection.
type AttendanceReconciledEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	Source     string    `json:"source"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	StudentIDs []string  `json:"student_ids"`
	Dates      []string  `json:"dates"`
	Incoming   int       `json:"incoming"`
	Total      int       `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}
