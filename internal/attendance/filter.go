package attendance

import (
	"strings"
	"time"

	"stage-manager/internal/permission"
)

// Filter narrows a record list for display or export. The zero value keeps
// everything.
type Filter struct {
	From       *time.Time
	To         *time.Time
	Search     string
	StudentIDs []string
}

// Scope applies the role rule: a student only ever sees their own records,
// whatever selection was requested.
func (f Filter) Scope(actor permission.Actor) Filter {
	if actor.Role == permission.RoleStudent {
		f.StudentIDs = []string{actor.ID}
	}
	return f
}

// Apply keeps the records matching every active criterion, in input order.
func (f Filter) Apply(records []AttendanceRecord) []AttendanceRecord {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var ids map[string]struct{}
	if len(f.StudentIDs) > 0 {
		ids = make(map[string]struct{}, len(f.StudentIDs))
		for _, id := range f.StudentIDs {
			ids[id] = struct{}{}
		}
	}

	out := make([]AttendanceRecord, 0, len(records))
	for _, r := range records {
		if !f.inRange(r) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.StudentName), search) {
			continue
		}
		if ids != nil {
			if _, ok := ids[r.StudentID]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// inRange compares calendar dates only, so both bounds are inclusive for the
// whole day.
func (f Filter) inRange(r AttendanceRecord) bool {
	if f.From == nil && f.To == nil {
		return true
	}
	d, ok := r.Day()
	if !ok {
		return false
	}
	if f.From != nil && d.Before(truncateDay(*f.From)) {
		return false
	}
	if f.To != nil && d.After(truncateDay(*f.To)) {
		return false
	}
	return true
}
