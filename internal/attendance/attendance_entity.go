package attendance

import "time"

// DateLayout is the calendar-date format used on the wire and in storage.
const DateLayout = "2006-01-02"

const (
	DefaultCheckIn  = "08:00"
	DefaultCheckOut = "12:00"
)

// AttendanceRecord is one student's attendance on one calendar day.
// StudentName is a snapshot taken when the record was created and does not
// follow later renames.
type AttendanceRecord struct {
	ID           string `json:"id"`
	StudentID    string `json:"studentId"`
	StudentName  string `json:"studentName"`
	Date         string `json:"date"`
	IsPresent    bool   `json:"isPresent"`
	CheckInTime  string `json:"checkInTime,omitempty"`
	CheckOutTime string `json:"checkOutTime,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Key is the composite key used for reconciliation.
func (r AttendanceRecord) Key() string {
	return r.StudentID + "-" + r.Date
}

// Day parses Date. Records with an unparsable date report false.
func (r AttendanceRecord) Day() (time.Time, bool) {
	d, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
