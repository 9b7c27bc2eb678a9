package attendance

import (
	"fmt"
	"time"

	"stage-manager/internal/permission"
	"stage-manager/internal/student"
)

// Generate builds one default record per (student, workday) pair in the
// inclusive range [from, to]. Weekends are never generated. When allow is
// non-nil, days for which it reports false are skipped as well.
//
// Ids are "<unixMillis>-<studentId>-<dayIndex>" where dayIndex is the day's
// offset from from, so ids are unique within one call.
func Generate(from, to time.Time, students []student.Student, now time.Time, allow func(time.Time) bool) []AttendanceRecord {
	from = truncateDay(from)
	to = truncateDay(to)
	if from.After(to) || len(students) == 0 {
		return []AttendanceRecord{}
	}

	stamp := now.UnixMilli()
	records := make([]AttendanceRecord, 0)
	for dayIndex, d := 0, from; !d.After(to); dayIndex, d = dayIndex+1, d.AddDate(0, 0, 1) {
		if !permission.IsWorkday(d) {
			continue
		}
		if allow != nil && !allow(d) {
			continue
		}

		date := d.Format(DateLayout)
		for _, st := range students {
			records = append(records, AttendanceRecord{
				ID:           fmt.Sprintf("%d-%s-%d", stamp, st.ID, dayIndex),
				StudentID:    st.ID,
				StudentName:  st.Name,
				Date:         date,
				IsPresent:    true,
				CheckInTime:  DefaultCheckIn,
				CheckOutTime: DefaultCheckOut,
			})
		}
	}
	return records
}

// WritableDays lists the workdays in [from, to] the role may write.
func WritableDays(role permission.Role, from, to time.Time) []time.Time {
	from = truncateDay(from)
	to = truncateDay(to)

	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if permission.CanWrite(role, d) {
			days = append(days, d)
		}
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
