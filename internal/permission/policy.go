// Package permission decides which role may write attendance on which
// calendar day. Schools own Monday and Tuesday, companies own Wednesday to
// Friday, students never write and weekends belong to nobody.
package permission

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleSchool  Role = "school"
	RoleCompany Role = "company"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleStudent, RoleSchool, RoleCompany}

func ParseRole(v string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(v))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleSchool:
		return RoleSchool, nil
	case RoleCompany:
		return RoleCompany, nil
	}
	return "", fmt.Errorf("unknown role %q", v)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

func IsSchoolDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Monday, time.Tuesday:
		return true
	}
	return false
}

func IsCompanyDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Wednesday, time.Thursday, time.Friday:
		return true
	}
	return false
}

func IsWorkday(d time.Time) bool {
	return d.Weekday() != time.Saturday && d.Weekday() != time.Sunday
}

// CanWrite reports whether role may create or change a record dated d.
// Only the calendar date of d is considered.
func CanWrite(role Role, d time.Time) bool {
	switch role {
	case RoleStudent:
		return false
	case RoleSchool:
		return IsSchoolDay(d)
	case RoleCompany:
		return IsCompanyDay(d)
	}
	return false
}

// EditableWeekdays returns the weekdays role may write, Monday first.
func EditableWeekdays(role Role) []time.Weekday {
	switch role {
	case RoleSchool:
		return []time.Weekday{time.Monday, time.Tuesday}
	case RoleCompany:
		return []time.Weekday{time.Wednesday, time.Thursday, time.Friday}
	case RoleStudent:
		return []time.Weekday{}
	}
	return []time.Weekday{}
}

// DeniedError carries the role and the date it was not allowed to write.
type DeniedError struct {
	Role Role
	Date time.Time
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("role %s cannot write attendance on %s (%s)",
		e.Role, e.Date.Format("2006-01-02"), e.Date.Weekday())
}

// DeniedDetail is what a client is told about a refused write.
type DeniedDetail struct {
	Role             string   `json:"role"`
	Date             string   `json:"date"`
	EditableWeekdays []string `json:"editableWeekdays"`
}

func (e *DeniedError) ClientDetail() any {
	weekdays := EditableWeekdays(e.Role)
	names := make([]string, 0, len(weekdays))
	for _, d := range weekdays {
		names = append(names, d.String())
	}
	return DeniedDetail{
		Role:             e.Role.String(),
		Date:             e.Date.Format("2006-01-02"),
		EditableWeekdays: names,
	}
}

// Check returns a *DeniedError when role may not write on d.
func Check(role Role, d time.Time) error {
	if CanWrite(role, d) {
		return nil
	}
	return &DeniedError{Role: role, Date: d}
}

// Actor is the session user a request acts on behalf of. For the student
// role ID is the student's own id.
type Actor struct {
	ID   string
	Name string
	Role Role
}
