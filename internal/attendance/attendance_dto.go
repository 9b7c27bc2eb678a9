package attendance

type GenerateRequest struct {
	From       string   `json:"from" binding:"required,isodate"`
	To         string   `json:"to" binding:"required,isodate"`
	StudentIDs []string `json:"studentIds"`
	All        bool     `json:"all"`
}

type RegisterRequest struct {
	StudentID    string `json:"studentId" binding:"required"`
	Date         string `json:"date" binding:"required,isodate"`
	IsPresent    *bool  `json:"isPresent"`
	CheckInTime  string `json:"checkInTime" binding:"omitempty,clock"`
	CheckOutTime string `json:"checkOutTime" binding:"omitempty,clock"`
	Notes        string `json:"notes" binding:"max=500"`
}

type SetPresenceRequest struct {
	IsPresent *bool `json:"isPresent" binding:"required"`
}

type ImportRecord struct {
	ID           string `json:"id"`
	StudentID    string `json:"studentId" binding:"required"`
	StudentName  string `json:"studentName"`
	Date         string `json:"date" binding:"required,isodate"`
	IsPresent    bool   `json:"isPresent"`
	CheckInTime  string `json:"checkInTime" binding:"omitempty,clock"`
	CheckOutTime string `json:"checkOutTime" binding:"omitempty,clock"`
	Notes        string `json:"notes"`
}

type ImportRequest struct {
	Records []ImportRecord `json:"records" binding:"required,dive"`
}

// ReconcileResponse reports a merge: the records that were written and the
// size of the stored collection afterwards.
type ReconcileResponse struct {
	Incoming int                `json:"incoming"`
	Total    int                `json:"total"`
	Records  []AttendanceRecord `json:"records"`
}

type PermissionsResponse struct {
	Role             string   `json:"role"`
	EditableWeekdays []string `json:"editableWeekdays"`
	Today            string   `json:"today"`
	CanWriteToday    bool     `json:"canWriteToday"`
}
