package report

type StudentSummary struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Present     int    `json:"present"`
	Absent      int    `json:"absent"`
}

type SummaryResponse struct {
	Students      []StudentSummary `json:"students"`
	TotalStudents int              `json:"totalStudents"`
	TotalRecords  int              `json:"totalRecords"`
	// PresenceRate is a rounded percentage, 0 when there are no records.
	PresenceRate int `json:"presenceRate"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
