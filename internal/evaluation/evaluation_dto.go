package evaluation

type CreateEvaluationRequest struct {
	StudentID         string `json:"studentId" binding:"required"`
	Date              string `json:"date" binding:"omitempty,isodate"`
	Attendance        *int   `json:"attendance" binding:"required,min=0,max=10"`
	SocialInteraction *int   `json:"socialInteraction" binding:"required,min=0,max=10"`
	PracticalLearning *int   `json:"practicalLearning" binding:"required,min=0,max=10"`
	WorkQuality       *int   `json:"workQuality" binding:"required,min=0,max=10"`
	Comments          string `json:"comments" binding:"max=1000"`
}

type EvaluationResponse struct {
	ID                string  `json:"id"`
	StudentID         string  `json:"studentId"`
	StudentName       string  `json:"studentName"`
	EvaluatorID       string  `json:"evaluatorId"`
	EvaluatorName     string  `json:"evaluatorName"`
	Date              string  `json:"date"`
	Attendance        int     `json:"attendance"`
	SocialInteraction int     `json:"socialInteraction"`
	PracticalLearning int     `json:"practicalLearning"`
	WorkQuality       int     `json:"workQuality"`
	Comments          string  `json:"comments,omitempty"`
	Average           float64 `json:"average"`
}

func toResponse(e Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:                e.ID,
		StudentID:         e.StudentID,
		StudentName:       e.StudentName,
		EvaluatorID:       e.EvaluatorID,
		EvaluatorName:     e.EvaluatorName,
		Date:              e.Date,
		Attendance:        e.Attendance,
		SocialInteraction: e.SocialInteraction,
		PracticalLearning: e.PracticalLearning,
		WorkQuality:       e.WorkQuality,
		Comments:          e.Comments,
		Average:           e.Average(),
	}
}
