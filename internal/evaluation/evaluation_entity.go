package evaluation

const (
	MinScore = 0
	MaxScore = 10
)

type Evaluation struct {
	ID                string `json:"id"`
	StudentID         string `json:"studentId"`
	StudentName       string `json:"studentName"`
	EvaluatorID       string `json:"evaluatorId"`
	EvaluatorName     string `json:"evaluatorName"`
	Date              string `json:"date"`
	Attendance        int    `json:"attendance"`
	SocialInteraction int    `json:"socialInteraction"`
	PracticalLearning int    `json:"practicalLearning"`
	WorkQuality       int    `json:"workQuality"`
	Comments          string `json:"comments,omitempty"`
}

// Average is the plain mean of the four criteria.
func (e Evaluation) Average() float64 {
	return float64(e.Attendance+e.SocialInteraction+e.PracticalLearning+e.WorkQuality) / 4
}

func (e Evaluation) scoresInRange() bool {
	for _, s := range []int{e.Attendance, e.SocialInteraction, e.PracticalLearning, e.WorkQuality} {
		if s < MinScore || s > MaxScore {
			return false
		}
	}
	return true
}
