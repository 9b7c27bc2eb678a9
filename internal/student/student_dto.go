package student

type CreateStudentRequest struct {
	Name    string `json:"name" binding:"required"`
	Company string `json:"company" binding:"required"`
	Contact string `json:"contact" binding:"required"`
}

type StudentResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Contact string `json:"contact"`
}

type StudentOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
