package student

// Student is stored as-is in the "students" collection.
type Student struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Contact string `json:"contact"`
}

// DemoStudents seeds an empty store when SEED_DEMO_DATA is enabled.
var DemoStudents = []Student{
	{ID: "101", Name: "Ana Silva", Company: "Tech Solutions", Contact: "ana.silva@email.com"},
	{ID: "102", Name: "Carlos Mendes", Company: "InnovaSoft", Contact: "carlos.mendes@email.com"},
}
