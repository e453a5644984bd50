package models

// All lists every model managed by the gradebook schema.
func All() []interface{} {
	return []interface{}{
		&Student{},
		&Class{},
		&Enrollment{},
		&Assignment{},
		&Score{},
		&OverallGrade{},
		&GradeEvent{},
	}
}
