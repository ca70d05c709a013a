package dto

import "github.com/noah-isme/klmaterial-hub/internal/models"

// SemesterNode lists the subject codes taught in one semester.
type SemesterNode struct {
	Semester int      `json:"semester"`
	Subjects []string `json:"subjects"`
}

// YearNode groups semesters under an academic year.
type YearNode struct {
	Year      int            `json:"year"`
	Semesters []SemesterNode `json:"semesters"`
}

// SubjectsResponse is the registry plus the navigation tree used by the filter bar.
type SubjectsResponse struct {
	Subjects []models.SubjectConfig `json:"subjects"`
	Tree     []YearNode             `json:"tree"`
}
