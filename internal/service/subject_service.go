package service

import (
	"github.com/noah-isme/klmaterial-hub/internal/dto"
	"github.com/noah-isme/klmaterial-hub/internal/models"
)

// SubjectService exposes the registry and its year/semester navigation tree.
type SubjectService struct {
	registry *models.SubjectRegistry
}

// NewSubjectService constructs the service.
func NewSubjectService(registry *models.SubjectRegistry) *SubjectService {
	return &SubjectService{registry: registry}
}

// List returns every subject plus the navigation tree.
func (s *SubjectService) List() dto.SubjectsResponse {
	resp := dto.SubjectsResponse{Subjects: s.registry.All(), Tree: []dto.YearNode{}}
	for _, year := range s.registry.Years() {
		node := dto.YearNode{Year: year}
		for _, semester := range s.registry.Semesters(year) {
			codes := []string{}
			for _, subject := range s.registry.InTerm(year, semester) {
				codes = append(codes, subject.Code)
			}
			node.Semesters = append(node.Semesters, dto.SemesterNode{Semester: semester, Subjects: codes})
		}
		resp.Tree = append(resp.Tree, node)
	}
	return resp
}

// Get returns one subject by code.
func (s *SubjectService) Get(code string) (models.SubjectConfig, bool) {
	return s.registry.ByCode(code)
}
