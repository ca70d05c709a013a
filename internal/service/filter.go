package service

import (
	"strings"

	"github.com/noah-isme/klmaterial-hub/internal/models"
)

// ApplyFilters narrows the index to subjects matching every selected axis.
// File lists are kept verbatim and the input is never mutated.
func ApplyFilters(idx models.MaterialsIndex, sel models.ActiveSelection, registry *models.SubjectRegistry) models.MaterialsIndex {
	if sel.AllYears() {
		return idx.Clone()
	}
	out := models.MaterialsIndex{Groups: []models.SubjectGroup{}}
	for _, group := range idx.Groups {
		subject, ok := registry.ByName(group.Subject)
		if !ok || !matchesSelection(subject, sel) {
			continue
		}
		files := make([]models.RemoteFile, len(group.Files))
		copy(files, group.Files)
		out.Groups = append(out.Groups, models.SubjectGroup{Subject: group.Subject, Files: files})
	}
	return out
}

func matchesSelection(subject models.SubjectConfig, sel models.ActiveSelection) bool {
	if subject.Year != sel.Year {
		return false
	}
	if sel.Semester != 0 && subject.Semester != sel.Semester {
		return false
	}
	if sel.Subject != "" && !strings.EqualFold(subject.Code, sel.Subject) {
		return false
	}
	return true
}

// ApplyQuery keeps files whose display name, or whose subject name, contains the query.
// Subjects left without files are dropped. A blank query returns the index unchanged.
func ApplyQuery(idx models.MaterialsIndex, query string) models.MaterialsIndex {
	needle := normalizeQuery(query)
	if needle == "" {
		return idx.Clone()
	}
	out := models.MaterialsIndex{Groups: []models.SubjectGroup{}}
	for _, group := range idx.Groups {
		subjectMatches := strings.Contains(strings.ToLower(group.Subject), needle)
		var files []models.RemoteFile
		for _, f := range group.Files {
			if subjectMatches || strings.Contains(strings.ToLower(f.DisplayName()), needle) {
				files = append(files, f)
			}
		}
		if len(files) > 0 {
			out.Groups = append(out.Groups, models.SubjectGroup{Subject: group.Subject, Files: files})
		}
	}
	return out
}

// Narrow applies the selection axes, then the query, so both constraints hold.
func Narrow(idx models.MaterialsIndex, sel models.ActiveSelection, registry *models.SubjectRegistry) models.MaterialsIndex {
	return ApplyQuery(ApplyFilters(idx, sel, registry), sel.Query)
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(query), "_", " "))
}
