package models

import (
	"fmt"
	"sort"
	"strings"
)

// SubjectConfig describes one course whose materials live in a single remote folder.
type SubjectConfig struct {
	Code     string `yaml:"code" json:"code"`
	Name     string `yaml:"name" json:"name"`
	Icon     string `yaml:"icon" json:"icon"`
	Folder   string `yaml:"folder" json:"folder"`
	Year     int    `yaml:"year" json:"year"`
	Semester int    `yaml:"semester" json:"semester"`
}

// SubjectRegistry is the immutable lookup table of known subjects.
type SubjectRegistry struct {
	subjects []SubjectConfig
	byCode   map[string]int
	byFolder map[string]int
	byName   map[string]int
}

// NewSubjectRegistry validates the provided subjects and indexes them by code, folder and name.
func NewSubjectRegistry(subjects []SubjectConfig) (*SubjectRegistry, error) {
	if len(subjects) == 0 {
		return nil, fmt.Errorf("subject registry is empty")
	}
	r := &SubjectRegistry{
		subjects: make([]SubjectConfig, 0, len(subjects)),
		byCode:   make(map[string]int, len(subjects)),
		byFolder: make(map[string]int, len(subjects)),
		byName:   make(map[string]int, len(subjects)),
	}
	for i, s := range subjects {
		s.Code = strings.TrimSpace(s.Code)
		s.Name = strings.TrimSpace(s.Name)
		s.Folder = strings.Trim(strings.TrimSpace(s.Folder), "/")
		if s.Folder == "" {
			s.Folder = s.Code
		}
		switch {
		case s.Code == "":
			return nil, fmt.Errorf("subject #%d: code is required", i+1)
		case s.Name == "":
			return nil, fmt.Errorf("subject %s: name is required", s.Code)
		case strings.Contains(s.Folder, "/"):
			return nil, fmt.Errorf("subject %s: folder %q must be a single path segment", s.Code, s.Folder)
		case s.Year < 1:
			return nil, fmt.Errorf("subject %s: year must be at least 1", s.Code)
		case s.Semester != 1 && s.Semester != 2:
			return nil, fmt.Errorf("subject %s: semester must be 1 or 2", s.Code)
		}
		code := strings.ToUpper(s.Code)
		if _, dup := r.byCode[code]; dup {
			return nil, fmt.Errorf("subject %s: duplicate code", s.Code)
		}
		if _, dup := r.byFolder[s.Folder]; dup {
			return nil, fmt.Errorf("subject %s: folder %q already mapped", s.Code, s.Folder)
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("subject %s: duplicate name %q", s.Code, s.Name)
		}
		r.byCode[code] = len(r.subjects)
		r.byFolder[s.Folder] = len(r.subjects)
		r.byName[s.Name] = len(r.subjects)
		r.subjects = append(r.subjects, s)
	}
	return r, nil
}

// All returns every subject in declaration order.
func (r *SubjectRegistry) All() []SubjectConfig {
	out := make([]SubjectConfig, len(r.subjects))
	copy(out, r.subjects)
	return out
}

// Len reports the number of registered subjects.
func (r *SubjectRegistry) Len() int { return len(r.subjects) }

// ByCode looks a subject up by code, ignoring case.
func (r *SubjectRegistry) ByCode(code string) (SubjectConfig, bool) {
	return r.lookup(r.byCode, strings.ToUpper(strings.TrimSpace(code)))
}

// ByFolder looks a subject up by its exact remote folder name.
func (r *SubjectRegistry) ByFolder(folder string) (SubjectConfig, bool) {
	return r.lookup(r.byFolder, folder)
}

// ByName looks a subject up by display name.
func (r *SubjectRegistry) ByName(name string) (SubjectConfig, bool) {
	return r.lookup(r.byName, name)
}

func (r *SubjectRegistry) lookup(index map[string]int, key string) (SubjectConfig, bool) {
	i, ok := index[key]
	if !ok {
		return SubjectConfig{}, false
	}
	return r.subjects[i], true
}

// Years lists the distinct academic years in ascending order.
func (r *SubjectRegistry) Years() []int {
	seen := map[int]struct{}{}
	years := []int{}
	for _, s := range r.subjects {
		if _, ok := seen[s.Year]; ok {
			continue
		}
		seen[s.Year] = struct{}{}
		years = append(years, s.Year)
	}
	sort.Ints(years)
	return years
}

// Semesters lists the distinct semesters offered in a year in ascending order.
func (r *SubjectRegistry) Semesters(year int) []int {
	seen := map[int]struct{}{}
	semesters := []int{}
	for _, s := range r.subjects {
		if s.Year != year {
			continue
		}
		if _, ok := seen[s.Semester]; ok {
			continue
		}
		seen[s.Semester] = struct{}{}
		semesters = append(semesters, s.Semester)
	}
	sort.Ints(semesters)
	return semesters
}

// InTerm returns the subjects taught in the given year and semester, in declaration order.
func (r *SubjectRegistry) InTerm(year, semester int) []SubjectConfig {
	out := []SubjectConfig{}
	for _, s := range r.subjects {
		if s.Year == year && s.Semester == semester {
			out = append(out, s)
		}
	}
	return out
}
