package models

import (
	"net/url"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

// ErrSelectionOrder rejects a narrower axis chosen before the broader one.
var ErrSelectionOrder = appErrors.Clone(appErrors.ErrValidation, "semester requires a year and subject requires a semester")

// ActiveSelection is the current year/semester/subject narrowing plus the search query.
// Zero values mean "all". Values are immutable; every update returns a new selection.
type ActiveSelection struct {
	Year     int    `json:"year"`
	Semester int    `json:"semester"`
	Subject  string `json:"subject"`
	Query    string `json:"query"`
}

// AllYears reports whether no year is selected.
func (s ActiveSelection) AllYears() bool { return s.Year == 0 }

// HasQuery reports whether a non-blank query is active.
func (s ActiveSelection) HasQuery() bool { return strings.TrimSpace(s.Query) != "" }

// Validate checks that the selection narrows year, then semester, then subject.
func (s ActiveSelection) Validate() error {
	if s.Year < 0 || s.Semester < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "year and semester must be positive")
	}
	if (s.Semester != 0 && s.Year == 0) || (s.Subject != "" && s.Semester == 0) {
		return ErrSelectionOrder
	}
	return nil
}

// SelectYear picks a year (0 for all) and resets semester and subject.
func (s ActiveSelection) SelectYear(year int) (ActiveSelection, error) {
	next := ActiveSelection{Year: year, Query: s.Query}
	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}

// SelectSemester picks a semester within the selected year and resets the subject.
func (s ActiveSelection) SelectSemester(semester int) (ActiveSelection, error) {
	next := ActiveSelection{Year: s.Year, Semester: semester, Query: s.Query}
	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}

// SelectSubject picks a subject code within the selected semester.
func (s ActiveSelection) SelectSubject(code string) (ActiveSelection, error) {
	next := s
	next.Subject = strings.ToUpper(strings.TrimSpace(code))
	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}

// WithQuery replaces the free-text query.
func (s ActiveSelection) WithQuery(query string) ActiveSelection {
	s.Query = strings.TrimSpace(query)
	return s
}

// Clear resets every axis and the query.
func (s ActiveSelection) Clear() ActiveSelection {
	return ActiveSelection{}
}

// SelectionFromQuery builds a selection from URL parameters year, semester, subject and q (or search).
// A known subject code pre-selects its year and semester.
func SelectionFromQuery(values url.Values, registry *SubjectRegistry) (ActiveSelection, error) {
	query := values.Get("q")
	if query == "" {
		query = values.Get("search")
	}
	sel := ActiveSelection{}.WithQuery(query)

	if code := strings.TrimSpace(values.Get("subject")); code != "" && !strings.EqualFold(code, "all") {
		subject, ok := registry.ByCode(code)
		if !ok {
			return ActiveSelection{}, appErrors.Clone(appErrors.ErrValidation, "unknown subject "+code)
		}
		sel.Year = subject.Year
		sel.Semester = subject.Semester
		sel.Subject = strings.ToUpper(subject.Code)
		return sel, nil
	}

	year, err := parseAxis(values.Get("year"), "year")
	if err != nil {
		return ActiveSelection{}, err
	}
	semester, err := parseAxis(values.Get("semester"), "semester")
	if err != nil {
		return ActiveSelection{}, err
	}
	if sel, err = sel.SelectYear(year); err != nil {
		return ActiveSelection{}, err
	}
	if sel, err = sel.SelectSemester(semester); err != nil {
		return ActiveSelection{}, err
	}
	return sel, nil
}

func parseAxis(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+" "+raw)
	}
	return v, nil
}
