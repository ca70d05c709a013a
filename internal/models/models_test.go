package models

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
)

func testRegistry(t *testing.T) *SubjectRegistry {
	t.Helper()
	registry, err := NewSubjectRegistry([]SubjectConfig{
		{Code: "BEEC", Name: "Basic Electrical & Electronic Circuits (BEEC)", Folder: "BEEC", Year: 1, Semester: 1},
		{Code: "DM", Name: "Discrete Mathematics (DM)", Folder: "DM", Year: 1, Semester: 1},
		{Code: "PP", Name: "Python Programming (PP)", Folder: "PP", Year: 1, Semester: 2},
		{Code: "OS", Name: "Operating Systems (OS)", Folder: "OS", Year: 2, Semester: 1},
	})
	require.NoError(t, err)
	return registry
}

func TestSubjectRegistryLookups(t *testing.T) {
	registry := testRegistry(t)

	subject, ok := registry.ByCode("dm")
	require.True(t, ok)
	assert.Equal(t, "Discrete Mathematics (DM)", subject.Name)

	_, ok = registry.ByFolder("dm")
	assert.False(t, ok, "folder lookups are exact")

	subject, ok = registry.ByName("Python Programming (PP)")
	require.True(t, ok)
	assert.Equal(t, "PP", subject.Code)

	assert.Equal(t, []int{1, 2}, registry.Years())
	assert.Equal(t, []int{1, 2}, registry.Semesters(1))
	assert.Equal(t, []int{1}, registry.Semesters(2))
	assert.Len(t, registry.InTerm(1, 1), 2)
}

func TestSubjectRegistryValidation(t *testing.T) {
	cases := map[string][]SubjectConfig{
		"empty":          nil,
		"missing code":   {{Name: "x", Year: 1, Semester: 1}},
		"missing name":   {{Code: "X", Year: 1, Semester: 1}},
		"bad semester":   {{Code: "X", Name: "x", Year: 1, Semester: 3}},
		"bad year":       {{Code: "X", Name: "x", Year: 0, Semester: 1}},
		"nested folder":  {{Code: "X", Name: "x", Folder: "a/b", Year: 1, Semester: 1}},
		"duplicate code": {{Code: "X", Name: "x", Year: 1, Semester: 1}, {Code: "x", Name: "y", Folder: "Y", Year: 1, Semester: 1}},
		"duplicate folder": {
			{Code: "X", Name: "x", Folder: "F", Year: 1, Semester: 1},
			{Code: "Y", Name: "y", Folder: "F", Year: 1, Semester: 1},
		},
	}
	for name, subjects := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewSubjectRegistry(subjects)
			assert.Error(t, err)
		})
	}
}

func TestSubjectRegistryDefaultsFolderToCode(t *testing.T) {
	registry, err := NewSubjectRegistry([]SubjectConfig{{Code: "AI", Name: "Artificial Intelligence (AI)", Year: 2, Semester: 2}})
	require.NoError(t, err)
	subject, ok := registry.ByFolder("AI")
	require.True(t, ok)
	assert.Equal(t, "AI", subject.Code)
}

func TestRemoteFileDerivedFields(t *testing.T) {
	file := RemoteFile{Name: "DM_CO-1_material.PDF", Folder: "DM"}
	assert.Equal(t, "DM CO-1 material.PDF", file.DisplayName())
	assert.Equal(t, "pdf", file.Extension())
	assert.Equal(t, "DM_DM_CO-1_material_PDF", file.DocID())
	assert.Equal(t, "", RemoteFile{Name: "README"}.Extension())
}

func TestIndexBuilderPreservesOrder(t *testing.T) {
	b := NewIndexBuilder()
	b.Add("B", RemoteFile{Name: "b1", Folder: "B"})
	b.Add("A", RemoteFile{Name: "a1", Folder: "A"})
	b.Add("B", RemoteFile{Name: "b2", Folder: "B"})
	idx := b.Build()

	assert.Equal(t, []string{"B", "A"}, idx.Subjects())
	assert.Equal(t, 3, idx.TotalFiles())
	assert.Equal(t, []RemoteFile{{Name: "b1", Folder: "B"}, {Name: "b2", Folder: "B"}}, idx.Files("B"))

	found, ok := idx.Find("A", "a1")
	require.True(t, ok)
	assert.Equal(t, "a1", found.Name)
	_, ok = idx.Find("A", "b1")
	assert.False(t, ok)

	clone := idx.Clone()
	clone.Groups[0].Files[0].Name = "changed"
	assert.Equal(t, "b1", idx.Groups[0].Files[0].Name)
	assert.True(t, MaterialsIndex{}.IsEmpty())
}

func TestDocumentIDReplacesUnsafeCharacters(t *testing.T) {
	assert.Equal(t, "BEEC_unit_1___notes_v2__pdf", DocumentID("BEEC", "unit/1_#_notes[v2].pdf"))
	assert.Equal(t, "a_b_c_d_e_f_g_h", DocumentID("a", "b/c\\d.e#f$g[h"))
}

func TestNextRating(t *testing.T) {
	avg, count := NextRating(4.0, 1, 2)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, int64(2), count)

	avg, count = NextRating(0, 0, 5)
	assert.Equal(t, 5.0, avg)
	assert.Equal(t, int64(1), count)

	avg, _ = NextRating(4.5, 2, 4)
	assert.Equal(t, 4.3, avg)
}

func TestSelectionReducers(t *testing.T) {
	sel := ActiveSelection{}.WithQuery("  co1 ")
	assert.Equal(t, "co1", sel.Query)

	sel, err := sel.SelectYear(1)
	require.NoError(t, err)
	sel, err = sel.SelectSemester(2)
	require.NoError(t, err)
	sel, err = sel.SelectSubject("pp")
	require.NoError(t, err)
	assert.Equal(t, ActiveSelection{Year: 1, Semester: 2, Subject: "PP", Query: "co1"}, sel)

	broader, err := sel.SelectYear(2)
	require.NoError(t, err)
	assert.Equal(t, ActiveSelection{Year: 2, Query: "co1"}, broader)

	assert.Equal(t, ActiveSelection{}, sel.Clear())
}

func TestSelectionRejectsOutOfOrderNarrowing(t *testing.T) {
	_, err := ActiveSelection{}.SelectSemester(1)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	start := ActiveSelection{Year: 1}
	same, err := start.SelectSubject("DM")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, start, same)
}

func TestSelectionFromQuery(t *testing.T) {
	registry := testRegistry(t)

	sel, err := SelectionFromQuery(url.Values{"subject": {"beec"}, "search": {"co1"}}, registry)
	require.NoError(t, err)
	assert.Equal(t, ActiveSelection{Year: 1, Semester: 1, Subject: "BEEC", Query: "co1"}, sel)

	sel, err = SelectionFromQuery(url.Values{"year": {"2"}, "semester": {"all"}, "q": {"os"}}, registry)
	require.NoError(t, err)
	assert.Equal(t, ActiveSelection{Year: 2, Query: "os"}, sel)

	sel, err = SelectionFromQuery(url.Values{}, registry)
	require.NoError(t, err)
	assert.True(t, sel.AllYears())

	_, err = SelectionFromQuery(url.Values{"subject": {"XYZ"}}, registry)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = SelectionFromQuery(url.Values{"semester": {"1"}}, registry)
	assert.Error(t, err)

	_, err = SelectionFromQuery(url.Values{"year": {"first"}}, registry)
	assert.Error(t, err)
}
