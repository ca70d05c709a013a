package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/klmaterial-hub/internal/dto"
	"github.com/noah-isme/klmaterial-hub/internal/models"
)

func testURLs() ContentURLs {
	return NewContentURLs("owner/klmaterial", "main", "materials",
		"https://raw.githubusercontent.com", "https://media.githubusercontent.com/media/",
		[]string{"pdf", ".PPTX", "zip"})
}

func TestContentURLsRoutesByExtension(t *testing.T) {
	urls := testURLs()

	assert.Equal(t, "https://media.githubusercontent.com/media/owner/klmaterial/main/materials/DM/notes.pdf",
		urls.Resolve(models.RemoteFile{Name: "notes.pdf", Folder: "DM"}))
	assert.Equal(t, "https://media.githubusercontent.com/media/owner/klmaterial/main/materials/DM/deck.PPTX",
		urls.Resolve(models.RemoteFile{Name: "deck.PPTX", Folder: "DM"}))
	assert.Equal(t, "https://raw.githubusercontent.com/owner/klmaterial/main/materials/DM/notes.txt",
		urls.Resolve(models.RemoteFile{Name: "notes.txt", Folder: "DM"}))
}

func TestContentURLsEscapesNames(t *testing.T) {
	got := testURLs().Resolve(models.RemoteFile{Name: "unit 1 #notes.txt", Folder: "DM"})
	assert.Equal(t, "https://raw.githubusercontent.com/owner/klmaterial/main/materials/DM/unit%201%20%23notes.txt", got)
}

func TestContentURLsWithoutRoot(t *testing.T) {
	urls := NewContentURLs("o/r", "dev", "", "https://raw.example", "https://lfs.example", nil)
	assert.Equal(t, "https://raw.example/o/r/dev/DM/a.pdf", urls.Resolve(models.RemoteFile{Name: "a.pdf", Folder: "DM"}))
}

func TestHighlight(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{"no query escapes only", "a<b>&c", "", "a&lt;b&gt;&amp;c"},
		{"whitespace query", "notes", "   ", "notes"},
		{"case insensitive", "DM Notes notes", "NOTES", "DM <mark>Notes</mark> <mark>notes</mark>"},
		{"markup in name", "<script> co1", "co1", "&lt;script&gt; <mark>co1</mark>"},
		{"ampersand query", "R&D & more", "&", "R<mark>&amp;</mark>D <mark>&amp;</mark> more"},
		{"regex metacharacters", "C++ (intro).pdf", "(intro)", "C++ <mark>(intro)</mark>.pdf"},
		{"underscore query", "unit 2 notes", "unit_2", "<mark>unit 2</mark> notes"},
		{"no match", "notes", "slides", "notes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Highlight(tc.text, tc.query))
		})
	}
}

func TestStars(t *testing.T) {
	full, half, empty := dto.StarFull, dto.StarHalf, dto.StarEmpty
	assert.Equal(t, [5]dto.StarState{full, full, full, half, empty}, Stars(3.5))
	assert.Equal(t, [5]dto.StarState{empty, empty, empty, empty, empty}, Stars(0))
	assert.Equal(t, [5]dto.StarState{full, full, full, full, full}, Stars(5))
	assert.Equal(t, [5]dto.StarState{full, full, full, full, empty}, Stars(4.4))
}

func TestFileIcon(t *testing.T) {
	assert.Equal(t, "📄", FileIcon("pdf"))
	assert.Equal(t, "📝", FileIcon("DOCX"))
	assert.Equal(t, "📊", FileIcon("ppt"))
	assert.Equal(t, "📦", FileIcon("rar"))
	assert.Equal(t, "📃", FileIcon("txt"))
	assert.Equal(t, "📄", FileIcon("epub"))
	assert.Equal(t, "📄", FileIcon(""))
}

func TestBuildViewDecoratesCards(t *testing.T) {
	registry := defaultRegistry(t)
	idx := sampleIndex()
	metadata := map[string]models.UsageMetadata{
		models.DocumentID("BEEC", "BEEC_CO1_notes.pdf"): {Views: 3, Downloads: 2, Rating: 4.5, RatingCount: 2},
	}
	sel := models.ActiveSelection{}.WithQuery("co1")

	groups := BuildView(idx, sel, metadata, registry, testURLs())
	require.Len(t, groups, 2)

	beec := groups[0]
	assert.Equal(t, "BEEC", beec.Code)
	assert.Equal(t, "⚡", beec.Icon)
	assert.Equal(t, 1, beec.Year)
	assert.Equal(t, 1, beec.Semester)
	assert.Equal(t, 2, beec.FileCount)

	card := beec.Cards[0]
	assert.Equal(t, "BEEC_BEEC_CO1_notes_pdf", card.DocID)
	assert.Equal(t, "BEEC CO1 notes.pdf", card.DisplayName)
	assert.Equal(t, "BEEC <mark>CO1</mark> notes.pdf", card.HighlightedName)
	assert.Equal(t, "PDF", card.Extension)
	assert.Equal(t, "2.0 kB", card.SizeLabel)
	assert.Equal(t, int64(2), card.Downloads)
	assert.Equal(t, dto.StarHalf, card.Stars[4])
	assert.Contains(t, card.DownloadURL, "media.githubusercontent.com")

	slides := beec.Cards[1]
	assert.Zero(t, slides.Views)
	assert.Equal(t, [5]dto.StarState{dto.StarEmpty, dto.StarEmpty, dto.StarEmpty, dto.StarEmpty, dto.StarEmpty}, slides.Stars)
}

func TestBuildViewUnknownSubjectUsesDefaultIcon(t *testing.T) {
	b := models.NewIndexBuilder()
	b.Add("Elective", models.RemoteFile{Name: "x.txt", Folder: "ELEC"})
	groups := BuildView(b.Build(), models.ActiveSelection{}, nil, defaultRegistry(t), testURLs())
	require.Len(t, groups, 1)
	assert.Equal(t, "📚", groups[0].Icon)
	assert.Empty(t, groups[0].Code)
	assert.Empty(t, groups[0].Cards[0].SizeLabel)
}
