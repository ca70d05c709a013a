package service

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/noah-isme/klmaterial-hub/internal/dto"
	"github.com/noah-isme/klmaterial-hub/internal/models"
)

const (
	defaultFileIcon    = "📄"
	defaultSubjectIcon = "📚"
)

var fileIcons = map[string]string{
	"pdf":  "📄",
	"doc":  "📝",
	"docx": "📝",
	"ppt":  "📊",
	"pptx": "📊",
	"zip":  "📦",
	"rar":  "📦",
	"txt":  "📃",
}

// ContentURLs resolves download links. LFS-tracked extensions go through the media host,
// everything else through the raw content host.
type ContentURLs struct {
	Repo    string
	Branch  string
	Root    string
	RawBase string
	LFSBase string
	lfs     map[string]struct{}
}

// NewContentURLs builds a resolver for the given repository coordinates.
func NewContentURLs(repo, branch, root, rawBase, lfsBase string, lfsExtensions []string) ContentURLs {
	lfs := make(map[string]struct{}, len(lfsExtensions))
	for _, ext := range lfsExtensions {
		lfs[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return ContentURLs{
		Repo:    strings.Trim(repo, "/"),
		Branch:  branch,
		Root:    strings.Trim(root, "/"),
		RawBase: strings.TrimRight(rawBase, "/"),
		LFSBase: strings.TrimRight(lfsBase, "/"),
		lfs:     lfs,
	}
}

// IsLFS reports whether the file is served by the LFS media host.
func (u ContentURLs) IsLFS(f models.RemoteFile) bool {
	_, ok := u.lfs[f.Extension()]
	return ok
}

// Resolve returns the download URL of a file.
func (u ContentURLs) Resolve(f models.RemoteFile) string {
	base := u.RawBase
	if u.IsLFS(f) {
		base = u.LFSBase
	}
	parts := []string{base, u.Repo, u.Branch}
	if u.Root != "" {
		parts = append(parts, u.Root)
	}
	parts = append(parts, url.PathEscape(f.Folder), url.PathEscape(f.Name))
	return strings.Join(parts, "/")
}

// BuildView turns an already narrowed index into subject groups of cards.
// It is pure: the same inputs always yield the same view.
func BuildView(idx models.MaterialsIndex, sel models.ActiveSelection, metadata map[string]models.UsageMetadata,
	registry *models.SubjectRegistry, urls ContentURLs) []dto.SubjectGroupView {
	groups := make([]dto.SubjectGroupView, 0, len(idx.Groups))
	for _, group := range idx.Groups {
		view := dto.SubjectGroupView{Name: group.Subject, Icon: defaultSubjectIcon, FileCount: len(group.Files)}
		if subject, ok := registry.ByName(group.Subject); ok {
			view.Code = subject.Code
			view.Year = subject.Year
			view.Semester = subject.Semester
			if subject.Icon != "" {
				view.Icon = subject.Icon
			}
		}
		view.Cards = make([]dto.MaterialCard, 0, len(group.Files))
		for _, f := range group.Files {
			view.Cards = append(view.Cards, buildCard(f, sel.Query, metadata[f.DocID()], urls))
		}
		groups = append(groups, view)
	}
	return groups
}

func buildCard(f models.RemoteFile, query string, usage models.UsageMetadata, urls ContentURLs) dto.MaterialCard {
	card := dto.MaterialCard{
		DocID:           f.DocID(),
		Folder:          f.Folder,
		Name:            f.Name,
		DisplayName:     f.DisplayName(),
		HighlightedName: Highlight(f.DisplayName(), query),
		Extension:       strings.ToUpper(f.Extension()),
		Icon:            FileIcon(f.Extension()),
		SizeBytes:       f.Size,
		DownloadURL:     urls.Resolve(f),
		Views:           usage.Views,
		Downloads:       usage.Downloads,
		Rating:          usage.Rating,
		RatingCount:     usage.RatingCount,
		Stars:           Stars(usage.Rating),
	}
	if f.Size > 0 {
		card.SizeLabel = humanize.Bytes(uint64(f.Size))
	}
	return card
}

// FileIcon picks the glyph for an extension.
func FileIcon(ext string) string {
	if icon, ok := fileIcons[strings.ToLower(ext)]; ok {
		return icon
	}
	return defaultFileIcon
}

// Stars renders an average rating as five full, half or empty slots.
func Stars(average float64) [5]dto.StarState {
	var stars [5]dto.StarState
	for i := range stars {
		slot := float64(i)
		switch {
		case average >= slot+1:
			stars[i] = dto.StarFull
		case average >= slot+0.5:
			stars[i] = dto.StarHalf
		default:
			stars[i] = dto.StarEmpty
		}
	}
	return stars
}

// Highlight HTML-escapes text and wraps every case-insensitive occurrence of query in <mark>.
// Matching runs on the raw text so entities are never split.
func Highlight(text, query string) string {
	query = strings.ReplaceAll(strings.TrimSpace(query), "_", " ")
	if query == "" {
		return html.EscapeString(text)
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return html.EscapeString(text)
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(html.EscapeString(text[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(text[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
