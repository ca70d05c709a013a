package models

import (
	"path"
	"strings"
)

// RemoteFile is one file discovered under a subject folder of the materials repository.
type RemoteFile struct {
	Name   string `json:"name"`
	Folder string `json:"folder"`
	Size   int64  `json:"size"`
}

// DisplayName renders the file name with underscores shown as spaces.
func (f RemoteFile) DisplayName() string {
	return strings.ReplaceAll(f.Name, "_", " ")
}

// Extension returns the lower-cased extension without the leading dot.
func (f RemoteFile) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(f.Name), "."))
}

// DocID returns the metadata document id of the file.
func (f RemoteFile) DocID() string {
	return DocumentID(f.Folder, f.Name)
}

// SubjectGroup holds the files of one subject, keyed by the subject display name.
type SubjectGroup struct {
	Subject string       `json:"subject"`
	Files   []RemoteFile `json:"files"`
}

// MaterialsIndex maps subject display names to their files. Groups keep first-seen order.
type MaterialsIndex struct {
	Groups []SubjectGroup `json:"groups"`
}

// Len reports the number of subjects in the index.
func (idx MaterialsIndex) Len() int { return len(idx.Groups) }

// TotalFiles counts files across every subject.
func (idx MaterialsIndex) TotalFiles() int {
	total := 0
	for _, g := range idx.Groups {
		total += len(g.Files)
	}
	return total
}

// IsEmpty reports whether the index holds no files at all.
func (idx MaterialsIndex) IsEmpty() bool { return idx.TotalFiles() == 0 }

// Files returns the files listed for a subject display name.
func (idx MaterialsIndex) Files(subject string) []RemoteFile {
	for _, g := range idx.Groups {
		if g.Subject == subject {
			return g.Files
		}
	}
	return nil
}

// Subjects lists subject display names in index order.
func (idx MaterialsIndex) Subjects() []string {
	names := make([]string, 0, len(idx.Groups))
	for _, g := range idx.Groups {
		names = append(names, g.Subject)
	}
	return names
}

// Find locates a file by folder and exact name.
func (idx MaterialsIndex) Find(folder, name string) (RemoteFile, bool) {
	for _, g := range idx.Groups {
		for _, f := range g.Files {
			if f.Folder == folder && f.Name == name {
				return f, true
			}
		}
	}
	return RemoteFile{}, false
}

// Clone returns a deep copy so callers can hand the index out without sharing slices.
func (idx MaterialsIndex) Clone() MaterialsIndex {
	out := MaterialsIndex{Groups: make([]SubjectGroup, len(idx.Groups))}
	for i, g := range idx.Groups {
		files := make([]RemoteFile, len(g.Files))
		copy(files, g.Files)
		out.Groups[i] = SubjectGroup{Subject: g.Subject, Files: files}
	}
	return out
}

// IndexBuilder accumulates files into a MaterialsIndex preserving first-seen subject order.
type IndexBuilder struct {
	groups   []SubjectGroup
	position map[string]int
}

// NewIndexBuilder returns an empty builder.
func NewIndexBuilder() *IndexBuilder {
	return &IndexBuilder{position: map[string]int{}}
}

// Add appends a file under the subject display name.
func (b *IndexBuilder) Add(subject string, file RemoteFile) {
	i, ok := b.position[subject]
	if !ok {
		i = len(b.groups)
		b.position[subject] = i
		b.groups = append(b.groups, SubjectGroup{Subject: subject})
	}
	b.groups[i].Files = append(b.groups[i].Files, file)
}

// Build returns the accumulated index.
func (b *IndexBuilder) Build() MaterialsIndex {
	groups := make([]SubjectGroup, len(b.groups))
	copy(groups, b.groups)
	return MaterialsIndex{Groups: groups}
}
