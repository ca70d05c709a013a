package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
	"github.com/noah-isme/klmaterial-hub/pkg/github"
	"github.com/noah-isme/klmaterial-hub/pkg/jsdelivr"
)

// Source names reported in logs, metrics and the listing result.
const (
	SourceTree    = "tree"
	SourceMirror  = "mirror"
	SourceFolders = "folders"
)

// RemoteLocation identifies the materials root inside the hosting repository.
type RemoteLocation struct {
	Repo   string
	Branch string
	Root   string
}

// TreeSource lists materials with a single recursive Git Trees API call.
type TreeSource struct {
	client   *github.Client
	loc      RemoteLocation
	registry *models.SubjectRegistry
}

// NewTreeSource constructs the bulk tree listing source.
func NewTreeSource(client *github.Client, loc RemoteLocation, registry *models.SubjectRegistry) *TreeSource {
	return &TreeSource{client: client, loc: loc, registry: registry}
}

// Name identifies the source.
func (s *TreeSource) Name() string { return SourceTree }

// List fetches the tree and keeps blobs directly inside known subject folders. A truncated
// tree is a failure: a partial listing must not be cached as the whole catalog.
func (s *TreeSource) List(ctx context.Context) (models.MaterialsIndex, error) {
	tree, err := s.client.GetTree(ctx, s.loc.Repo, s.loc.Branch)
	if err != nil {
		return models.MaterialsIndex{}, fmt.Errorf("tree listing: %w", err)
	}
	if tree.Truncated {
		return models.MaterialsIndex{}, fmt.Errorf("tree listing: %w (%d entries)", github.ErrTruncated, len(tree.Tree))
	}
	builder := models.NewIndexBuilder()
	for _, entry := range tree.Tree {
		if entry.Type != "blob" {
			continue
		}
		addPath(builder, s.registry, s.loc.Root, entry.Path, entry.Size)
	}
	return builder.Build(), nil
}

// MirrorSource lists materials through the jsDelivr flat package index.
type MirrorSource struct {
	client   *jsdelivr.Client
	loc      RemoteLocation
	registry *models.SubjectRegistry
}

// NewMirrorSource constructs the package mirror source.
func NewMirrorSource(client *jsdelivr.Client, loc RemoteLocation, registry *models.SubjectRegistry) *MirrorSource {
	return &MirrorSource{client: client, loc: loc, registry: registry}
}

// Name identifies the source.
func (s *MirrorSource) Name() string { return SourceMirror }

// List fetches the flat listing and applies the same path rules as the tree source.
func (s *MirrorSource) List(ctx context.Context) (models.MaterialsIndex, error) {
	listing, err := s.client.ListFlat(ctx, s.loc.Repo, s.loc.Branch)
	if err != nil {
		return models.MaterialsIndex{}, fmt.Errorf("mirror listing: %w", err)
	}
	builder := models.NewIndexBuilder()
	for _, file := range listing.Files {
		addPath(builder, s.registry, s.loc.Root, file.Name, file.Size)
	}
	return builder.Build(), nil
}

// FolderSource lists each subject folder with one Contents API call.
type FolderSource struct {
	client   *github.Client
	loc      RemoteLocation
	registry *models.SubjectRegistry
	logger   *zap.Logger
}

// NewFolderSource constructs the per-folder source.
func NewFolderSource(client *github.Client, loc RemoteLocation, registry *models.SubjectRegistry, logger *zap.Logger) *FolderSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FolderSource{client: client, loc: loc, registry: registry, logger: logger}
}

// Name identifies the source.
func (s *FolderSource) Name() string { return SourceFolders }

// List walks the registry in declaration order. A rate-limited folder aborts the whole listing;
// other folder failures are skipped unless every folder failed.
func (s *FolderSource) List(ctx context.Context) (models.MaterialsIndex, error) {
	builder := models.NewIndexBuilder()
	subjects := s.registry.All()
	var failures []error
	for _, subject := range subjects {
		dir := joinPath(s.loc.Root, subject.Folder)
		entries, err := s.client.ListDirectory(ctx, s.loc.Repo, dir, s.loc.Branch)
		if err != nil {
			if errors.Is(err, github.ErrRateLimited) {
				return models.MaterialsIndex{}, appErrors.Wrap(err, appErrors.ErrRateLimited.Code, appErrors.ErrRateLimited.Status, appErrors.ErrRateLimited.Message)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return models.MaterialsIndex{}, err
			}
			s.logger.Debug("folder listing skipped", zap.String("folder", subject.Folder), zap.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", subject.Folder, err))
			continue
		}
		for _, entry := range entries {
			if entry.Type != "file" || isReadme(entry.Name) {
				continue
			}
			builder.Add(subject.Name, models.RemoteFile{Name: entry.Name, Folder: subject.Folder, Size: entry.Size})
		}
	}
	if len(subjects) > 0 && len(failures) == len(subjects) {
		return models.MaterialsIndex{}, fmt.Errorf("folder listing: %w", errors.Join(failures...))
	}
	return builder.Build(), nil
}

// addPath files a repository path under its subject when it sits exactly at root/folder/name.
func addPath(builder *models.IndexBuilder, registry *models.SubjectRegistry, root, p string, size int64) {
	folder, name, ok := splitMaterialPath(root, p)
	if !ok {
		return
	}
	subject, known := registry.ByFolder(folder)
	if !known {
		return
	}
	builder.Add(subject.Name, models.RemoteFile{Name: name, Folder: folder, Size: size})
}

func splitMaterialPath(root, p string) (folder, name string, ok bool) {
	p = strings.TrimPrefix(p, "/")
	if root != "" {
		prefix := root + "/"
		if !strings.HasPrefix(p, prefix) {
			return "", "", false
		}
		p = strings.TrimPrefix(p, prefix)
	}
	parts := strings.Split(p, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	if isReadme(parts[1]) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func isReadme(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "readme")
}

func joinPath(root, folder string) string {
	if root == "" {
		return folder
	}
	return root + "/" + folder
}
