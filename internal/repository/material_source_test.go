package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/klmaterial-hub/internal/models"
	appErrors "github.com/noah-isme/klmaterial-hub/pkg/errors"
	"github.com/noah-isme/klmaterial-hub/pkg/github"
	"github.com/noah-isme/klmaterial-hub/pkg/jsdelivr"
)

var testLocation = RemoteLocation{Repo: "owner/klmaterial", Branch: "main", Root: "materials"}

func sourceRegistry(t *testing.T) *models.SubjectRegistry {
	t.Helper()
	registry, err := models.NewSubjectRegistry([]models.SubjectConfig{
		{Code: "BEEC", Name: "Basic Electrical & Electronic Circuits (BEEC)", Folder: "BEEC", Year: 1, Semester: 1},
		{Code: "DM", Name: "Discrete Mathematics (DM)", Folder: "DM", Year: 1, Semester: 1},
	})
	require.NoError(t, err)
	return registry
}

func TestSplitMaterialPath(t *testing.T) {
	cases := []struct {
		path   string
		folder string
		name   string
		ok     bool
	}{
		{"materials/BEEC/co1.pdf", "BEEC", "co1.pdf", true},
		{"/materials/DM/notes.txt", "DM", "notes.txt", true},
		{"materials/BEEC/README.md", "", "", false},
		{"materials/BEEC/sub/deep.pdf", "", "", false},
		{"materials/top.pdf", "", "", false},
		{"other/BEEC/co1.pdf", "", "", false},
	}
	for _, tc := range cases {
		folder, name, ok := splitMaterialPath("materials", tc.path)
		assert.Equal(t, tc.ok, ok, tc.path)
		assert.Equal(t, tc.folder, folder, tc.path)
		assert.Equal(t, tc.name, name, tc.path)
	}
}

func TestTreeSourceGroupsBlobsBySubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/klmaterial/git/trees/main", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		_, _ = w.Write([]byte(`{"sha":"abc","tree":[
			{"path":"materials","type":"tree"},
			{"path":"materials/DM","type":"tree"},
			{"path":"materials/DM/DM_CO-1_material.pdf","type":"blob","size":10},
			{"path":"materials/BEEC/BEEC_CO1.pdf","type":"blob","size":20},
			{"path":"materials/BEEC/readme.md","type":"blob","size":1},
			{"path":"materials/UNKNOWN/x.pdf","type":"blob","size":1},
			{"path":"materials/BEEC/BEEC_CO2.pptx","type":"blob","size":30}
		]}`))
	}))
	defer srv.Close()

	source := NewTreeSource(github.New("", srv.URL, time.Second), testLocation, sourceRegistry(t))
	idx, err := source.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Discrete Mathematics (DM)", "Basic Electrical & Electronic Circuits (BEEC)"}, idx.Subjects())
	assert.Equal(t, []models.RemoteFile{
		{Name: "BEEC_CO1.pdf", Folder: "BEEC", Size: 20},
		{Name: "BEEC_CO2.pptx", Folder: "BEEC", Size: 30},
	}, idx.Files("Basic Electrical & Electronic Circuits (BEEC)"))
	assert.Equal(t, SourceTree, source.Name())
}

func TestTreeSourceFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewTreeSource(github.New("", srv.URL, time.Second), testLocation, sourceRegistry(t)).List(context.Background())
	require.Error(t, err)
}

func TestTreeSourceRejectsTruncatedTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sha":"abc","truncated":true,"tree":[
			{"path":"materials/DM/DM_CO-1_material.pdf","type":"blob","size":10}
		]}`))
	}))
	defer srv.Close()

	idx, err := NewTreeSource(github.New("", srv.URL, time.Second), testLocation, sourceRegistry(t)).List(context.Background())
	require.ErrorIs(t, err, github.ErrTruncated)
	assert.True(t, idx.IsEmpty())
}

func TestMirrorSourceUsesFlatListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/packages/gh/owner/klmaterial@main", r.URL.Path)
		_, _ = w.Write([]byte(`{"type":"gh","files":[
			{"name":"/materials/BEEC/BEEC_CO1.pdf","size":20},
			{"name":"/materials/DM/README.md","size":1},
			{"name":"/index.html","size":5}
		]}`))
	}))
	defer srv.Close()

	source := NewMirrorSource(jsdelivr.New(srv.URL, time.Second), testLocation, sourceRegistry(t))
	idx, err := source.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 1, idx.TotalFiles())
}

func TestFolderSourceSkipsMissingFolders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/klmaterial/contents/materials/BEEC":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		case "/repos/owner/klmaterial/contents/materials/DM":
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			_, _ = w.Write([]byte(`[
				{"name":"DM_CO-1_material.pdf","type":"file","size":10},
				{"name":"old","type":"dir","size":0},
				{"name":"README.md","type":"file","size":1}
			]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	source := NewFolderSource(github.New("", srv.URL, time.Second), testLocation, sourceRegistry(t), nil)
	idx, err := source.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Discrete Mathematics (DM)"}, idx.Subjects())
	assert.Equal(t, 1, idx.TotalFiles())
}

func TestFolderSourceRateLimitShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded for 1.2.3.4."}`))
	}))
	defer srv.Close()

	source := NewFolderSource(github.New("", srv.URL, time.Second), testLocation, sourceRegistry(t), nil)
	_, err := source.List(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRateLimited.Code))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFolderSourceFailsWhenEveryFolderFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream down`))
	}))
	defer srv.Close()

	source := NewFolderSource(github.New("", srv.URL, time.Second), testLocation, sourceRegistry(t), nil)
	_, err := source.List(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "BEEC"))
	assert.False(t, appErrors.HasCode(err, appErrors.ErrRateLimited.Code))
}
