package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectTree(t *testing.T) {
	resp := NewSubjectService(defaultRegistry(t)).List()
	assert.Len(t, resp.Subjects, 15)
	require.Len(t, resp.Tree, 2)
	assert.Equal(t, 1, resp.Tree[0].Year)
	require.Len(t, resp.Tree[0].Semesters, 2)
	assert.Equal(t, []string{"BEEC", "DM", "PSC", "DSD"}, resp.Tree[0].Semesters[0].Subjects)
	assert.Equal(t, []string{"PP", "LACE", "DS", "FIS", "COA"}, resp.Tree[0].Semesters[1].Subjects)
}

func TestSubjectGet(t *testing.T) {
	svc := NewSubjectService(defaultRegistry(t))
	subject, ok := svc.Get("dbms")
	require.True(t, ok)
	assert.Equal(t, 2, subject.Year)

	_, ok = svc.Get("ZZZ")
	assert.False(t, ok)
}
