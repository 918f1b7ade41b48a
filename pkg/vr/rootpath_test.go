package vr

import (
	"testing"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootPath(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("a", "b", "c.txt"), "x")

	entries, err := f.e.RootPath(f.target(f.path("a", "b", "c.txt")))
	require.NoError(t, err)

	var types, names []string
	for _, entry := range entries {
		types = append(types, entry.Type)
		switch v := entry.Object.(type) {
		case *mcmodel.Collection:
			names = append(names, v.Name)
		case *FolderView:
			names = append(names, v.Name)
		}
	}

	assert.Equal(t, []string{"collection", "folder", "folder", "folder", "folder"}, types)
	assert.Equal(t, []string{"data", "top", "mapped", "a", "b"}, names)

	entries, err = f.e.RootPath(f.target(f.path("a")))
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = f.e.RootPath(f.target(f.dir))
	require.ErrorIs(t, err, ErrNative)
}

func TestResourcePath(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("a", "c.txt"), "x")

	p, err := f.e.ResourcePath(f.target(f.path("a", "c.txt")), ModelFile)
	require.NoError(t, err)
	assert.Equal(t, "/collection/data/top/mapped/a/c.txt", p)

	p, err = f.e.ResourcePath(f.target(f.dir), ModelFolder)
	require.NoError(t, err)
	assert.Equal(t, "/collection/data/top/mapped", p)

	_, err = f.e.ResourcePath(f.target(f.path("a")), ModelItem)
	require.True(t, IsKind(err, KindInvalidParameter))

	_, err = f.e.ResourcePath(f.target(f.path("a")), "user")
	require.True(t, IsKind(err, KindInvalidParameter))
}
