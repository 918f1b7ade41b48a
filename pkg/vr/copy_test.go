package vr

import (
	"testing"

	"github.com/materials-commons/mcvr/pkg/vrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyItemUniqueNames(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("a.txt"), "data")

	first, err := f.e.CopyItem(f.target(f.path("a.txt")), "", "")
	require.NoError(t, err)
	assert.Equal(t, "a.txt (1)", first.Name)

	second, err := f.e.CopyItem(f.target(f.path("a.txt")), "", "")
	require.NoError(t, err)
	assert.Equal(t, "a.txt (2)", second.Name)

	assert.Equal(t, "data", readFile(t, f.path("a.txt (2)")))
}

func TestCopyItemToOtherFolder(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("a.txt"), "data")
	mkdir(t, f.path("dest"))

	item, err := f.e.CopyItem(f.target(f.path("a.txt")), "b.txt", vrid.Encode(f.path("dest"), f.root.ID))
	require.NoError(t, err)
	assert.Equal(t, "b.txt", item.Name)
	assert.FileExists(t, f.path("a.txt"))
	assert.FileExists(t, f.path("dest", "b.txt"))
}

func TestCopyFolder(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("src", "sub", "a.txt"), "a")

	_, err := f.e.CopyFolder(f.target(f.path("src")), "", "")
	require.True(t, IsKind(err, KindAlreadyExists))

	copied, err := f.e.CopyFolder(f.target(f.path("src")), "dup", "")
	require.NoError(t, err)
	assert.Equal(t, "dup", copied.Name)
	assert.Equal(t, "a", readFile(t, f.path("dup", "sub", "a.txt")))

	_, err = f.e.CopyFolder(f.target(f.path("src")), "", vrid.Encode(f.path("src", "sub"), f.root.ID))
	require.True(t, IsKind(err, KindInvalidParameter))
}

func TestCopyMappingRootForbidden(t *testing.T) {
	f := newFixture(t)

	for _, target := range []*Target{
		f.target(f.dir),
		{Path: f.dir, Root: f.root, User: f.admin},
	} {
		_, err := f.e.CopyFolder(target, "copy", "")
		require.True(t, IsKind(err, KindMappingCopyForbidden))
	}
}

func TestCopyNeedsWriteOnDestination(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("a.txt"), "data")
	other := f.mapping(t, "readonly", t.TempDir())
	require.NoError(t, f.stors.FolderStor.GrantAccess(f.root.ID, f.other.ID, 0))

	target := &Target{Path: f.path("a.txt"), Root: f.root, User: f.other}
	_, err := f.e.CopyItem(target, "", "")
	require.True(t, IsKind(err, KindAccessDenied))

	_, err = f.e.CopyItem(target, "", other.ID)
	require.True(t, IsKind(err, KindAccessDenied))
}
