package vr

import (
	"testing"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/vrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsFolderAndAsItem(t *testing.T) {
	f := newFixture(t)
	mkdir(t, f.path("sub"))
	writeFile(t, f.path("sub", "a.tar.gz"), "hello")

	sub, err := AsFolder(f.path("sub"), f.root)
	require.NoError(t, err)
	assert.Equal(t, vrid.Encode(f.path("sub"), f.root.ID), sub.ID)
	assert.Equal(t, f.root.ID, sub.ParentID)
	assert.Equal(t, mcmodel.ParentCollectionFolder, sub.ParentCollection)

	item, err := AsItem(f.path("sub", "a.tar.gz"), f.root)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, item.FolderID)
	assert.Equal(t, int64(5), item.Size)

	file, err := AsFile(f.path("sub", "a.tar.gz"), f.root)
	require.NoError(t, err)
	assert.Equal(t, item.ID, file.ID)
	assert.Equal(t, item.ID, file.ItemID)
	assert.Equal(t, []string{"tar", "gz"}, file.Exts)

	p, rootID, err := vrid.Decode(item.ID)
	require.NoError(t, err)
	assert.Equal(t, f.path("sub", "a.tar.gz"), p)
	assert.Equal(t, f.root.ID, rootID)
}

func TestViewsRejectWrongKind(t *testing.T) {
	f := newFixture(t)
	writeFile(t, f.path("a.txt"), "x")
	mkdir(t, f.path("d"))

	_, err := AsFolder(f.path("a.txt"), f.root)
	require.True(t, IsKind(err, KindInvalidResource))

	_, err = AsItem(f.path("d"), f.root)
	require.True(t, IsKind(err, KindInvalidResource))

	_, err = AsFile(f.path("missing"), f.root)
	require.True(t, IsKind(err, KindInvalidResource))
}

func TestAsFolderOfRootIsRootRecord(t *testing.T) {
	f := newFixture(t)

	v, err := AsFolder(f.dir, f.root)
	require.NoError(t, err)
	assert.Equal(t, f.root.ID, v.ID)
	assert.Equal(t, f.top.ID, v.ParentID)
	assert.True(t, v.IsMapping)
}

func TestFilterHidesFsPath(t *testing.T) {
	f := newFixture(t)
	v := FolderViewFromRecord(f.root)

	assert.Empty(t, v.Filter(f.owner, mcmodel.AccessOwn).FsPath)
	assert.Equal(t, f.dir, v.Filter(f.admin, mcmodel.AccessOwn).FsPath)
	assert.Equal(t, f.dir, v.FsPath)
}

func TestExtensions(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"a.txt", []string{"txt"}},
		{"a.tar.gz", []string{"tar", "gz"}},
		{".bashrc", []string{}},
		{"name.", []string{}},
		{"noext", []string{}},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, extensions(test.name), test.name)
	}
}
