package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/mcproxy"
	"github.com/materials-commons/mcvr/pkg/metrics"
	"github.com/materials-commons/mcvr/pkg/mcvrclient"
	"github.com/materials-commons/mcvr/pkg/vr"
	"github.com/materials-commons/mcvr/pkg/vrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	url   string
	stors *stor.Stors
	owner *mcmodel.User
	other *mcmodel.User
	root  *mcmodel.Folder
	top   *mcmodel.Folder
	dir   string
}

func startServer(t *testing.T) *server {
	t.Helper()

	stors := stor.NewInMemoryStors()
	s := &server{stors: stors, dir: t.TempDir()}

	var err error
	s.owner, err = stors.UserStor.CreateUser(&mcmodel.User{Login: "owner"})
	require.NoError(t, err)
	s.other, err = stors.UserStor.CreateUser(&mcmodel.User{Login: "other"})
	require.NoError(t, err)

	collection, err := stors.CollectionStor.CreateCollection(&mcmodel.Collection{Name: "data", CreatorID: s.owner.ID})
	require.NoError(t, err)

	s.top, err = stors.FolderStor.CreateFolder(&mcmodel.Folder{
		Name:             "top",
		ParentID:         collection.ID,
		ParentCollection: mcmodel.ParentCollectionCollection,
		CreatorID:        s.owner.ID,
	})
	require.NoError(t, err)

	mapped, err := stors.FolderStor.CreateFolder(&mcmodel.Folder{
		Name:             "mapped",
		ParentID:         s.top.ID,
		ParentCollection: mcmodel.ParentCollectionFolder,
		CreatorID:        s.owner.ID,
	})
	require.NoError(t, err)

	s.root, err = stors.FolderStor.SetMapping(mapped.ID, true, s.dir)
	require.NoError(t, err)

	native, err := mcproxy.NewNativeHandler("")
	require.NoError(t, err)

	opts := vr.DefaultOptions()
	opts.UploadDir = t.TempDir()
	opts.MinChunkSize = 0

	m := metrics.New()
	e := newEcho()
	setupRoutes(e, RouteOpts{
		engine:  vr.NewEngine(stors, opts, vr.WithMetrics(m), vr.WithProgress(vr.NewNotificationProgress(stors.NotificationStor))),
		stors:   stors,
		native:  native,
		metrics: m,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	s.url = srv.URL

	return s
}

func TestClientRoundTrip(t *testing.T) {
	s := startServer(t)
	c := mcvrclient.New(s.url, s.owner.ApiToken)
	c.ChunkSize = 3

	sub, err := c.CreateFolder(s.root.ID, "sub")
	require.NoError(t, err)
	assert.Equal(t, vrid.Encode(filepath.Join(s.dir, "sub"), s.root.ID), sub.ID)

	file, err := c.Upload(sub.ID, "hello.txt", strings.NewReader("hello world"), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(11), file.Size)

	b, err := os.ReadFile(filepath.Join(s.dir, "sub", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(b))

	folders, err := c.ListFolders(s.root.ID, mcvrclient.ListOptions{})
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "sub", folders[0].Name)

	items, err := c.ListItems(sub.ID, mcvrclient.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	var buf bytes.Buffer
	n, err := c.Download(items[0].ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
	assert.Equal(t, "hello world", buf.String())

	doc, err := c.Lookup("collection/data/top/mapped/sub/hello.txt", false)
	require.NoError(t, err)
	var item vr.ItemView
	require.NoError(t, json.Unmarshal(doc, &item))
	assert.Equal(t, items[0].ID, item.ID)

	p, err := c.ResourcePath(items[0].ID, "item")
	require.NoError(t, err)
	assert.Equal(t, "/collection/data/top/mapped/sub/hello.txt", p)

	details, err := c.FolderDetails(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, details.NItems)

	require.NoError(t, c.DeleteResources(vr.Resources{vr.ModelFolder: {sub.ID}}, true))
	assert.NoDirExists(t, filepath.Join(s.dir, "sub"))
}

func TestAccessAndAuthentication(t *testing.T) {
	s := startServer(t)

	_, err := mcvrclient.New(s.url, "").CreateFolder(s.root.ID, "x")
	var apiErr *mcvrclient.ErrorResponse
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = mcvrclient.New(s.url, "not-a-token").ListFolders(s.root.ID, mcvrclient.ListOptions{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = mcvrclient.New(s.url, s.other.ApiToken).ListFolders(s.root.ID, mcvrclient.ListOptions{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "AccessDenied", apiErr.Kind)
}

func TestNativeRequestsFallThrough(t *testing.T) {
	s := startServer(t)

	_, err := mcvrclient.New(s.url, s.owner.ApiToken).ListFolders(s.top.ID, mcvrclient.ListOptions{})
	var apiErr *mcvrclient.ErrorResponse
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "not a virtual resource", apiErr.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	s := startServer(t)
	c := mcvrclient.New(s.url, s.owner.ApiToken)
	_, err := c.CreateFolder(s.root.ID, "m")
	require.NoError(t, err)

	resp, err := http.Get(s.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mcvr_http_requests_total")
}
