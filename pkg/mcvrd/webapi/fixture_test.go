package webapi

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi/apimiddleware"
	"github.com/materials-commons/mcvr/pkg/vr"
	"github.com/stretchr/testify/require"
)

// apiFixture is a collection "data" with native folder "top" holding the
// mapping root "mapped" backed by a temp directory.
type apiFixture struct {
	engine     *vr.Engine
	stors      *stor.Stors
	owner      *mcmodel.User
	admin      *mcmodel.User
	top        *mcmodel.Folder
	root       *mcmodel.Folder
	dir        string
	nativeHits int
	nativeURL  string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	stors := stor.NewInMemoryStors()
	f := &apiFixture{stors: stors, dir: t.TempDir()}

	var err error
	f.owner, err = stors.UserStor.CreateUser(&mcmodel.User{Login: "owner"})
	require.NoError(t, err)
	f.admin, err = stors.UserStor.CreateUser(&mcmodel.User{Login: "admin", Admin: true})
	require.NoError(t, err)

	collection, err := stors.CollectionStor.CreateCollection(&mcmodel.Collection{Name: "data", CreatorID: f.owner.ID})
	require.NoError(t, err)

	f.top, err = stors.FolderStor.CreateFolder(&mcmodel.Folder{
		Name:             "top",
		ParentID:         collection.ID,
		ParentCollection: mcmodel.ParentCollectionCollection,
		CreatorID:        f.owner.ID,
	})
	require.NoError(t, err)

	mapped, err := stors.FolderStor.CreateFolder(&mcmodel.Folder{
		Name:             "mapped",
		ParentID:         f.top.ID,
		ParentCollection: mcmodel.ParentCollectionFolder,
		CreatorID:        f.owner.ID,
	})
	require.NoError(t, err)

	f.root, err = stors.FolderStor.SetMapping(mapped.ID, true, f.dir)
	require.NoError(t, err)

	opts := vr.DefaultOptions()
	opts.UploadDir = t.TempDir()
	opts.MinChunkSize = 0
	f.engine = vr.NewEngine(stors, opts)

	return f
}

// native records that the request fell through, and the resources it
// was left with.
func (f *apiFixture) native(c echo.Context) error {
	f.nativeHits++
	f.nativeURL = c.Request().URL.String()
	return c.NoContent(http.StatusTeapot)
}

func (f *apiFixture) path(elems ...string) string {
	return filepath.Join(append([]string{f.dir}, elems...)...)
}

// setupEchoContext creates a test Echo context with the given request
func setupEchoContext(t *testing.T, method, target string, body []byte, queryParams map[string]string, user *mcmodel.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = NewRequestValidator()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEOctetStream)
	}

	q := req.URL.Query()
	for key, value := range queryParams {
		q.Add(key, value)
	}
	req.URL.RawQuery = q.Encode()

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(apimiddleware.UserKey, user)

	return c, rec
}

// withID sets the :id path param.
func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

// serve runs h behind the virtual resource middleware, the way the routes
// wire it.
func (f *apiFixture) serve(c echo.Context, level mcmodel.AccessLevel, params apimiddleware.ParamsFN, h echo.HandlerFunc) error {
	mw := apimiddleware.VirtualResource(apimiddleware.VirtualResourceConfig{
		Resolver: f.engine.Resolver(),
		Level:    level,
		Params:   params,
		Native:   f.native,
	})

	return mw(h)(c)
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}
