package webapi

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi/apimiddleware"
	"github.com/materials-commons/mcvr/pkg/vr"
)

type FolderController struct {
	virtualController
}

func NewFolderController(engine *vr.Engine, native echo.HandlerFunc) *FolderController {
	return &FolderController{virtualController{engine: engine, native: native}}
}

func (c *FolderController) ListFolders(ctx echo.Context) error {
	t := target(ctx)
	p, err := c.listParams(ctx)
	if err != nil {
		return err
	}

	folders, err := c.engine.ListFolders(t, p)
	if err != nil {
		return err
	}

	level := t.Root.LevelFor(t.User)
	for i := range folders {
		folders[i] = folders[i].Filter(t.User, level)
	}

	return ctx.JSON(http.StatusOK, folders)
}

func (c *FolderController) CreateFolder(ctx echo.Context) error {
	var req createRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	t := target(ctx)
	folder, err := c.engine.CreateFolder(t, req.Name)
	return c.respond(ctx, filtered(t, folder), err)
}

func (c *FolderController) GetFolder(ctx echo.Context) error {
	t := target(ctx)
	folder, err := vr.AsFolder(t.Path, t.Root)
	return c.respond(ctx, filtered(t, folder), err)
}

func (c *FolderController) UpdateFolder(ctx echo.Context) error {
	var req updateFolderRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	t := target(ctx)
	folder, err := c.engine.UpdateFolder(t, req.Name, req.ParentID)
	return c.respond(ctx, filtered(t, folder), err)
}

// MappingUpdate serves folder updates that carry isMapping or fsPath.
// Those change the native record, so they are handled before any
// virtual resolution.
func (c *FolderController) MappingUpdate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if ctx.QueryParam("isMapping") == "" && ctx.QueryParam("fsPath") == "" {
			return next(ctx)
		}

		var req mappingRequest
		if err := bindQuery(ctx, &req); err != nil {
			return err
		}

		user := apimiddleware.CurrentUser(ctx)
		folder, err := c.engine.SetMapping(user, ctx.Param("id"), req.IsMapping, req.FsPath)
		if err != nil {
			return err
		}

		return ctx.JSON(http.StatusOK, vr.FolderViewFromRecord(folder).Filter(user, folder.LevelFor(user)))
	}
}

func (c *FolderController) DeleteFolder(ctx echo.Context) error {
	t := target(ctx)
	err := c.engine.DeleteFolder(t)
	return c.respond(ctx, deletedMessage(vr.ModelFolder, t), err)
}

func (c *FolderController) DeleteContents(ctx echo.Context) error {
	err := c.engine.DeleteContents(target(ctx))
	return c.respond(ctx, nil, err)
}

func (c *FolderController) CopyFolder(ctx echo.Context) error {
	var req updateFolderRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	t := target(ctx)
	folder, err := c.engine.CopyFolder(t, req.Name, req.ParentID)
	return c.respond(ctx, filtered(t, folder), err)
}

func (c *FolderController) GetDetails(ctx echo.Context) error {
	details, err := c.engine.Details(target(ctx))
	return c.respond(ctx, details, err)
}

func (c *FolderController) DownloadFolder(ctx echo.Context) error {
	z, err := c.engine.PrepareZip(target(ctx))
	if err != nil {
		return err
	}

	h := ctx.Response().Header()
	h.Set(echo.HeaderContentType, "application/zip")
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"%s.zip\"", z.Name))
	ctx.Response().WriteHeader(http.StatusOK)

	if err := z.Stream(ctx.Request().Context(), ctx.Response()); err != nil {
		logStreamError(ctx, err)
	}

	return nil
}

func (c *FolderController) GetRootPath(ctx echo.Context) error {
	entries, err := c.engine.RootPath(target(ctx))
	return c.respond(ctx, entries, err)
}

// filtered applies the caller's view of the root to a folder result. A
// nil folder stays nil so errors pass through respond untouched.
func filtered(t *vr.Target, folder *vr.FolderView) *vr.FolderView {
	if folder == nil {
		return nil
	}

	return folder.Filter(t.User, t.Root.LevelFor(t.User))
}

type message struct {
	Message string `json:"message"`
}

func deletedMessage(kind string, t *vr.Target) message {
	return message{Message: fmt.Sprintf("Deleted %s %s.", kind, filepath.Base(t.Path))}
}
