package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/vr"
)

type ItemController struct {
	virtualController
}

func NewItemController(engine *vr.Engine, native echo.HandlerFunc) *ItemController {
	return &ItemController{virtualController{engine: engine, native: native}}
}

func (c *ItemController) ListItems(ctx echo.Context) error {
	p, err := c.listParams(ctx)
	if err != nil {
		return err
	}

	items, err := c.engine.ListItems(target(ctx), p)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, items)
}

func (c *ItemController) CreateItem(ctx echo.Context) error {
	var req createRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	item, err := c.engine.CreateItem(target(ctx), req.Name)
	return c.respond(ctx, item, err)
}

func (c *ItemController) GetItem(ctx echo.Context) error {
	t := target(ctx)
	item, err := vr.AsItem(t.Path, t.Root)
	return c.respond(ctx, item, err)
}

func (c *ItemController) UpdateItem(ctx echo.Context) error {
	var req updateItemRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	item, err := c.engine.UpdateItem(target(ctx), req.Name, req.FolderID)
	return c.respond(ctx, item, err)
}

func (c *ItemController) DeleteItem(ctx echo.Context) error {
	t := target(ctx)
	err := c.engine.DeleteItem(t)
	return c.respond(ctx, deletedMessage(vr.ModelItem, t), err)
}

func (c *ItemController) CopyItem(ctx echo.Context) error {
	var req updateItemRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	item, err := c.engine.CopyItem(target(ctx), req.Name, req.FolderID)
	return c.respond(ctx, item, err)
}

func (c *ItemController) GetFiles(ctx echo.Context) error {
	p, err := c.listParams(ctx)
	if err != nil {
		return err
	}

	files, err := c.engine.ItemFiles(target(ctx), p)
	return c.respond(ctx, files, err)
}

func (c *ItemController) DownloadItem(ctx echo.Context) error {
	return c.download(ctx, target(ctx))
}

func (c *ItemController) GetRootPath(ctx echo.Context) error {
	entries, err := c.engine.RootPath(target(ctx))
	return c.respond(ctx, entries, err)
}
