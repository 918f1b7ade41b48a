package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi/apimiddleware"
	"github.com/materials-commons/mcvr/pkg/vr"
)

// ResourceController serves the bulk and lookup endpoints. Bulk requests
// may mix virtual and native ids; the native ones are passed on to the
// native handler with the resources parameter narrowed to them.
type ResourceController struct {
	virtualController
}

func NewResourceController(engine *vr.Engine, native echo.HandlerFunc) *ResourceController {
	return &ResourceController{virtualController{engine: engine, native: native}}
}

func (c *ResourceController) DeleteResources(ctx echo.Context) error {
	res, progress, err := bulkResources(ctx)
	if err != nil {
		return err
	}

	user := apimiddleware.CurrentUser(ctx)
	remaining, err := c.engine.BulkDelete(ctx.Request().Context(), user, res, progress)
	return c.bulkDone(ctx, remaining, err)
}

func (c *ResourceController) CopyResources(ctx echo.Context) error {
	res, progress, err := bulkResources(ctx)
	if err != nil {
		return err
	}

	remaining, err := c.engine.BulkCopy(ctx.Request().Context(), target(ctx), res, progress)
	return c.bulkDone(ctx, remaining, err)
}

func (c *ResourceController) MoveResources(ctx echo.Context) error {
	res, progress, err := bulkResources(ctx)
	if err != nil {
		return err
	}

	remaining, err := c.engine.BulkMove(ctx.Request().Context(), target(ctx), res, progress)
	return c.bulkDone(ctx, remaining, err)
}

func (c *ResourceController) Lookup(ctx echo.Context) error {
	var req lookupRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	result, err := c.engine.Lookup(req.Path, apimiddleware.CurrentUser(ctx), req.Test)
	switch {
	case err != nil:
		return err
	case result == nil:
		return ctx.JSON(http.StatusOK, nil)
	default:
		return ctx.JSON(http.StatusOK, result.Document)
	}
}

func (c *ResourceController) GetResourcePath(ctx echo.Context) error {
	var req pathRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	p, err := c.engine.ResourcePath(target(ctx), req.Type)
	return c.respond(ctx, p, err)
}

// bulkDone answers the request itself when nothing is left for the native
// handler, otherwise rewrites resources to the leftovers and delegates.
func (c *ResourceController) bulkDone(ctx echo.Context, remaining vr.Resources, err error) error {
	if err != nil {
		return err
	}

	if remaining.Total() == 0 {
		return ctx.JSON(http.StatusOK, nil)
	}

	r := ctx.Request()
	q := r.URL.Query()
	q.Set("resources", remaining.JSON())
	r.URL.RawQuery = q.Encode()

	return c.native(ctx)
}

func bulkResources(ctx echo.Context) (vr.Resources, bool, error) {
	var req bulkRequest
	if err := bindQuery(ctx, &req); err != nil {
		return nil, false, err
	}

	res, err := vr.ParseResources(req.Resources)
	if err != nil {
		return nil, false, err
	}

	return res, req.Progress, nil
}
