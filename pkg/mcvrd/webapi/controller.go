package webapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi/apimiddleware"
	"github.com/materials-commons/mcvr/pkg/vr"
)

// virtualController holds what every virtual resource controller needs:
// the engine and the handler requests fall through to when they address
// a native record.
type virtualController struct {
	engine *vr.Engine
	native echo.HandlerFunc
}

// respond writes result as JSON, or hands the request to the native
// handler when the engine says the target is the mapping root record.
func (c *virtualController) respond(ctx echo.Context, result interface{}, err error) error {
	switch {
	case errors.Is(err, vr.ErrNative):
		return c.native(ctx)
	case err != nil:
		return err
	default:
		return ctx.JSON(http.StatusOK, result)
	}
}

func (c *virtualController) listParams(ctx echo.Context) (vr.ListParams, error) {
	var req listRequest
	if err := bindQuery(ctx, &req); err != nil {
		return vr.ListParams{}, err
	}

	if ctx.QueryParam("limit") == "" {
		req.Limit = c.engine.Options().DefaultLimit
	}

	return req.params(), nil
}

func (c *virtualController) download(ctx echo.Context, t *vr.Target) error {
	var req downloadRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	d, err := c.engine.PrepareDownload(t, req.download(ctx.Request().Header.Get("Range")))
	if err != nil {
		return err
	}

	status := d.SetHeaders(ctx.Response().Header())
	ctx.Response().WriteHeader(status)
	if ctx.Request().Method == http.MethodHead {
		return nil
	}

	// Headers are out, so a failed stream can only be logged.
	if _, err := d.Stream(ctx.Request().Context(), ctx.Response()); err != nil {
		logStreamError(ctx, err)
	}

	return nil
}

func target(ctx echo.Context) *vr.Target {
	return apimiddleware.CurrentTarget(ctx)
}

func logStreamError(ctx echo.Context, err error) {
	if errors.Is(err, context.Canceled) {
		log.Debugf("Client went away during %s", ctx.Request().URL.Path)
		return
	}

	log.Errorf("Streaming %s failed: %s", ctx.Request().URL.Path, err)
}

func currentUserIsAdmin(ctx echo.Context) bool {
	return apimiddleware.CurrentUser(ctx).IsAdmin()
}
