package apimiddleware

import (
	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/vr"
)

// TargetKey is where VirtualResource stores the resolved *vr.Target.
const TargetKey = "target"

type ParamsFN func(c echo.Context) vr.Params

type VirtualResourceConfig struct {
	Resolver *vr.Resolver

	// Level is the access the user needs on the mapping root.
	Level mcmodel.AccessLevel

	// Params extracts the identifiers. Defaults to ParamsFromRequest.
	Params ParamsFN

	// Native serves requests that do not address a virtual resource.
	Native echo.HandlerFunc
}

// VirtualResource resolves the request target. Virtual targets are
// authorized and handed to the next handler, everything else goes to the
// native handler.
func VirtualResource(config VirtualResourceConfig) echo.MiddlewareFunc {
	if config.Params == nil {
		config.Params = ParamsFromRequest
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			target, err := config.Resolver.Resolve(config.Params(c), CurrentUser(c), config.Level)
			switch {
			case err != nil:
				return err
			case target == nil:
				return config.Native(c)
			default:
				c.Set(TargetKey, target)
				return next(c)
			}
		}
	}
}

// CurrentTarget returns the target VirtualResource stored.
func CurrentTarget(c echo.Context) *vr.Target {
	target, _ := c.Get(TargetKey).(*vr.Target)
	return target
}

// ParamsFromRequest reads the :id path param and the parentId,
// parentType, folderId, itemId and uploadId query params.
func ParamsFromRequest(c echo.Context) vr.Params {
	return vr.Params{
		ID:         c.Param("id"),
		ParentID:   c.QueryParam("parentId"),
		ParentType: c.QueryParam("parentType"),
		FolderID:   c.QueryParam("folderId"),
		ItemID:     c.QueryParam("itemId"),
		UploadID:   c.QueryParam("uploadId"),
	}
}

// ItemParams treats the :id path param as an item, which is never looked
// up as a native folder.
func ItemParams(c echo.Context) vr.Params {
	return vr.Params{ItemID: c.Param("id")}
}

// UploadParams treats the :id path param as an upload session id.
func UploadParams(c echo.Context) vr.Params {
	return vr.Params{UploadID: c.Param("id")}
}
