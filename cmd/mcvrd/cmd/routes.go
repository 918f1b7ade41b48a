package cmd

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/metrics"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi/apimiddleware"
	"github.com/materials-commons/mcvr/pkg/vr"
)

type RouteOpts struct {
	engine        *vr.Engine
	stors         *stor.Stors
	native        echo.HandlerFunc
	metrics       *metrics.Metrics
	logController *webapi.LogController
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = webapi.HTTPErrorHandler
	e.Validator = webapi.NewRequestValidator()
	e.Use(middleware.Recover())
	return e
}

func setupRoutes(e *echo.Echo, opts RouteOpts) {
	if opts.metrics != nil {
		e.Use(opts.metrics.Middleware())
		e.GET("/metrics", echo.WrapHandler(opts.metrics.Handler()))
	}

	apikeyCache := apimiddleware.NewAPIKeyCache(opts.stors.UserStor)
	g := e.Group("/api/v1", apimiddleware.APIKeyAuth(apimiddleware.APIKeyConfig{
		GetUserByAPIKey: apikeyCache.GetUserByAPIKey,
	}))

	virtual := func(level mcmodel.AccessLevel, params apimiddleware.ParamsFN) echo.MiddlewareFunc {
		return apimiddleware.VirtualResource(apimiddleware.VirtualResourceConfig{
			Resolver: opts.engine.Resolver(),
			Level:    level,
			Params:   params,
			Native:   opts.native,
		})
	}

	var (
		user       = apimiddleware.RequireUser
		read       = virtual(mcmodel.AccessRead, apimiddleware.ParamsFromRequest)
		write      = virtual(mcmodel.AccessWrite, apimiddleware.ParamsFromRequest)
		itemRead   = virtual(mcmodel.AccessRead, apimiddleware.ItemParams)
		itemWrite  = virtual(mcmodel.AccessWrite, apimiddleware.ItemParams)
		uploadSess = virtual(mcmodel.AccessWrite, apimiddleware.UploadParams)
	)

	folderController := webapi.NewFolderController(opts.engine, opts.native)
	g.GET("/folder", folderController.ListFolders, read)
	g.POST("/folder", folderController.CreateFolder, user, write)
	g.GET("/folder/:id", folderController.GetFolder, read)
	g.PUT("/folder/:id", folderController.UpdateFolder, user, folderController.MappingUpdate, write)
	g.DELETE("/folder/:id", folderController.DeleteFolder, user, write)
	g.DELETE("/folder/:id/contents", folderController.DeleteContents, user, write)
	g.POST("/folder/:id/copy", folderController.CopyFolder, user, read)
	g.GET("/folder/:id/details", folderController.GetDetails, read)
	g.GET("/folder/:id/download", folderController.DownloadFolder, read)
	g.GET("/folder/:id/rootpath", folderController.GetRootPath, read)

	itemController := webapi.NewItemController(opts.engine, opts.native)
	g.GET("/item", itemController.ListItems, read)
	g.POST("/item", itemController.CreateItem, user, write)
	g.GET("/item/:id", itemController.GetItem, itemRead)
	g.PUT("/item/:id", itemController.UpdateItem, user, itemWrite)
	g.DELETE("/item/:id", itemController.DeleteItem, user, itemWrite)
	g.POST("/item/:id/copy", itemController.CopyItem, user, itemRead)
	g.GET("/item/:id/files", itemController.GetFiles, itemRead)
	g.GET("/item/:id/download", itemController.DownloadItem, itemRead)
	g.GET("/item/:id/rootpath", itemController.GetRootPath, itemRead)

	fileController := webapi.NewFileController(opts.engine, opts.native)
	g.POST("/file", fileController.CreateFile, user, write)
	g.POST("/file/chunk", fileController.ReadChunk, user, write)
	g.GET("/file/offset", fileController.GetUploadOffset, user, write)
	g.DELETE("/file/upload/:id", fileController.CancelUpload, user, uploadSess)
	g.GET("/file/:id", fileController.GetFile, itemRead)
	g.PUT("/file/:id", fileController.UpdateFile, user, itemWrite)
	g.DELETE("/file/:id", fileController.DeleteFile, user, itemWrite)
	g.GET("/file/:id/download", fileController.DownloadFile, itemRead)

	resourceController := webapi.NewResourceController(opts.engine, opts.native)
	g.DELETE("/resource", resourceController.DeleteResources, user)
	g.POST("/resource/copy", resourceController.CopyResources, user, write)
	g.PUT("/resource/move", resourceController.MoveResources, user, write)
	g.GET("/resource/lookup", resourceController.Lookup)
	g.GET("/resource/:id/path", resourceController.GetResourcePath, read)

	notificationController := webapi.NewNotificationController(opts.stors.NotificationStor)
	g.GET("/notification", notificationController.ListNotifications, user)

	if opts.logController != nil {
		g.GET("/system/logging", opts.logController.ShowCurrentLogging, webapi.RequireAdmin)
		g.PUT("/system/logging", opts.logController.SetLogging, webapi.RequireAdmin)
	}
}
