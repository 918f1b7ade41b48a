package webapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/mcvrd/webapi/apimiddleware"
	pkgerrors "github.com/pkg/errors"
)

type NotificationController struct {
	notificationStor stor.NotificationStor
}

func NewNotificationController(notificationStor stor.NotificationStor) *NotificationController {
	return &NotificationController{notificationStor: notificationStor}
}

// ListNotifications returns the caller's notifications updated after
// since (RFC 3339), or all of them.
func (c *NotificationController) ListNotifications(ctx echo.Context) error {
	var req notificationRequest
	if err := bindQuery(ctx, &req); err != nil {
		return err
	}

	var since time.Time
	if req.Since != "" {
		since, _ = time.Parse(time.RFC3339, req.Since)
	}

	user := apimiddleware.CurrentUser(ctx)
	notifications, err := c.notificationStor.ListNotificationsForUser(user.ID, since)
	if err != nil {
		return pkgerrors.Wrapf(err, "listing notifications for %s", user.ID)
	}

	return ctx.JSON(http.StatusOK, notifications)
}
