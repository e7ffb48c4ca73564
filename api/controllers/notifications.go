package controllers

import (
	"net/http"

	"github.com/adeyemiadedayo/kasuwa-backend/api/middleware"
	"github.com/adeyemiadedayo/kasuwa-backend/api/responses"
	"github.com/adeyemiadedayo/kasuwa-backend/api/validators"
	"github.com/adeyemiadedayo/kasuwa-backend/internal/notifications"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/pagination"
)

// NotificationController serves the signed-in user's inbox.
type NotificationController struct {
	notifications notifications.Service
	logg          *logger.Logger
}

func NewNotificationController(notificationSvc notifications.Service, logg *logger.Logger) *NotificationController {
	return &NotificationController{notifications: notificationSvc, logg: logg}
}

func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := pagination.FromQuery(r.URL.Query())
	items, total, err := c.notifications.ListForUser(ctx, middleware.UserIDFrom(ctx), page)
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WritePage(w, items, page, total)
}

func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := validators.UUIDParam(r, "notificationID")
	if err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	if err := c.notifications.MarkRead(ctx, id, middleware.UserIDFrom(ctx)); err != nil {
		responses.WriteError(ctx, w, c.logg, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
