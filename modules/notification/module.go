package notification

import (
	"quietblock-api/core/database"
	"quietblock-api/core/middleware"
	"quietblock-api/modules/notification/controller"
	"quietblock-api/modules/notification/repository"
	"quietblock-api/modules/notification/router"
	"quietblock-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, mw *middleware.Middleware) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	return svc
}
