package router

import (
	"quietblock-api/core/middleware"
	"quietblock-api/modules/reminder/controller"

	"github.com/labstack/echo/v4"
)

type ReminderRouter struct {
	controller *controller.ReminderController
}

func NewReminderRouter(ctrl *controller.ReminderController) *ReminderRouter {
	return &ReminderRouter{controller: ctrl}
}

func (r *ReminderRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/internal/reminders", mw.InternalMiddleware())
	group.POST("/check", r.controller.CheckNow)
}
