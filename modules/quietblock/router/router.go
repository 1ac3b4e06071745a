package router

import (
	"quietblock-api/core/middleware"
	"quietblock-api/modules/quietblock/controller"

	"github.com/labstack/echo/v4"
)

type QuietBlockRouter struct {
	controller *controller.QuietBlockController
}

func NewQuietBlockRouter(ctrl *controller.QuietBlockController) *QuietBlockRouter {
	return &QuietBlockRouter{controller: ctrl}
}

func (r *QuietBlockRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/private/blocks", mw.AuthMiddleware())
	group.POST("", r.controller.Create)
	group.GET("", r.controller.List)
	group.GET("/:id", r.controller.Get)
	group.PUT("/:id", r.controller.Update)
	group.DELETE("/:id", r.controller.Delete)
	group.POST("/:id/complete", r.controller.Complete)
	group.POST("/:id/cancel", r.controller.Cancel)
}
