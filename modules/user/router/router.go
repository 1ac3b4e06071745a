package router

import (
	"quietblock-api/core/middleware"
	"quietblock-api/modules/user/controller"

	"github.com/labstack/echo/v4"
)

type UserRouter struct {
	controller *controller.UserController
}

func NewUserRouter(ctrl *controller.UserController) *UserRouter {
	return &UserRouter{controller: ctrl}
}

func (r *UserRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	auth := e.Group("/auth")
	auth.POST("/register", r.controller.Register)
	auth.POST("/login", r.controller.Login)
	auth.POST("/logout", r.controller.Logout, mw.AuthMiddleware())

	users := e.Group("/private/users", mw.AuthMiddleware())
	users.GET("/me", r.controller.GetMe)
	users.PUT("/me/settings", r.controller.UpdateSettings)
}
