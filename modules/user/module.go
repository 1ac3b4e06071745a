package user

import (
	"quietblock-api/core/cache"
	"quietblock-api/core/database"
	"quietblock-api/core/middleware"
	"quietblock-api/modules/user/controller"
	"quietblock-api/modules/user/repository"
	"quietblock-api/modules/user/router"
	"quietblock-api/modules/user/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, c cache.Cache, mw *middleware.Middleware) (service.UserServiceInterface, *repository.UserRepository) {
	repo := repository.NewUserRepository(db)
	svc := service.NewUserService(repo, c)
	ctrl := controller.NewUserController(svc)

	router.NewUserRouter(ctrl).Register(e, mw)

	return svc, repo
}
