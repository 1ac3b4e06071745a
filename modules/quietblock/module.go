package quietblock

import (
	"quietblock-api/core/cache"
	"quietblock-api/core/database"
	"quietblock-api/core/middleware"
	"quietblock-api/modules/quietblock/controller"
	"quietblock-api/modules/quietblock/repository"
	"quietblock-api/modules/quietblock/router"
	"quietblock-api/modules/quietblock/service"
	userRepository "quietblock-api/modules/user/repository"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, c cache.Cache, mw *middleware.Middleware) (service.QuietBlockServiceInterface, *repository.QuietBlockRepository) {
	repo := repository.NewQuietBlockRepository(db)
	userRepo := userRepository.NewUserRepository(db)
	svc := service.NewQuietBlockService(repo, userRepo, c)
	ctrl := controller.NewQuietBlockController(svc)

	router.NewQuietBlockRouter(ctrl).Register(e, mw)

	return svc, repo
}
