package reminder

import (
	"time"

	"quietblock-api/core/config"
	"quietblock-api/core/database"
	"quietblock-api/core/middleware"
	"quietblock-api/core/utils"
	"quietblock-api/modules/reminder/controller"
	"quietblock-api/modules/reminder/repository"
	"quietblock-api/modules/reminder/router"
	"quietblock-api/modules/reminder/service"
	userRepository "quietblock-api/modules/user/repository"

	"github.com/labstack/echo/v4"
)

// Init wires the reminder scheduler. The quiet block repository is
// shared with the quietblock module so both see the same sent-flag
// semantics; the push sender is the notification service.
func Init(e *echo.Group, db database.IDatabase, mw *middleware.Middleware, blocks service.BlockStore, push service.PushSender) service.ReminderServiceInterface {
	cfg := config.Get()

	attemptRepo := repository.NewDeliveryAttemptRepository(db)
	userRepo := userRepository.NewUserRepository(db)
	notifier := service.NewSMTPNotifier(utils.GetEmailConfig())

	svc := service.NewReminderService(
		blocks,
		userRepo,
		attemptRepo,
		notifier,
		push,
		time.Duration(cfg.Scheduler.LookaheadMinutes)*time.Minute,
		time.Duration(cfg.Scheduler.ToleranceMinutes)*time.Minute,
		cfg.App.DashboardURL,
	)
	ctrl := controller.NewReminderController(svc)

	router.NewReminderRouter(ctrl).Register(e, mw)

	return svc
}
