package controller

import (
	"quietblock-api/core/controller"
	"quietblock-api/modules/reminder/service"

	"github.com/labstack/echo/v4"
)

type ReminderController struct {
	service service.ReminderServiceInterface
	controller.BaseController
}

func NewReminderController(svc service.ReminderServiceInterface) *ReminderController {
	return &ReminderController{
		service:        svc,
		BaseController: controller.NewBaseController(),
	}
}

// CheckNow runs a reminder check immediately
// @Summary Trigger reminder check
// @Description Scans pending blocks and dispatches every reminder that is currently due. Intended for the internal scheduler and operators.
// @Tags Reminder
// @Produce json
// @Param X-Internal-Token header string true "Internal service token"
// @Success 200 {object} dto.CheckSummary
// @Failure 401 {object} errors.AppError
// @Failure 503 {object} errors.AppError
// @Router /internal/reminders/check [post]
func (c *ReminderController) CheckNow(ctx echo.Context) error {
	summary, appErr := c.service.CheckDue(ctx.Request().Context())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, summary, "Reminder check completed")
}
