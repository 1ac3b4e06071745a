package controller

import (
	"time"

	"quietblock-api/core/controller"
	"quietblock-api/core/errors"
	"quietblock-api/core/middleware"
	"quietblock-api/core/params"
	"quietblock-api/modules/quietblock/dto"
	"quietblock-api/modules/quietblock/entity"
	"quietblock-api/modules/quietblock/repository"
	"quietblock-api/modules/quietblock/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type QuietBlockController struct {
	service service.QuietBlockServiceInterface
	controller.BaseController
}

func NewQuietBlockController(svc service.QuietBlockServiceInterface) *QuietBlockController {
	return &QuietBlockController{
		service:        svc,
		BaseController: controller.NewBaseController(),
	}
}

// Create schedules a new quiet block
// @Summary Create quiet block
// @Description Reserve a private time interval. Rejected when it overlaps existing blocks.
// @Tags QuietBlock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBlockRequest true "Block details"
// @Success 201 {object} dto.BlockResponse
// @Failure 400 {object} errors.AppError
// @Failure 409 {object} errors.AppError "overlaps existing blocks; details lists all conflicts"
// @Router /private/blocks [post]
func (c *QuietBlockController) Create(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.CreateBlockRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	resp, appErr := c.service.Create(ctx.Request().Context(), userID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, resp, "Quiet block created")
}

// List returns the user's quiet blocks
// @Summary List quiet blocks
// @Tags QuietBlock
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Filter by status"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {object} dto.PaginatedBlocksResponse
// @Router /private/blocks [get]
func (c *QuietBlockController) List(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	filter := repository.ListFilter{}
	if v := ctx.QueryParam("status"); v != "" {
		status := entity.BlockStatus(v)
		filter.Status = &status
	}
	if v := ctx.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidRequestData, "from must be RFC3339")
		}
		filter.From = &t
	}
	if v := ctx.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidRequestData, "to must be RFC3339")
		}
		filter.To = &t
	}

	queryParams := params.NewQueryParams(ctx)
	resp, appErr := c.service.List(ctx.Request().Context(), userID, *queryParams, filter)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Quiet blocks retrieved")
}

// Get returns one quiet block
// @Summary Get quiet block
// @Tags QuietBlock
// @Security BearerAuth
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {object} dto.BlockResponse
// @Failure 404 {object} errors.AppError
// @Router /private/blocks/{id} [get]
func (c *QuietBlockController) Get(ctx echo.Context) error {
	userID, blockID, httpErr := c.idsFromContext(ctx)
	if httpErr != nil {
		return httpErr
	}

	resp, appErr := c.service.GetByID(ctx.Request().Context(), userID, blockID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Quiet block retrieved")
}

// Update edits a quiet block in place
// @Summary Update quiet block
// @Description Partial update. Moving the time range re-runs the overlap check (excluding the block itself) and re-arms the reminder.
// @Tags QuietBlock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Block ID"
// @Param request body dto.UpdateBlockRequest true "Fields to change"
// @Success 200 {object} dto.BlockResponse
// @Failure 409 {object} errors.AppError
// @Router /private/blocks/{id} [put]
func (c *QuietBlockController) Update(ctx echo.Context) error {
	userID, blockID, httpErr := c.idsFromContext(ctx)
	if httpErr != nil {
		return httpErr
	}

	req := new(dto.UpdateBlockRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	resp, appErr := c.service.Update(ctx.Request().Context(), userID, blockID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Quiet block updated")
}

// Delete soft-deletes a quiet block
// @Summary Delete quiet block
// @Tags QuietBlock
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.AppError
// @Router /private/blocks/{id} [delete]
func (c *QuietBlockController) Delete(ctx echo.Context) error {
	userID, blockID, httpErr := c.idsFromContext(ctx)
	if httpErr != nil {
		return httpErr
	}

	if appErr := c.service.Delete(ctx.Request().Context(), userID, blockID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Quiet block deleted")
}

// Complete marks an active block as completed
// @Summary Complete quiet block
// @Tags QuietBlock
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 200 {object} dto.BlockResponse
// @Router /private/blocks/{id}/complete [post]
func (c *QuietBlockController) Complete(ctx echo.Context) error {
	userID, blockID, httpErr := c.idsFromContext(ctx)
	if httpErr != nil {
		return httpErr
	}

	resp, appErr := c.service.Complete(ctx.Request().Context(), userID, blockID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Quiet block completed")
}

// Cancel cancels a scheduled or active block
// @Summary Cancel quiet block
// @Tags QuietBlock
// @Security BearerAuth
// @Param id path string true "Block ID"
// @Success 200 {object} dto.BlockResponse
// @Router /private/blocks/{id}/cancel [post]
func (c *QuietBlockController) Cancel(ctx echo.Context) error {
	userID, blockID, httpErr := c.idsFromContext(ctx)
	if httpErr != nil {
		return httpErr
	}

	resp, appErr := c.service.Cancel(ctx.Request().Context(), userID, blockID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Quiet block cancelled")
}

func (c *QuietBlockController) idsFromContext(ctx echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	blockID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, c.BadRequest(errors.ErrInvalidRequestData, "Invalid block id")
	}
	return userID, blockID, nil
}

func getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	userID, ok := ctx.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "no authenticated user", nil)
	}
	return userID, nil
}
