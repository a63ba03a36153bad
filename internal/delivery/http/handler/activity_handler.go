package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/haltestellenmonitor/internal/pkg/utils"
	"github.com/haltestellenmonitor/internal/pkg/validator"
	"github.com/haltestellenmonitor/internal/usecase"
	"github.com/haltestellenmonitor/internal/usecase/dto"
	"go.uber.org/zap"
)

// ActivityHandler - live activities для отправлений
type ActivityHandler struct {
	activityUC *usecase.LiveActivityUsecase
	logger     *zap.Logger
}

func NewActivityHandler(activityUC *usecase.LiveActivityUsecase, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityUC: activityUC,
		logger:     logger,
	}
}

// Start godoc
// @Summary Запустить live activity
// @Description Запрашивает активность у платформы и пересылает её push-токены бэкенду обновлений. Каждый токен отправляется один раз.
// @Tags Activities
// @Accept json
// @Produce json
// @Param request body dto.ActivityRequest true "Остановка и отправление"
// @Success 201 {object} utils.SuccessResponse{data=usecase.ActivityView}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/activities [post]
func (h *ActivityHandler) Start(c *fiber.Ctx) error {
	var req dto.ActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, invalidParam("body", "invalid JSON"))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}
	if !req.Event.HasScheduledTime() {
		return utils.SendError(c, invalidParam("event", "timetabled time required"))
	}

	// сессия переживает запрос, контекст запроса нужен только для Request
	session, err := h.activityUC.Start(c.UserContext(), req.StopGID, req.Event)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, session.View())
}

// List godoc
// @Summary Активные live activities
// @Tags Activities
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]usecase.ActivityView}
// @Router /api/v1/activities [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	views := h.activityUC.List()
	return utils.SendSuccess(c, views, &utils.Meta{Total: len(views)})
}

// Get godoc
// @Summary Состояние live activity
// @Tags Activities
// @Produce json
// @Param id path string true "ID активности"
// @Success 200 {object} utils.SuccessResponse{data=usecase.ActivityView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/activities/{id} [get]
func (h *ActivityHandler) Get(c *fiber.Ctx) error {
	view, err := h.activityUC.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, nil)
}

// Stop godoc
// @Summary Завершить live activity
// @Tags Activities
// @Param id path string true "ID активности"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/activities/{id} [delete]
func (h *ActivityHandler) Stop(c *fiber.Ctx) error {
	if err := h.activityUC.Stop(c.UserContext(), c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
