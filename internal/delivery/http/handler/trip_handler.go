package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/pkg/utils"
	"github.com/haltestellenmonitor/internal/pkg/validator"
	"github.com/haltestellenmonitor/internal/usecase"
	"github.com/haltestellenmonitor/internal/usecase/dto"
	"go.uber.org/zap"
)

// TripHandler - последовательность остановок рейса
type TripHandler struct {
	monitorUC *usecase.MonitorUsecase
	stopUC    *usecase.StopUsecase
	logger    *zap.Logger
}

func NewTripHandler(monitorUC *usecase.MonitorUsecase, stopUC *usecase.StopUsecase, logger *zap.Logger) *TripHandler {
	return &TripHandler{
		monitorUC: monitorUC,
		stopUC:    stopUC,
		logger:    logger,
	}
}

// StartTrip godoc
// @Summary Открыть рейс
// @Description Рейс берётся из отправления табло: line = id рейса, tripCode из rapidJSON или хвоста JourneyRef.
// @Tags Trips
// @Accept json
// @Produce json
// @Param request body dto.TripRequest true "Остановка и отправление"
// @Success 201 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/trips [post]
func (h *TripHandler) StartTrip(c *fiber.Ctx) error {
	var req dto.TripRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, invalidParam("body", "invalid JSON"))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	stop, err := h.stopUC.Get(req.StopGID)
	if err != nil {
		return utils.SendError(c, err)
	}
	q := domain.TripQueryFor(stop, req.Event)
	if q.LineID == "" {
		return utils.SendError(c, invalidParam("event", "line reference required"))
	}

	id, err := h.monitorUC.StartTrip(q)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, dto.SessionResponse{ID: id})
}

// GetTrip godoc
// @Summary Остановки рейса
// @Tags Trips
// @Produce json
// @Param id path string true "ID сессии"
// @Param q query string false "Поиск по названию остановки"
// @Success 200 {object} utils.SuccessResponse{data=usecase.TripView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/trips/{id} [get]
func (h *TripHandler) GetTrip(c *fiber.Ctx) error {
	view, err := h.monitorUC.Trip(c.Params("id"), c.Query("q"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, &utils.Meta{Total: len(view.Stops)})
}

// StopTrip godoc
// @Summary Закрыть рейс
// @Tags Trips
// @Param id path string true "ID сессии"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/trips/{id} [delete]
func (h *TripHandler) StopTrip(c *fiber.Ctx) error {
	if err := h.monitorUC.StopTrip(c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
