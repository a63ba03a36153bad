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

// BoardHandler - табло отправлений: разовый запрос и сессии с автообновлением
type BoardHandler struct {
	monitorUC *usecase.MonitorUsecase
	logger    *zap.Logger
}

func NewBoardHandler(monitorUC *usecase.MonitorUsecase, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		monitorUC: monitorUC,
		logger:    logger,
	}
}

// Departures godoc
// @Summary Табло остановки
// @Description Разовый запрос к EFA без сессии. Отправления отсортированы по фактическому времени.
// @Tags Departures
// @Produce json
// @Param gid path string true "DHID остановки"
// @Param time query string false "Время RFC3339, по умолчанию сейчас"
// @Param limit query int false "Количество записей" default(40)
// @Param modes query string false "Включённые виды транспорта через запятую (tram,bus,...)"
// @Param q query string false "Поиск по линии и направлению"
// @Param source query string false "trias или efa" default(trias)
// @Success 200 {object} utils.SuccessResponse{data=usecase.BoardView}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/stops/{gid}/departures [get]
func (h *BoardHandler) Departures(c *fiber.Ctx) error {
	gid, err := stopGIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	at, err := parseTime(c, "time")
	if err != nil {
		return utils.SendError(c, err)
	}
	filter, err := parseFilter(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	req := dto.DepartureRequest{
		StopGID: gid,
		Time:    at,
		Limit:   c.QueryInt("limit", 0),
		Source:  c.Query("source", string(usecase.SourceTrias)),
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	q := domain.DepartureQuery{StopGID: req.StopGID, Limit: req.Limit}
	if req.Time != nil {
		q.Time = *req.Time
	}

	view, err := h.monitorUC.Departures(c.UserContext(), q, usecase.DepartureSource(req.Source), filter)
	if err != nil {
		h.logger.Warn("Departure request failed", zap.String("stop_id", gid), zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, &utils.Meta{
		Total:   view.Total,
		Dropped: view.Dropped,
	})
}

// StartBoard godoc
// @Summary Открыть табло
// @Description Создаёт сессию: первый запрос сразу, после успеха повтор через 30 с, после ошибки через 1 с.
// @Tags Boards
// @Accept json
// @Produce json
// @Param request body dto.BoardRequest true "Остановка и время"
// @Success 201 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/boards [post]
func (h *BoardHandler) StartBoard(c *fiber.Ctx) error {
	var req dto.BoardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, invalidParam("body", "invalid JSON"))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	id, err := h.monitorUC.StartBoard(req.Query())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, dto.SessionResponse{ID: id})
}

// GetBoard godoc
// @Summary Текущее табло сессии
// @Description Фильтр применяется при чтении и не влияет на опрос.
// @Tags Boards
// @Produce json
// @Param id path string true "ID сессии"
// @Param modes query string false "Включённые виды транспорта через запятую"
// @Param q query string false "Поиск по линии и направлению"
// @Success 200 {object} utils.SuccessResponse{data=usecase.BoardView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/boards/{id} [get]
func (h *BoardHandler) GetBoard(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	view, err := h.monitorUC.Board(c.Params("id"), filter)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, &utils.Meta{Total: view.Total, Dropped: view.Dropped})
}

// UpdateBoard godoc
// @Summary Сменить остановку или время
// @Description Текущий запрос и таймер отменяются, новый запрос уходит сразу.
// @Tags Boards
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.BoardRequest true "Остановка и время"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/boards/{id} [put]
func (h *BoardHandler) UpdateBoard(c *fiber.Ctx) error {
	var req dto.BoardRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, invalidParam("body", "invalid JSON"))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	id := c.Params("id")
	if err := h.monitorUC.UpdateBoard(id, req.Query()); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.SessionResponse{ID: id}, nil)
}

// RefreshBoard godoc
// @Summary Обновить табло сейчас
// @Tags Boards
// @Produce json
// @Param id path string true "ID сессии"
// @Success 202 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/boards/{id}/refresh [post]
func (h *BoardHandler) RefreshBoard(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.monitorUC.RefreshBoard(id); err != nil {
		return utils.SendError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(utils.SuccessResponse{Data: dto.SessionResponse{ID: id}})
}

// StopBoard godoc
// @Summary Закрыть табло
// @Tags Boards
// @Param id path string true "ID сессии"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/boards/{id} [delete]
func (h *BoardHandler) StopBoard(c *fiber.Ctx) error {
	if err := h.monitorUC.StopBoard(c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
