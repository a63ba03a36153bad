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

// StopHandler - справочник остановок
type StopHandler struct {
	stopUC *usecase.StopUsecase
	logger *zap.Logger
}

func NewStopHandler(stopUC *usecase.StopUsecase, logger *zap.Logger) *StopHandler {
	return &StopHandler{
		stopUC: stopUC,
		logger: logger,
	}
}

// Search godoc
// @Summary Поиск остановок
// @Description Поиск по названию без учёта регистра. С координатой результат отсортирован по расстоянию.
// @Tags Stops
// @Produce json
// @Param q query string false "Часть названия"
// @Param lat query number false "Широта"
// @Param lon query number false "Долгота"
// @Param limit query int false "Максимум результатов" default(20)
// @Success 200 {object} utils.SuccessResponse{data=dto.StopListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/stops [get]
func (h *StopHandler) Search(c *fiber.Ctx) error {
	lat, lon, err := parseCoordinates(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	req := dto.StopSearchRequest{
		Query: c.Query("q"),
		Lat:   lat,
		Lon:   lon,
		Limit: c.QueryInt("limit", 20),
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	stops := h.stopUC.Search(req.Query, req.Origin(), req.Limit)
	return utils.SendSuccess(c, dto.StopListResponse{Stops: stops, Total: len(stops)}, &utils.Meta{
		Total: len(stops),
		Limit: req.Limit,
	})
}

// Nearest godoc
// @Summary Ближайшие остановки
// @Tags Stops
// @Produce json
// @Param lat query number true "Широта"
// @Param lon query number true "Долгота"
// @Param limit query int false "Максимум результатов" default(5)
// @Success 200 {object} utils.SuccessResponse{data=dto.StopListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/stops/nearest [get]
func (h *StopHandler) Nearest(c *fiber.Ctx) error {
	lat, lon, err := parseCoordinates(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if lat == nil {
		return utils.SendError(c, invalidParam("lat", "required"))
	}
	req := dto.NearestStopsRequest{Lat: *lat, Lon: *lon, Limit: c.QueryInt("limit", 5)}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	stops, err := h.stopUC.Nearest(domain.Point{Lat: req.Lat, Lon: req.Lon}, req.Limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.StopListResponse{Stops: stops, Total: len(stops)}, nil)
}

// Get godoc
// @Summary Остановка по DHID
// @Tags Stops
// @Produce json
// @Param gid path string true "DHID, например de:14612:28"
// @Success 200 {object} utils.SuccessResponse{data=domain.Stop}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/stops/{gid} [get]
func (h *StopHandler) Get(c *fiber.Ctx) error {
	gid, err := stopGIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	stop, err := h.stopUC.Get(gid)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, stop, nil)
}
