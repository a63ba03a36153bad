package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/haltestellenmonitor/internal/pkg/errors"
	"github.com/haltestellenmonitor/internal/pkg/utils"
	"github.com/haltestellenmonitor/internal/pkg/validator"
	"github.com/haltestellenmonitor/internal/usecase"
	"github.com/haltestellenmonitor/internal/usecase/dto"
	"go.uber.org/zap"
)

// FavoriteHandler - избранные остановки
type FavoriteHandler struct {
	stopUC *usecase.StopUsecase
	logger *zap.Logger
}

func NewFavoriteHandler(stopUC *usecase.StopUsecase, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		stopUC: stopUC,
		logger: logger,
	}
}

func stopIDParam(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("stop_id")
	if err != nil || id <= 0 {
		return 0, invalidParam("stop_id", "must be a positive number")
	}
	return id, nil
}

// List godoc
// @Summary Избранные остановки
// @Tags Favorites
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.StopListResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/favorites [get]
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	stops, err := h.stopUC.Favorites(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to load favorites", zap.Error(err))
		return utils.SendError(c, errors.ErrStoreError.Wrap(err))
	}
	return utils.SendSuccess(c, dto.StopListResponse{Stops: stops, Total: len(stops)}, nil)
}

// Add godoc
// @Summary Добавить в избранное
// @Tags Favorites
// @Produce json
// @Param stop_id path int true "Числовой id остановки"
// @Success 200 {object} utils.SuccessResponse{data=dto.FavoriteStateResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/favorites/{stop_id} [post]
func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	id, err := stopIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := h.stopUC.AddFavorite(c.UserContext(), id); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.FavoriteStateResponse{StopID: id, Favorite: true}, nil)
}

// Remove godoc
// @Summary Убрать из избранного
// @Tags Favorites
// @Produce json
// @Param stop_id path int true "Числовой id остановки"
// @Success 200 {object} utils.SuccessResponse{data=dto.FavoriteStateResponse}
// @Router /api/v1/favorites/{stop_id} [delete]
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	id, err := stopIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := h.stopUC.RemoveFavorite(c.UserContext(), id); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.FavoriteStateResponse{StopID: id, Favorite: false}, nil)
}

// Toggle godoc
// @Summary Переключить избранное
// @Tags Favorites
// @Produce json
// @Param stop_id path int true "Числовой id остановки"
// @Success 200 {object} utils.SuccessResponse{data=dto.FavoriteStateResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/favorites/{stop_id}/toggle [post]
func (h *FavoriteHandler) Toggle(c *fiber.Ctx) error {
	id, err := stopIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	favorite, err := h.stopUC.ToggleFavorite(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.FavoriteStateResponse{StopID: id, Favorite: favorite}, nil)
}

// Default godoc
// @Summary Остановка для виджета
// @Description Ближайшая избранная, если включён режим только избранного; иначе настроенная; иначе Hauptbahnhof.
// @Tags Favorites
// @Produce json
// @Param lat query number false "Широта устройства"
// @Param lon query number false "Долгота устройства"
// @Success 200 {object} utils.SuccessResponse{data=domain.Stop}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/favorites/default [get]
func (h *FavoriteHandler) Default(c *fiber.Ctx) error {
	lat, lon, err := parseCoordinates(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	req := dto.DefaultStopRequest{Lat: lat, Lon: lon}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	stop, err := h.stopUC.DefaultStop(c.UserContext(), req.Origin())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, stop, nil)
}
