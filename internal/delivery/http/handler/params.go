package handler

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/haltestellenmonitor/internal/domain"
	"github.com/haltestellenmonitor/internal/pkg/errors"
)

func invalidParam(name, reason string) error {
	return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{name: reason})
}

// stopGIDParam - gid в пути может прийти с %3A вместо двоеточий
func stopGIDParam(c *fiber.Ctx) (string, error) {
	gid, err := url.PathUnescape(c.Params("gid"))
	if err != nil || gid == "" {
		return "", invalidParam("gid", "invalid stop id")
	}
	return gid, nil
}

func parseFilter(c *fiber.Ctx) (domain.DepartureFilter, error) {
	toggles, err := domain.ParseModeToggles(c.Query("modes"))
	if err != nil {
		return domain.DepartureFilter{}, err
	}
	return domain.DepartureFilter{Toggles: toggles, Query: c.Query("q")}, nil
}

// parseTime - RFC3339, пустое значение = nil
func parseTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, invalidParam(key, "must be RFC3339")
	}
	return &t, nil
}

func parseFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalidParam(key, "must be a number")
	}
	return &v, nil
}

// parseCoordinates - lat и lon, оба или ни одного
func parseCoordinates(c *fiber.Ctx) (*float64, *float64, error) {
	lat, err := parseFloat(c, "lat")
	if err != nil {
		return nil, nil, err
	}
	lon, err := parseFloat(c, "lon")
	if err != nil {
		return nil, nil, err
	}
	if (lat == nil) != (lon == nil) {
		return nil, nil, invalidParam("lat", "lat and lon must be given together")
	}
	return lat, lon, nil
}
