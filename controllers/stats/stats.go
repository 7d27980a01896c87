package stats

import (
	"github.com/gofiber/fiber/v2"

	"passport-apply/apperror"
	"passport-apply/logger"
	statservice "passport-apply/services/stats"
	"passport-apply/types"
	"passport-apply/utils"
)

// StatsController exposes the application aggregation endpoints.
type StatsController struct {
	Service *statservice.Service
	Logger  *logger.AsyncLogger
}

func NewStatsController(service *statservice.Service, asyncLogger *logger.AsyncLogger) *StatsController {
	return &StatsController{Service: service, Logger: asyncLogger}
}

func (sc *StatsController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	sc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	return result
}

func (sc *StatsController) sendError(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(err)
	return sc.sendResponseWithLog(c, status, types.ApiResponse{
		Status:  status,
		Message: apperror.Message(err),
	})
}

// Totals returns the headline application counts.
func (sc *StatsController) Totals(c *fiber.Ctx) error {
	totals, err := sc.Service.Totals(c.Context())
	if err != nil {
		return sc.sendError(c, err)
	}
	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Stats fetched successfully",
		Data:    totals,
	})
}

// Daily returns submissions per calendar day, ascending.
func (sc *StatsController) Daily(c *fiber.Ctx) error {
	daily, err := sc.Service.Daily(c.Context())
	if err != nil {
		return sc.sendError(c, err)
	}
	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Daily stats fetched successfully",
		Data:    daily,
	})
}

// ByTravelDocument returns counts grouped by travel document type.
func (sc *StatsController) ByTravelDocument(c *fiber.Ctx) error {
	counts, err := sc.Service.ByTravelDocument(c.Context())
	if err != nil {
		return sc.sendError(c, err)
	}
	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Travel document stats fetched successfully",
		Data:    counts,
	})
}

// ByDistrict returns counts grouped by birth certificate district.
func (sc *StatsController) ByDistrict(c *fiber.Ctx) error {
	counts, err := sc.Service.ByDistrict(c.Context())
	if err != nil {
		return sc.sendError(c, err)
	}
	return sc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "District stats fetched successfully",
		Data:    counts,
	})
}
