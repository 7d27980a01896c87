package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"passport-apply/apperror"
	"passport-apply/logger"
	"passport-apply/middleware"
	authservice "passport-apply/services/auth"
	"passport-apply/types"
	authtypes "passport-apply/types/auth"
	"passport-apply/utils"
)

// UserController handles user administration requests.
type UserController struct {
	Service *authservice.Service
	Logger  *logger.AsyncLogger
}

func NewUserController(service *authservice.Service, asyncLogger *logger.AsyncLogger) *UserController {
	return &UserController{Service: service, Logger: asyncLogger}
}

func (uc *UserController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	uc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	return result
}

// Index lists every account.
func (uc *UserController) Index(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return uc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	users, err := uc.Service.FindAll(c.Context(), identity)
	if err != nil {
		status := apperror.HTTPStatus(err)
		return uc.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: apperror.Message(err),
		})
	}

	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Users fetched successfully",
		Data:    users,
	})
}

// ChangeStatus activates or deactivates an account.
func (uc *UserController) ChangeStatus(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return uc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	var req authtypes.ChangeUserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	updated, err := uc.Service.ChangeStatus(c.Context(), identity, uint(id), req.Status)
	if err != nil {
		status := apperror.HTTPStatus(err)
		return uc.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: apperror.Message(err),
		})
	}

	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "User status updated successfully",
		Data:    updated,
	})
}

// Destroy deletes an account.
func (uc *UserController) Destroy(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return uc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return uc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	if err := uc.Service.Remove(c.Context(), identity, uint(id)); err != nil {
		status := apperror.HTTPStatus(err)
		return uc.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: apperror.Message(err),
		})
	}

	return uc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "User deleted successfully",
	})
}
