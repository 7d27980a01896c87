package auth

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"passport-apply/apperror"
	"passport-apply/logger"
	"passport-apply/middleware"
	authservice "passport-apply/services/auth"
	"passport-apply/types"
	authtypes "passport-apply/types/auth"
	"passport-apply/utils"
)

// AuthController handles registration, login and profile requests.
type AuthController struct {
	Service *authservice.Service
	Logger  *logger.AsyncLogger
}

func NewAuthController(service *authservice.Service, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{Service: service, Logger: asyncLogger}
}

func (ac *AuthController) logAPIRequest(c *fiber.Ctx) {
	ac.Logger.Log(utils.CreateSanitizedLogEntry(c))
}

func (ac *AuthController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	ac.logAPIRequest(c)
	return result
}

// Helper function to set secure cookies based on environment
func (ac *AuthController) setSecureCookie(c *fiber.Ctx, name, value string, maxAge int) {
	isProduction := os.Getenv("APP_ENV") == "production"

	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: false,
		Secure:   isProduction,
		SameSite: "Strict",
		MaxAge:   maxAge,
		Path:     "/",
	})
}

// Register creates a new applicant account.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req authtypes.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	created, err := ac.Service.Signup(c.Context(), req)
	if err != nil {
		status := apperror.HTTPStatus(err)
		return ac.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: apperror.Message(err),
		})
	}

	return ac.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "User registered successfully",
		Data:    created,
	})
}

// Login verifies credentials and issues a bearer token.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req authtypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	token, u, err := ac.Service.Login(c.Context(), req)
	if err != nil {
		status := apperror.HTTPStatus(err)
		return ac.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: apperror.Message(err),
		})
	}

	ac.setSecureCookie(c, "access", token, 24*60*60)

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   token,
		Data:    u,
	})
}

// Profile returns the authenticated caller's account.
func (ac *AuthController) Profile(c *fiber.Ctx) error {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		return ac.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}

	u, err := ac.Service.FindByID(c.Context(), identity.UserID)
	if err != nil {
		status := apperror.HTTPStatus(err)
		return ac.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: apperror.Message(err),
		})
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Profile fetched successfully",
		Data:    u,
	})
}
