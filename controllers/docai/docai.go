package docai

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"passport-apply/apperror"
	"passport-apply/logger"
	docaiservice "passport-apply/services/docai"
	"passport-apply/types"
	"passport-apply/utils"
)

// DocAIController handles OCR extraction requests for identity documents.
type DocAIController struct {
	Service *docaiservice.Service
	Logger  *logger.AsyncLogger
}

func NewDocAIController(service *docaiservice.Service, asyncLogger *logger.AsyncLogger) *DocAIController {
	return &DocAIController{Service: service, Logger: asyncLogger}
}

func (dc *DocAIController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	dc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	return result
}

// Extract runs OCR over one uploaded identity document image.
func (dc *DocAIController) Extract(c *fiber.Ctx) error {
	startTime := time.Now()

	file, err := c.FormFile("image")
	if err != nil {
		logger.Error("No image file provided for extraction", err)
		return dc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "No image file provided",
		})
	}

	mimeType := file.Header.Get("Content-Type")

	src, err := file.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", err)
		return dc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to process uploaded file",
		})
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		logger.Error("Failed to read file content", err)
		return dc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to read file content",
		})
	}

	result, err := dc.Service.Extract(c.Context(), fileBytes, mimeType)
	if err != nil {
		logger.Error("Failed to extract document fields", err)
		status := apperror.HTTPStatus(err)
		return dc.sendResponseWithLog(c, status, types.ApiResponse{
			Status:  status,
			Message: apperror.Message(err),
		})
	}

	result.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	logger.Success(fmt.Sprintf("Document extracted successfully in %dms", result.ProcessingTimeMs))

	return dc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Document extracted successfully",
		Data:    result,
	})
}
