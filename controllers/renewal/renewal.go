package renewal

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"passport-apply/apperror"
	"passport-apply/logger"
	"passport-apply/middleware"
	"passport-apply/models/document"
	renewmodel "passport-apply/models/renewal"
	"passport-apply/models/user"
	renewservice "passport-apply/services/renewal"
	"passport-apply/types"
	renewtypes "passport-apply/types/renewal"
	"passport-apply/utils"
)

// RenewalController handles renewal request HTTP endpoints.
type RenewalController struct {
	Service *renewservice.Service
	Logger  *logger.AsyncLogger
}

func NewRenewalController(service *renewservice.Service, asyncLogger *logger.AsyncLogger) *RenewalController {
	return &RenewalController{Service: service, Logger: asyncLogger}
}

func (rc *RenewalController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	rc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	return result
}

func (rc *RenewalController) sendError(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(err)
	return rc.sendResponseWithLog(c, status, types.ApiResponse{
		Status:  status,
		Message: apperror.Message(err),
	})
}

func (rc *RenewalController) callerIdentity(c *fiber.Ctx) (user.Identity, error) {
	id, ok := middleware.CallerIdentity(c)
	if !ok {
		return user.Identity{}, rc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}
	return id, nil
}

// Store submits a new renewal request.
func (rc *RenewalController) Store(c *fiber.Ctx) error {
	caller, herr := rc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	var req renewtypes.CreateRenewalRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	created, err := rc.Service.Create(c.Context(), caller, req)
	if err != nil {
		return rc.sendError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Renewal request submitted successfully",
		Data:    created,
	})
}

// Index lists renewal requests, optionally filtered by ?status=.
func (rc *RenewalController) Index(c *fiber.Ctx) error {
	caller, herr := rc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	status := renewmodel.RenewalStatus(c.Query("status"))
	renewals, err := rc.Service.FindAll(c.Context(), caller, status)
	if err != nil {
		return rc.sendError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Renewal requests fetched successfully",
		Data:    renewals,
	})
}

// My lists the caller's own renewal requests.
func (rc *RenewalController) My(c *fiber.Ctx) error {
	caller, herr := rc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	renewals, err := rc.Service.FindAllByUser(c.Context(), caller)
	if err != nil {
		return rc.sendError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Renewal requests fetched successfully",
		Data:    renewals,
	})
}

// Show returns one renewal request.
func (rc *RenewalController) Show(c *fiber.Ctx) error {
	caller, herr := rc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := rc.paramID(c)
	if err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid renewal ID",
		})
	}

	r, err := rc.Service.FindOne(c.Context(), caller, id)
	if err != nil {
		return rc.sendError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Renewal request fetched successfully",
		Data:    r,
	})
}

// UpdateStatus verifies or rejects a renewal request.
func (rc *RenewalController) UpdateStatus(c *fiber.Ctx) error {
	caller, herr := rc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := rc.paramID(c)
	if err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid renewal ID",
		})
	}

	var req renewtypes.UpdateRenewalStatusRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	updated, err := rc.Service.UpdateStatus(c.Context(), caller, id, req)
	if err != nil {
		return rc.sendError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Renewal status updated successfully",
		Data:    updated,
	})
}

// UploadDocument attaches one document to a pending renewal request.
func (rc *RenewalController) UploadDocument(c *fiber.Ctx) error {
	caller, herr := rc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := rc.paramID(c)
	if err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid renewal ID",
		})
	}

	docType, ok := document.ParseRenewalType(c.Params("type"))
	if !ok {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid document type %q", c.Params("type")),
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "No file provided",
		})
	}

	src, err := file.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", err)
		return rc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to process uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		logger.Error("Failed to read uploaded file", err)
		return rc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to read file content",
		})
	}

	updated, err := rc.Service.UploadDocument(c.Context(), caller, id, docType, data, file.Header.Get("Content-Type"))
	if err != nil {
		return rc.sendError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Document uploaded successfully",
		Data:    updated,
	})
}

// DocumentURL returns a short-lived URL for one renewal document.
func (rc *RenewalController) DocumentURL(c *fiber.Ctx) error {
	caller, herr := rc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := rc.paramID(c)
	if err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid renewal ID",
		})
	}

	docType, ok := document.ParseRenewalType(c.Params("type"))
	if !ok {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid document type %q", c.Params("type")),
		})
	}

	url, err := rc.Service.DocumentURL(c.Context(), caller, id, docType)
	if err != nil {
		return rc.sendError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Document URL generated successfully",
		Data:    map[string]string{"url": url},
	})
}

// DeleteDocument removes one document from a pending renewal request.
func (rc *RenewalController) DeleteDocument(c *fiber.Ctx) error {
	caller, herr := rc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := rc.paramID(c)
	if err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid renewal ID",
		})
	}

	docType, ok := document.ParseRenewalType(c.Params("type"))
	if !ok {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid document type %q", c.Params("type")),
		})
	}

	updated, err := rc.Service.DeleteDocument(c.Context(), caller, id, docType)
	if err != nil {
		return rc.sendError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Document deleted successfully",
		Data:    updated,
	})
}

// Destroy removes a renewal request.
func (rc *RenewalController) Destroy(c *fiber.Ctx) error {
	caller, herr := rc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := rc.paramID(c)
	if err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid renewal ID",
		})
	}

	if err := rc.Service.Remove(c.Context(), caller, id); err != nil {
		return rc.sendError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Renewal request deleted successfully",
	})
}

func (rc *RenewalController) paramID(c *fiber.Ctx) (uint, error) {
	raw, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(raw), nil
}
