package application

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"passport-apply/apperror"
	"passport-apply/logger"
	"passport-apply/middleware"
	appmodel "passport-apply/models/application"
	"passport-apply/models/document"
	"passport-apply/models/user"
	appservice "passport-apply/services/application"
	docservice "passport-apply/services/document"
	"passport-apply/services/transition"
	"passport-apply/types"
	apptypes "passport-apply/types/application"
	"passport-apply/utils"
)

// ApplicationController handles application lifecycle HTTP requests.
type ApplicationController struct {
	Apps   *appservice.Service
	Engine *transition.Engine
	Docs   *docservice.Manager
	Logger *logger.AsyncLogger
}

func NewApplicationController(apps *appservice.Service, engine *transition.Engine, docs *docservice.Manager, asyncLogger *logger.AsyncLogger) *ApplicationController {
	return &ApplicationController{Apps: apps, Engine: engine, Docs: docs, Logger: asyncLogger}
}

func (ac *ApplicationController) logAPIRequest(c *fiber.Ctx) {
	ac.Logger.Log(utils.CreateSanitizedLogEntry(c))
}

func (ac *ApplicationController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	ac.logAPIRequest(c)
	return result
}

func (ac *ApplicationController) sendError(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(err)
	return ac.sendResponseWithLog(c, status, types.ApiResponse{
		Status:  status,
		Message: apperror.Message(err),
	})
}

func (ac *ApplicationController) callerIdentity(c *fiber.Ctx) (user.Identity, error) {
	id, ok := middleware.CallerIdentity(c)
	if !ok {
		return user.Identity{}, ac.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}
	return id, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(raw), nil
}

// Store submits a new application.
func (ac *ApplicationController) Store(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	var req apptypes.CreateApplicationRequest
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

	created, err := ac.Apps.Create(c.Context(), caller, req)
	if err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Application submitted successfully",
		Data:    created,
	})
}

// Index lists every application.
func (ac *ApplicationController) Index(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	applications, err := ac.Apps.FindAll(c.Context(), caller)
	if err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Applications fetched successfully",
		Data:    applications,
	})
}

// MyApplications lists the caller's own applications.
func (ac *ApplicationController) MyApplications(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	applications, err := ac.Apps.FindByUser(c.Context(), caller)
	if err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Applications fetched successfully",
		Data:    applications,
	})
}

// Show returns one application.
func (ac *ApplicationController) Show(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := paramID(c, "id")
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid application ID",
		})
	}

	app, err := ac.Apps.FindOne(c.Context(), caller, id)
	if err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Application fetched successfully",
		Data:    app,
	})
}

// Update patches the mutable applicant fields.
func (ac *ApplicationController) Update(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := paramID(c, "id")
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid application ID",
		})
	}

	var req apptypes.UpdateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	updated, err := ac.Apps.Update(c.Context(), caller, id, req)
	if err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Application updated successfully",
		Data:    updated,
	})
}

// UpdateStatus runs one transition through the engine.
func (ac *ApplicationController) UpdateStatus(c *fiber.Ctx) error {
	if _, herr := ac.callerIdentity(c); herr != nil {
		return herr
	}

	id, err := paramID(c, "id")
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid application ID",
		})
	}

	var req apptypes.UpdateStatusRequest
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

	updated, err := ac.Engine.ApplyTransition(c.Context(), id, appmodel.ApplicationStatus(req.Status), req.Comment)
	if err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Application status updated successfully",
		Data:    updated,
	})
}

// VerifyDocument confirms one seeded verification record.
func (ac *ApplicationController) VerifyDocument(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := paramID(c, "id")
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid application ID",
		})
	}

	var req apptypes.VerifyDocumentRequest
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

	updated, err := ac.Apps.VerifyDocument(c.Context(), caller, id, req.DocumentType)
	if err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Document verified successfully",
		Data:    updated,
	})
}

// Destroy removes an application.
func (ac *ApplicationController) Destroy(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := paramID(c, "id")
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid application ID",
		})
	}

	if err := ac.Apps.Remove(c.Context(), caller, id); err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Application deleted successfully",
	})
}

// UploadDocument attaches one document image to an application. The document
// type comes from the route, the application id from the query string. Admins
// acting on foreign applications must pass elevate=true.
func (ac *ApplicationController) UploadDocument(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	docType, ok := document.ParseApplicationType(c.Params("type"))
	if !ok {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid document type %q", c.Params("type")),
		})
	}

	applicationID, err := strconv.ParseUint(c.Query("applicationId"), 10, 32)
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "applicationId query parameter is required",
		})
	}
	elevated := c.Query("elevate") == "true"

	file, err := c.FormFile("file")
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "No file provided",
		})
	}

	src, err := file.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", err)
		return ac.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to process uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		logger.Error("Failed to read uploaded file", err)
		return ac.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to read file content",
		})
	}

	result, err := ac.Docs.Attach(c.Context(), caller, elevated, uint(applicationID), docType, data, file.Header.Get("Content-Type"))
	if err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Document uploaded successfully",
		Data:    result,
	})
}

// Documents returns signed URLs for every attached document of an application.
func (ac *ApplicationController) Documents(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	applicationID, err := paramID(c, "applicationId")
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid application ID",
		})
	}

	urls := make(map[string]string)
	for _, docType := range []document.Type{
		document.TypeNICFront,
		document.TypeNICBack,
		document.TypeBirthCertFront,
		document.TypeBirthCertBack,
		document.TypeUserPhoto,
	} {
		url, err := ac.Docs.URL(c.Context(), caller, applicationID, docType)
		if err != nil {
			if apperror.IsKind(err, apperror.KindNotFound) {
				continue
			}
			return ac.sendError(c, err)
		}
		urls[string(docType)] = url
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Documents fetched successfully",
		Data:    urls,
	})
}

// RemoveDocument detaches one document and deletes its blob.
func (ac *ApplicationController) RemoveDocument(c *fiber.Ctx) error {
	caller, herr := ac.callerIdentity(c)
	if herr != nil {
		return herr
	}

	docType, ok := document.ParseApplicationType(c.Params("type"))
	if !ok {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid document type %q", c.Params("type")),
		})
	}

	applicationID, err := strconv.ParseUint(c.Query("applicationId"), 10, 32)
	if err != nil {
		return ac.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "applicationId query parameter is required",
		})
	}
	elevated := c.Query("elevate") == "true"

	if err := ac.Docs.Remove(c.Context(), caller, elevated, uint(applicationID), docType); err != nil {
		return ac.sendError(c, err)
	}

	return ac.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Document removed successfully",
	})
}
