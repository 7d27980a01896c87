package appointment

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"passport-apply/apperror"
	"passport-apply/logger"
	"passport-apply/middleware"
	"passport-apply/models/user"
	aptservice "passport-apply/services/appointment"
	"passport-apply/types"
	apttypes "passport-apply/types/appointment"
	"passport-apply/utils"
)

// AppointmentController handles biometric appointment HTTP endpoints.
type AppointmentController struct {
	Service *aptservice.Service
	Logger  *logger.AsyncLogger
}

func NewAppointmentController(service *aptservice.Service, asyncLogger *logger.AsyncLogger) *AppointmentController {
	return &AppointmentController{Service: service, Logger: asyncLogger}
}

func (apc *AppointmentController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	apc.Logger.Log(utils.CreateSanitizedLogEntry(c))
	return result
}

func (apc *AppointmentController) sendError(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(err)
	return apc.sendResponseWithLog(c, status, types.ApiResponse{
		Status:  status,
		Message: apperror.Message(err),
	})
}

func (apc *AppointmentController) callerIdentity(c *fiber.Ctx) (user.Identity, error) {
	id, ok := middleware.CallerIdentity(c)
	if !ok {
		return user.Identity{}, apc.sendResponseWithLog(c, fiber.StatusUnauthorized, types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid user claims",
		})
	}
	return id, nil
}

// Store books a new appointment.
func (apc *AppointmentController) Store(c *fiber.Ctx) error {
	caller, herr := apc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	var req apttypes.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	created, err := apc.Service.Create(c.Context(), caller, req)
	if err != nil {
		return apc.sendError(c, err)
	}

	return apc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Appointment booked successfully",
		Data:    created,
	})
}

// Index lists every appointment.
func (apc *AppointmentController) Index(c *fiber.Ctx) error {
	caller, herr := apc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	appointments, err := apc.Service.FindAll(c.Context(), caller)
	if err != nil {
		return apc.sendError(c, err)
	}

	return apc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Appointments fetched successfully",
		Data:    appointments,
	})
}

// My lists the caller's own appointments.
func (apc *AppointmentController) My(c *fiber.Ctx) error {
	caller, herr := apc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	appointments, err := apc.Service.FindAllByUser(c.Context(), caller)
	if err != nil {
		return apc.sendError(c, err)
	}

	return apc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Appointments fetched successfully",
		Data:    appointments,
	})
}

// Show returns one appointment.
func (apc *AppointmentController) Show(c *fiber.Ctx) error {
	caller, herr := apc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := apc.paramID(c)
	if err != nil {
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid appointment ID",
		})
	}

	a, err := apc.Service.FindOne(c.Context(), caller, id)
	if err != nil {
		return apc.sendError(c, err)
	}

	return apc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Appointment fetched successfully",
		Data:    a,
	})
}

// Update reschedules or annotates an appointment.
func (apc *AppointmentController) Update(c *fiber.Ctx) error {
	caller, herr := apc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := apc.paramID(c)
	if err != nil {
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid appointment ID",
		})
	}

	var req apttypes.UpdateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	updated, err := apc.Service.Update(c.Context(), caller, id, req)
	if err != nil {
		return apc.sendError(c, err)
	}

	return apc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Appointment updated successfully",
		Data:    updated,
	})
}

// UpdateStatus approves, rejects or cancels an appointment.
func (apc *AppointmentController) UpdateStatus(c *fiber.Ctx) error {
	caller, herr := apc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := apc.paramID(c)
	if err != nil {
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid appointment ID",
		})
	}

	var req apttypes.UpdateAppointmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	updated, err := apc.Service.UpdateStatus(c.Context(), caller, id, req)
	if err != nil {
		return apc.sendError(c, err)
	}

	return apc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Appointment status updated successfully",
		Data:    updated,
	})
}

// Destroy deletes an appointment.
func (apc *AppointmentController) Destroy(c *fiber.Ctx) error {
	caller, herr := apc.callerIdentity(c)
	if herr != nil {
		return herr
	}

	id, err := apc.paramID(c)
	if err != nil {
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid appointment ID",
		})
	}

	if err := apc.Service.Remove(c.Context(), caller, id); err != nil {
		return apc.sendError(c, err)
	}

	return apc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Appointment deleted successfully",
	})
}

// AvailableSlots returns the free time slots for ?date=YYYY-MM-DD&location=.
func (apc *AppointmentController) AvailableSlots(c *fiber.Ctx) error {
	if _, herr := apc.callerIdentity(c); herr != nil {
		return herr
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "date query parameter must be YYYY-MM-DD",
		})
	}
	location := c.Query("location")
	if location == "" {
		return apc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "location query parameter is required",
		})
	}

	slots, err := apc.Service.AvailableSlots(c.Context(), date, location)
	if err != nil {
		return apc.sendError(c, err)
	}

	return apc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Available slots fetched successfully",
		Data:    slots,
	})
}

func (apc *AppointmentController) paramID(c *fiber.Ctx) (uint, error) {
	raw, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(raw), nil
}
