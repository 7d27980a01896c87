package files

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"passport-apply/apperror"
	"passport-apply/logger"
	"passport-apply/storage"
	"passport-apply/types"
)

// FilesController serves stored blobs through signed, expiring URLs.
type FilesController struct {
	Store *storage.Local
}

func NewFilesController(store *storage.Local) *FilesController {
	return &FilesController{Store: store}
}

// Serve validates the URL signature and streams the blob.
func (fc *FilesController) Serve(c *fiber.Ctx) error {
	key := c.Params("*")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "File key missing",
		})
	}

	op := storage.Operation(c.Query("op"))
	expires, err := strconv.ParseInt(c.Query("expires"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid expires parameter",
		})
	}
	signature := c.Query("signature")

	if err := fc.Store.VerifySignedURL(key, op, expires, signature); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Invalid or expired file URL",
		})
	}

	data, contentType, err := fc.Store.Get(c.Context(), key)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "File not found",
			})
		}
		logger.Error("Failed to read stored file", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to read file",
		})
	}

	c.Set("Content-Type", contentType)
	return c.Send(data)
}
