package uploadController

import (
	"lms/middleware"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// UploadFile stores a multipart "file" and returns its public URL
func UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File is required!", nil)
	}

	url, err := utils.StoreUpload(file)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to upload file!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "File uploaded successfully!", fiber.Map{
		"url":  url,
		"name": file.Filename,
		"size": file.Size,
	})
}
