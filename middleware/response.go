package middleware

import (
	"errors"
	"log"
	"strings"

	"lms/services"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errorStatus = map[error]int{
	services.ErrNotAssigned:      fiber.StatusForbidden,
	services.ErrNoAccess:         fiber.StatusForbidden,
	services.ErrModuleLocked:     fiber.StatusForbidden,
	services.ErrAlreadyUnlocked:  fiber.StatusConflict,
	services.ErrAlreadyPending:   fiber.StatusConflict,
	services.ErrAlreadyApproved:  fiber.StatusConflict,
	services.ErrNotPending:       fiber.StatusConflict,
	services.ErrMaxAttempts:      fiber.StatusConflict,
	services.ErrAlreadyGraded:    fiber.StatusConflict,
	services.ErrScoreOutOfRange:  fiber.StatusUnprocessableEntity,
	services.ErrAnswerCount:      fiber.StatusUnprocessableEntity,
	services.ErrInvalidStatus:    fiber.StatusUnprocessableEntity,
	services.ErrDiscussionTarget: fiber.StatusUnprocessableEntity,
	utils.ErrFileType:            fiber.StatusUnprocessableEntity,
	utils.ErrFileSize:            fiber.StatusRequestEntityTooLarge,
}

// ErrorResponse maps store and workflow errors to a status. Unknown errors are logged
// and answered with 500 and the fallback message.
func ErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return JsonResponse(c, fiber.StatusNotFound, false, "Record not found!", nil)
	}
	for target, status := range errorStatus {
		if errors.Is(err, target) {
			msg := err.Error()
			return JsonResponse(c, status, false, strings.ToUpper(msg[:1])+msg[1:]+"!", nil)
		}
	}
	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return JsonResponse(c, fiber.StatusInternalServerError, false, fallback, nil)
}
