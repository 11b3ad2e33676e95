package controllers

import (
	"errors"

	"nimbusdrive/services"
	"nimbusdrive/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service layer's typed failures onto HTTP
// statuses so callers see the specific reason, not a generic failure.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrInvalidParent):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrUnauthorized):
		utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrQuotaExceeded):
		utils.InsufficientStorageResponse(c, err.Error())
	default:
		utils.InternalServerErrorResponse(c, "Internal server error", nil)
	}
}
