package handlers

import (
	"errors"

	"github.com/LuqmanKt98/hangout-app/services"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/gin-gonic/gin"
)

// serviceError maps a service-layer error onto the HTTP status it deserves.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidTimeRange),
		errors.Is(err, services.ErrOutOfWindow):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrDuplicateRequest),
		errors.Is(err, services.ErrAlreadyFriends),
		errors.Is(err, services.ErrRequestAlreadyPending),
		errors.Is(err, services.ErrStorageConflict):
		utils.Conflict(c, err.Error())
	default:
		utils.InternalError(c, "Something went wrong")
	}
}
