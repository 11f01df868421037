package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/vaani/errors"
)

// RespondWithError inspects err: if it is an *errors.AppError the status and
// structured body are derived automatically; otherwise a generic 500 is sent.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, errors.Internal(err).ToResponse())
}

// RespondOK sends a 200 response with the payload as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondAccepted sends a 202 response with the payload as the body.
func RespondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, data)
}
