package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jeevanrakshak/donor-api/pkg/errors"
)

// DonorID returns the authenticated donor's ID from the request context. It
// is only valid behind the auth middleware.
func DonorID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.GetString("donorID"))
	if err != nil {
		return uuid.Nil, errors.Unauthorized(err)
	}
	return id, nil
}

// DonorEmail returns the authenticated donor's email from the request
// context.
func DonorEmail(c *gin.Context) string {
	return c.GetString("donorEmail")
}
