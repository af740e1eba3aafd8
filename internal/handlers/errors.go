package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/store"
)

// respondError maps store errors onto HTTP statuses. Anything unrecognised is a
// 500 and is attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	status := 500
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		status = 403
	case errors.Is(err, store.ErrNotFound):
		status = 404
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrInsufficientCapacity):
		status = 409
	case errors.Is(err, store.ErrInvalidTransition), errors.Is(err, store.ErrInvalidInput):
		status = 400
	}

	if status == 500 {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func forbidden(c *gin.Context, message string) {
	c.JSON(403, gin.H{"error": message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(400, gin.H{"error": err.Error()})
}
