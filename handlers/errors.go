package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appointmentRepo "autobook/database/repository/appointment"
	"autobook/services/booking"
	"autobook/services/scheduling"
	"autobook/services/session"
)

// respondError maps domain errors onto HTTP status codes. Anything
// unrecognized is treated as an internal failure.
func respondError(c *gin.Context, err error) {
	var incomplete booking.IncompleteInfoError
	switch {
	case errors.As(err, &incomplete):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "Missing required customer information",
			"missingFields": incomplete.Missing,
		})
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, appointmentRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrDuplicateSession),
		errors.Is(err, session.ErrAlreadyBooked),
		errors.Is(err, session.ErrSlotNotSelectable),
		errors.Is(err, booking.ErrSlotNoLongerAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrInvalidLocation),
		errors.Is(err, booking.ErrInvalidDateRange),
		errors.Is(err, scheduling.ErrInvalidServiceType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
