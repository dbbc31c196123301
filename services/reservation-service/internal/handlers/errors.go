package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
)

type interval struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// writeError maps a domain error to a status code and a {"detail": ...} body.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	_ = c.Error(err)

	var (
		ie *domain.IntervalError
		ce *domain.ConflictError
	)
	switch {
	case errors.As(err, &ce):
		body := gin.H{"detail": "Time slot conflicts with an existing reservation"}
		if ce.Existing != nil {
			body["conflicting_reservation"] = gin.H{
				"id":         ce.Existing.ID,
				"start_time": ce.Existing.StartTime.UTC(),
				"end_time":   ce.Existing.EndTime.UTC(),
			}
		}
		body["requested"] = interval{StartTime: ce.Start.UTC(), EndTime: ce.End.UTC()}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &ie):
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":    "end_time must be after start_time",
			"requested": interval{StartTime: ie.Start.UTC(), EndTime: ie.End.UTC()},
		})
	case errors.Is(err, domain.ErrScheduleConflict):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Time slot conflicts with an existing reservation"})
	case errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
	case errors.Is(err, domain.ErrUnknownOwner):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "owner_id does not name an existing user"})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidInterval):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrBadCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect email or password"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "Not allowed"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Reservation not found"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error("store unavailable", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Service temporarily unavailable"})
	default:
		log.Error("unhandled error", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
}
