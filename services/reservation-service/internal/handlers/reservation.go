package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/middlewares"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/policy"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/service"
)

type ReservationHandler struct {
	s   *service.Scheduler
	log *slog.Logger
}

func NewReservationHandler(s *service.Scheduler, log *slog.Logger) *ReservationHandler {
	return &ReservationHandler{s: s, log: log}
}

// POST /reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	var in reservationRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	start, end, err := in.interval()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	actor, _ := middlewares.ActorFrom(c)
	r, err := h.s.Create(c.Request.Context(), actor, service.CreateInput{
		Title:       in.Title,
		Description: in.Description,
		Start:       start,
		End:         end,
		OwnerID:     in.OwnerID,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toReservation(r))
}

// GET /reservations?mine=true|false or ?scope=mine|all
func (h *ReservationHandler) List(c *gin.Context) {
	scope := policy.ScopeMine
	if v, ok := c.GetQuery("mine"); ok {
		mine, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, h.log, fmt.Errorf("%w: mine must be a boolean", domain.ErrValidation))
			return
		}
		if !mine {
			scope = policy.ScopeAll
		}
	}
	if v, ok := c.GetQuery("scope"); ok {
		scope = policy.ParseScope(v)
	}

	actor, _ := middlewares.ActorFrom(c)
	rs, err := h.s.List(c.Request.Context(), actor, scope)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toReservations(rs))
}

// GET /reservations/:id
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	actor, _ := middlewares.ActorFrom(c)
	r, err := h.s.Get(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toReservation(r))
}

// PUT /reservations/:id
func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	var in reservationRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	start, end, err := in.interval()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	actor, _ := middlewares.ActorFrom(c)
	r, err := h.s.Update(c.Request.Context(), actor, id, service.UpdateInput{
		Title:       in.Title,
		Description: in.Description,
		Start:       start,
		End:         end,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toReservation(r))
}

// DELETE /reservations/:id
func (h *ReservationHandler) Delete(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}
	actor, _ := middlewares.ActorFrom(c)
	if err := h.s.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Reservation deleted"})
}

func (h *ReservationHandler) id(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		writeError(c, h.log, domain.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}
