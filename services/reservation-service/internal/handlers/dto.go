package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
)

// Layouts accepted for start_time and end_time. Values without an offset are
// read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

func parseInstant(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s: invalid datetime %q", domain.ErrValidation, field, s)
}

type registerRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	FullName *string `json:"full_name"`
	IsAdmin  bool    `json:"is_admin"`
}

type tokenRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type reservationRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	// ignored on update
	OwnerID *uint `json:"owner_id"`
}

func (r reservationRequest) interval() (start, end time.Time, err error) {
	if start, err = parseInstant("start_time", r.StartTime); err != nil {
		return
	}
	end, err = parseInstant("end_time", r.EndTime)
	return
}

type userResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toUser(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt.UTC()}
}

type reservationResponse struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	OwnerID     uint          `json:"owner_id"`
	CreatedAt   time.Time     `json:"created_at"`
	Owner       *userResponse `json:"owner,omitempty"`
}

func toReservation(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		StartTime:   r.StartTime.UTC(),
		EndTime:     r.EndTime.UTC(),
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt.UTC(),
		Owner:       toUser(r.Owner),
	}
}

func toReservations(rs []domain.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(rs))
	for i := range rs {
		out = append(out, toReservation(&rs[i]))
	}
	return out
}
