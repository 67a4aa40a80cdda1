// README: Ride endpoints: create, fare, confirm, start, end, admin cancel/reject.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"swiftcab/internal/http/middleware"
	"swiftcab/internal/modules/ride"
	"swiftcab/internal/types"
)

type RideHandler struct {
	rides *ride.Service
}

func NewRideHandler(svc *ride.Service) *RideHandler {
	return &RideHandler{rides: svc}
}

type createRideReq struct {
	Pickup        string `json:"pickup"`
	Destination   string `json:"destination"`
	VehicleClass  string `json:"vehicle_class"`
	PaymentMethod string `json:"payment_method,omitempty"`
	ScheduledDate string `json:"scheduled_date,omitempty"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
}

func (h *RideHandler) Create(c *gin.Context) {
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	claims := middleware.ClaimsFrom(c)
	r, err := h.rides.Create(c.Request.Context(), ride.CreateCommand{
		RiderID:       claims.ID(),
		Pickup:        req.Pickup,
		Destination:   req.Destination,
		VehicleClass:  req.VehicleClass,
		PaymentMethod: req.PaymentMethod,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"message": "ride requested", "ride": r})
}

func (h *RideHandler) GetFare(c *gin.Context) {
	pickup := c.Query("pickup")
	destination := c.Query("destination")
	table, err := h.rides.Estimate(c.Request.Context(), pickup, destination)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"fares": table})
}

type confirmRideReq struct {
	RideID string `json:"ride_id"`
}

func (h *RideHandler) Confirm(c *gin.Context) {
	var req confirmRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RideID == "" {
		writeError(c, http.StatusBadRequest, "missing ride_id")
		return
	}
	claims := middleware.ClaimsFrom(c)
	r, err := h.rides.Confirm(c.Request.Context(), ride.ConfirmCommand{
		RideID:    types.ID(req.RideID),
		CaptainID: claims.ID(),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ride": r})
}

// Start is a GET with query parameters; the captain's app opens it
// straight from the OTP prompt.
func (h *RideHandler) Start(c *gin.Context) {
	rideID := c.Query("ride_id")
	otp := c.Query("otp")
	if rideID == "" || otp == "" {
		writeError(c, http.StatusBadRequest, "missing ride_id or otp")
		return
	}
	claims := middleware.ClaimsFrom(c)
	r, err := h.rides.Start(c.Request.Context(), ride.StartCommand{
		RideID:    types.ID(rideID),
		CaptainID: claims.ID(),
		OTP:       otp,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ride": r})
}

type endRideReq struct {
	RideID string `json:"ride_id"`
}

func (h *RideHandler) End(c *gin.Context) {
	var req endRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RideID == "" {
		writeError(c, http.StatusBadRequest, "missing ride_id")
		return
	}
	claims := middleware.ClaimsFrom(c)
	r, err := h.rides.End(c.Request.Context(), ride.EndCommand{
		RideID:    types.ID(req.RideID),
		CaptainID: claims.ID(),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ride": r})
}

func (h *RideHandler) Get(c *gin.Context) {
	id := c.Param("id")
	r, err := h.rides.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ride": r})
}

func (h *RideHandler) ListMine(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	rides, err := h.rides.ListByRider(c.Request.Context(), claims.ID())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"rides": rides})
}

type cancelRideReq struct {
	RideID string `json:"ride_id"`
	Reason string `json:"reason"`
}

func (h *RideHandler) Cancel(c *gin.Context) {
	h.terminate(c, h.rides.Cancel)
}

func (h *RideHandler) Reject(c *gin.Context) {
	h.terminate(c, h.rides.Reject)
}

func (h *RideHandler) terminate(c *gin.Context, op func(context.Context, ride.CancelCommand) (*ride.Ride, error)) {
	var req cancelRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RideID == "" {
		writeError(c, http.StatusBadRequest, "missing ride_id")
		return
	}
	r, err := op(c.Request.Context(), ride.CancelCommand{
		RideID: types.ID(req.RideID),
		Reason: req.Reason,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"ride": r})
}
