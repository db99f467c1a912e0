package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"autobook/config"
	appointmentRepo "autobook/database/repository/appointment"
	"autobook/models"
	"autobook/services/booking"
	"autobook/services/session"
	"autobook/utils"
)

const statisticsCacheTTL = 60 * time.Second

// AppointmentHandler exposes the direct appointment-management surface
// used by the front desk, independent of any call session.
type AppointmentHandler struct {
	Coordinator booking.Coordinator
	Sessions    session.Service
	Logger      *zap.Logger
}

func NewAppointmentHandler(coordinator booking.Coordinator, sessions session.Service, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Coordinator: coordinator, Sessions: sessions, Logger: logger}
}

// Create books an appointment directly, without a driving call. Front-desk
// bookings reuse the same commit path as calls through a one-shot session.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req struct {
		Date        string              `json:"date" binding:"required"`
		Time        string              `json:"time" binding:"required"`
		Location    string              `json:"location" binding:"required"`
		ServiceType string              `json:"serviceType" binding:"required"`
		Customer    models.CustomerInfo `json:"customer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date, time, location, and serviceType are required"})
		return
	}
	start, err := models.ClockToMinutes(req.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callID := "desk-" + uuid.New().String()
	if _, err := h.Sessions.Create(callID, req.Customer.PhoneNumber); err != nil {
		respondError(c, err)
		return
	}
	defer h.Sessions.End(callID)

	info := req.Customer
	info.Location = req.Location
	info.ServiceType = req.ServiceType
	info.PreferredDate = req.Date
	info.PreferredTime = start
	if _, err := h.Sessions.MergeInfo(callID, info, true); err != nil {
		respondError(c, err)
		return
	}

	appt, err := h.Coordinator.Book(c.Request.Context(), callID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"appointment": appt,
		"message":     "Appointment booked successfully!",
	})
}

// CheckAvailability returns open slots for a date/location/service combo.
func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	var req struct {
		Date        string `json:"date" binding:"required"`
		Location    string `json:"location" binding:"required"`
		ServiceType string `json:"serviceType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and location are required"})
		return
	}

	slots, err := h.Coordinator.AvailableSlots(c.Request.Context(), req.Date, req.Location, req.ServiceType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"date":           req.Date,
		"location":       req.Location,
		"availableSlots": viewSlots(slots),
	})
}

// List returns appointments matching the query filters.
func (h *AppointmentHandler) List(c *gin.Context) {
	filters := appointmentRepo.Filters{
		Date:         c.Query("date"),
		Location:     c.Query("location"),
		Status:       c.Query("status"),
		ServiceType:  c.Query("serviceType"),
		CustomerName: c.Query("customerName"),
	}

	appts, err := h.Coordinator.List(c.Request.Context(), filters)
	if err != nil {
		h.Logger.Error("listing appointments failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"appointments": appts,
		"count":        len(appts),
	})
}

// Get returns a single appointment by its confirmation number.
func (h *AppointmentHandler) Get(c *gin.Context) {
	appt, err := h.Coordinator.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": appt})
}

// Update reschedules an appointment. Time is accepted as a clock string.
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req struct {
		Date        string `json:"date"`
		Time        string `json:"time"`
		Location    string `json:"location"`
		ServiceType string `json:"serviceType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	update := booking.UpdateRequest{
		Date:        req.Date,
		Location:    req.Location,
		ServiceType: req.ServiceType,
	}
	if req.Time != "" {
		start, err := models.ClockToMinutes(req.Time)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		update.Start = start
	}

	appt, err := h.Coordinator.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"appointment": appt,
		"message":     "Appointment updated successfully",
	})
}

// Cancel marks an appointment cancelled and frees its slot.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	appt, err := h.Coordinator.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"appointment": appt,
		"message":     "Appointment cancelled successfully",
	})
}

// Statistics reports per-day utilization for a location, cached briefly
// in Redis since the dashboard polls it.
func (h *AppointmentHandler) Statistics(c *gin.Context) {
	date := c.Query("date")
	location := c.Query("location")
	if date == "" || location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and location query parameters are required"})
		return
	}

	cacheKey := fmt.Sprintf("stats:%s:%s", date, location)
	if cache := utils.GetCacheClient(); cache != nil {
		if raw, err := cache.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var stats models.DayStatistics
			if json.Unmarshal([]byte(raw), &stats) == nil {
				c.JSON(http.StatusOK, gin.H{"success": true, "statistics": stats, "cached": true})
				return
			}
		}
	}

	stats, err := h.Coordinator.Statistics(c.Request.Context(), date, location)
	if err != nil {
		respondError(c, err)
		return
	}

	if cache := utils.GetCacheClient(); cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := cache.Set(c.Request.Context(), cacheKey, raw, statisticsCacheTTL).Err(); err != nil {
				h.Logger.Warn("caching statistics failed", zap.Error(err))
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "statistics": stats})
}

// ServiceTypes lists the bookable services and their durations.
func (h *AppointmentHandler) ServiceTypes(c *gin.Context) {
	services := make([]gin.H, 0, len(models.ServiceTypeIDs))
	for _, id := range models.ServiceTypeIDs {
		st := models.ServiceTypes[id]
		services = append(services, gin.H{
			"id":            st.ID,
			"name":          st.Name,
			"duration":      st.Duration,
			"wrapUp":        st.WrapUp,
			"totalDuration": st.TotalDuration(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "serviceTypes": services})
}

// BusinessHours reports the configured operating window.
func (h *AppointmentHandler) BusinessHours(c *gin.Context) {
	hours := config.BusinessHours()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"businessHours": gin.H{
			"open":            models.MinutesToClock(hours.Start),
			"lastAppointment": models.MinutesToClock(hours.LastAppointmentStart),
			"close":           models.MinutesToClock(hours.ClosingTime),
		},
		"locations": models.Locations,
	})
}
