package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"autobook/models"
	"autobook/services/booking"
	"autobook/services/datetime"
	"autobook/services/extract"
	"autobook/services/session"
)

// CallHandler exposes the call-session surface used by the voice agent.
type CallHandler struct {
	Sessions    session.Service
	Coordinator booking.Coordinator
	Normalizer  *datetime.Normalizer
	Extractor   extract.Extractor
	Logger      *zap.Logger
}

func NewCallHandler(sessions session.Service, coordinator booking.Coordinator, normalizer *datetime.Normalizer, extractor extract.Extractor, logger *zap.Logger) *CallHandler {
	return &CallHandler{
		Sessions:    sessions,
		Coordinator: coordinator,
		Normalizer:  normalizer,
		Extractor:   extractor,
		Logger:      logger,
	}
}

// slotView is the wire form of a slot, with the clock strings the agent
// reads back to the caller.
type slotView struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	DisplayTime string `json:"displayTime"`
	Available   bool   `json:"available"`
}

func viewSlots(slots []models.TimeSlot) []slotView {
	out := make([]slotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotView{
			Start:       models.MinutesToClock(s.Start),
			End:         models.MinutesToClock(s.End),
			DisplayTime: models.MinutesToDisplay(s.Start),
			Available:   s.Available,
		})
	}
	return out
}

// StartCall creates a session for a newly connected call.
func (h *CallHandler) StartCall(c *gin.Context) {
	var req struct {
		CallID        string `json:"callId" binding:"required"`
		CustomerPhone string `json:"customerPhone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "callId and customerPhone are required"})
		return
	}

	sess, err := h.Sessions.Create(req.CallID, req.CustomerPhone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": sess,
		"message": "Call session started successfully",
	})
}

// UpdateInfo merges a partial customer-info update into the session. A
// free-form rawDateTime string is normalized into the date/time fields.
func (h *CallHandler) UpdateInfo(c *gin.Context) {
	var req struct {
		CallID      string              `json:"callId" binding:"required"`
		Updates     models.CustomerInfo `json:"updates"`
		Force       bool                `json:"force"`
		RawDateTime string              `json:"rawDateTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "callId and updates are required"})
		return
	}

	if req.RawDateTime != "" {
		if res := h.Normalizer.Normalize(req.RawDateTime, time.Now()); res.Matched {
			req.Updates.PreferredDate = res.Date
			req.Updates.PreferredTime = res.Time
		}
	}

	sess, err := h.Sessions.MergeInfo(req.CallID, req.Updates, req.Force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": sess,
		"message": "Customer information updated successfully",
	})
}

// CheckAvailability records the caller's date/location/service preference
// and returns the conflict-free slots for it.
func (h *CallHandler) CheckAvailability(c *gin.Context) {
	var req struct {
		CallID      string `json:"callId" binding:"required"`
		Date        string `json:"date" binding:"required"`
		Location    string `json:"location" binding:"required"`
		ServiceType string `json:"serviceType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "callId, date, location, and serviceType are required"})
		return
	}

	// The availability request itself carries booking attributes; fold them
	// into the session so later steps see them.
	sess, err := h.Sessions.MergeInfo(req.CallID, models.CustomerInfo{
		PreferredDate: req.Date,
		Location:      req.Location,
		ServiceType:   req.ServiceType,
	}, true)
	if err != nil {
		respondError(c, err)
		return
	}

	slots, err := h.Coordinator.AvailableSlots(c.Request.Context(), req.Date, req.Location, req.ServiceType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"availableSlots": viewSlots(slots),
		"session":        sess,
		"message":        "Availability checked successfully",
	})
}

// SelectTime pins the caller's chosen slot after verifying it is still in
// the freshly computed set.
func (h *CallHandler) SelectTime(c *gin.Context) {
	var req struct {
		CallID string `json:"callId" binding:"required"`
		Time   string `json:"time" binding:"required"` // "HH:MM"
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "callId and time are required"})
		return
	}
	start, err := models.ClockToMinutes(req.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.Sessions.Get(req.CallID)
	if err != nil {
		respondError(c, err)
		return
	}
	info := sess.Customer
	slots, err := h.Coordinator.AvailableSlots(c.Request.Context(), info.PreferredDate, info.Location, info.ServiceType)
	if err != nil {
		respondError(c, err)
		return
	}

	var chosen *models.TimeSlot
	for i := range slots {
		if slots[i].Start == start {
			chosen = &slots[i]
			break
		}
	}
	if chosen == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":        "Selected time slot is not available",
			"alternatives": viewSlots(slots),
		})
		return
	}

	updated, err := h.Sessions.SelectSlot(req.CallID, *chosen)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"selectedSlot": viewSlots([]models.TimeSlot{*chosen})[0],
		"session":      updated,
		"message":      "Time slot selected successfully",
	})
}

// BookAppointment commits the reservation. When the slot was lost to a
// concurrent booking, fresh alternatives ride along with the error so the
// agent can immediately offer them.
func (h *CallHandler) BookAppointment(c *gin.Context) {
	var req struct {
		CallID string `json:"callId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "callId is required"})
		return
	}

	appt, err := h.Coordinator.Book(c.Request.Context(), req.CallID)
	if err == booking.ErrSlotNoLongerAvailable {
		h.respondWithAlternatives(c, req.CallID)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"appointment":        appt,
		"confirmationNumber": appt.ID,
		"message":            "Appointment booked successfully!",
	})
}

func (h *CallHandler) respondWithAlternatives(c *gin.Context, callID string) {
	body := gin.H{"error": "Requested time slot is no longer available"}
	if sess, err := h.Sessions.Get(callID); err == nil {
		info := sess.Customer
		if slots, err := h.Coordinator.AvailableSlots(c.Request.Context(), info.PreferredDate, info.Location, info.ServiceType); err == nil {
			body["alternatives"] = viewSlots(slots)
		}
	}
	c.JSON(http.StatusConflict, body)
}

// CallState reports the conversation stage and next agent action.
func (h *CallHandler) CallState(c *gin.Context) {
	callID := c.Param("callId")
	state := h.Sessions.StateSummary(callID)

	body := gin.H{"success": true, "state": state}
	if sess, err := h.Sessions.Get(callID); err == nil {
		body["session"] = sess
	}
	c.JSON(http.StatusOK, body)
}

// EndCall evicts the session on hang-up.
func (h *CallHandler) EndCall(c *gin.Context) {
	var req struct {
		CallID string `json:"callId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "callId is required"})
		return
	}
	h.Sessions.End(req.CallID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Call session ended successfully"})
}

// ListSessions returns every active session, for the ops dashboard.
func (h *CallHandler) ListSessions(c *gin.Context) {
	sessions := h.Sessions.ListActive()
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// Reconcile merges duplicate sessions opened for one real conversation
// after telephony-side retries.
func (h *CallHandler) Reconcile(c *gin.Context) {
	var req struct {
		CustomerPhone string `json:"customerPhone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerPhone is required"})
		return
	}

	sess, err := h.Sessions.ReconcileDuplicates(req.CustomerPhone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

// Webhook ingests voice-platform events. Transcript payloads run through
// the field extractor and feed the session merge; sessions are created on
// the fly for unseen call ids.
func (h *CallHandler) Webhook(c *gin.Context) {
	var req struct {
		EventType     string `json:"event_type"`
		CallID        string `json:"call_id"`
		CustomerPhone string `json:"customer_phone"`
		Transcript    string `json:"transcript"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}
	if req.CallID == "" {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "No call id provided (noop)"})
		return
	}

	switch req.EventType {
	case "call_started":
		if _, err := h.Sessions.Create(req.CallID, req.CustomerPhone); err != nil && err != session.ErrDuplicateSession {
			respondError(c, err)
			return
		}
	case "call_ended":
		h.Sessions.End(req.CallID)
	case "transcript":
		info := h.Extractor.Extract(req.Transcript, time.Now())
		_, err := h.Sessions.MergeInfo(req.CallID, info, false)
		if err == session.ErrSessionNotFound {
			// Retries can deliver transcripts before the start event. Retry
			// payloads often omit the phone field, so fall back to a number
			// found in the transcript itself; a session created without any
			// phone is invisible to duplicate reconciliation.
			phone := req.CustomerPhone
			if phone == "" {
				phone = info.PhoneNumber
			}
			if phone == "" {
				h.Logger.Warn("creating session from transcript with no phone number",
					zap.String("callId", req.CallID))
			}
			if _, cerr := h.Sessions.Create(req.CallID, phone); cerr == nil {
				_, err = h.Sessions.MergeInfo(req.CallID, info, false)
			}
		}
		if err != nil {
			respondError(c, err)
			return
		}
	default:
		h.Logger.Debug("ignoring webhook event", zap.String("eventType", req.EventType))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Webhook processed successfully"})
}
