package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appointmentRepo "autobook/database/repository/appointment"
	"autobook/models"
	"autobook/services/booking"
	"autobook/services/datetime"
	"autobook/services/extract"
	"autobook/services/reminder"
	"autobook/services/session"
)

func newTestCallHandler() (*CallHandler, *session.DefaultSessionService) {
	sessions := session.NewSessionService(30*time.Minute, zap.NewNop())
	normalizer := datetime.New(models.DefaultBusinessHours(), 540)
	coordinator := booking.NewCoordinator(
		appointmentRepo.NewMemoryRepo(), sessions, reminder.NopEnqueuer{},
		models.DefaultBusinessHours(), zap.NewNop())
	h := NewCallHandler(sessions, coordinator, normalizer, extract.NewRegexExtractor(normalizer), zap.NewNop())
	return h, sessions
}

func postWebhook(t *testing.T, h *CallHandler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/webhook", h.Webhook)

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookTranscriptBeforeStart(t *testing.T) {
	h, sessions := newTestCallHandler()

	// The start event never arrived; the retry payload carries no phone
	// field, only the transcript text.
	w := postWebhook(t, h, map[string]string{
		"event_type": "transcript",
		"call_id":    "call-1",
		"transcript": "hi, my name is Sarah Chen and my number is 416 555 0134",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	sum, err := sessions.Get("call-1")
	if err != nil {
		t.Fatalf("session not created from transcript: %v", err)
	}
	if sum.CustomerPhone != "416-555-0134" {
		t.Errorf("session phone = %q, want the number extracted from the transcript", sum.CustomerPhone)
	}
	if sum.Customer.FullName != "Sarah Chen" {
		t.Errorf("customer name = %q, want Sarah Chen", sum.Customer.FullName)
	}

	// The session must be reachable by phone-based duplicate reconciliation.
	if _, err := sessions.ReconcileDuplicates("416-555-0134"); err != nil {
		t.Errorf("session invisible to reconciliation: %v", err)
	}
}

func TestWebhookTranscriptAfterStart(t *testing.T) {
	h, sessions := newTestCallHandler()

	if w := postWebhook(t, h, map[string]string{
		"event_type":     "call_started",
		"call_id":        "call-1",
		"customer_phone": "416-555-0134",
	}); w.Code != http.StatusOK {
		t.Fatalf("call_started status = %d", w.Code)
	}
	if w := postWebhook(t, h, map[string]string{
		"event_type": "transcript",
		"call_id":    "call-1",
		"transcript": "I need an oil change at the downtown store",
	}); w.Code != http.StatusOK {
		t.Fatalf("transcript status = %d", w.Code)
	}

	sum, err := sessions.Get("call-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sum.Customer.ServiceType != "oil_change" || sum.Customer.Location != "downtown" {
		t.Errorf("transcript fields not merged: %+v", sum.Customer)
	}
}
