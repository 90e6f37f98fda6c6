package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	lockRepo "facilities/database/repository/locks"
	referenceRepo "facilities/database/repository/reference"
	workorderRepo "facilities/database/repository/workorder"
	"facilities/models"
	"facilities/services/availability"
	"facilities/services/booking"
	"facilities/services/datetime"
	ai "facilities/services/intelligence"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logger := zap.NewNop()

	ref := referenceRepo.NewMemoryReferenceRepo(referenceRepo.Dataset{
		Slots: []models.AvailabilitySlot{
			{TechnicianID: "T1", TechnicianName: "Ahmed Hassan", Skillset: []string{"HVAC"}, Zone: "Marina",
				WindowStart: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), WindowEnd: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)},
			{TechnicianID: "T3", TechnicianName: "Omar Khalid", Skillset: []string{"HVAC"}, Zone: "Dubai Marina",
				WindowStart: time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC), WindowEnd: time.Date(2025, 6, 3, 13, 0, 0, 0, time.UTC)},
		},
		Customers: []models.Customer{
			{CustomerID: "C1", FullName: "Sara Ahmed", PhoneNumber: "+971501234567", EmailAddress: "sara@example.com"},
		},
		Facilities: []models.Facility{
			{PropertyID: "P1", CustomerID: "C1", BuildingName: "Marina Heights", AreaZone: "Marina"},
		},
	})
	resolver := availability.NewResolver(ref, time.Friday, logger)
	resolver.Now = clock
	contexts := ai.NewMemoryContextStore()
	workOrders := workorderRepo.NewMemoryWorkOrderRepo()

	normalizer := datetime.NewNormalizer(time.UTC, time.Friday, 2025)
	normalizer.Now = clock
	offers := &booking.AvailabilityService{
		Contexts: contexts, Resolver: resolver, Catalog: ref, Logger: logger,
		Now: clock, Location: time.UTC, NonWorkingDay: time.Friday, EpochYear: 2025, HorizonYears: 1,
	}
	executor := &booking.Executor{
		Contexts: contexts, Detector: ai.NewPatternDetector(), Resolver: resolver, Reference: ref,
		WorkOrders: workOrders, Locks: lockRepo.NewMemorySlotLocker(), Logger: logger,
		Now: clock, Location: time.UTC, EpochYear: 2025, HorizonYears: 1,
	}
	workOrderSvc := &booking.WorkOrderService{WorkOrders: workOrders, Reference: ref, Logger: logger, Now: clock}

	h := NewAgentHandler(normalizer, offers, executor, workOrderSvc, contexts, ai.NewPatternDetector(), ref, logger)
	r := gin.New()
	api := r.Group("/api/agent")
	hb := NewHandlerBundle(h)
	api.POST("/datetime/parse", hb.ParseDateTimeHandler)
	api.POST("/datetime/suggest", hb.SuggestTimesHandler)
	api.GET("/services", hb.ListServicesHandler)
	api.GET("/customer-lookup", hb.LookupCustomerHandler)
	api.POST("/availability", hb.CheckAvailabilityHandler)
	api.POST("/alternatives/accept", hb.AcceptAlternativeHandler)
	api.POST("/confirmation/detect", hb.DetectConfirmationHandler)
	api.POST("/bookings/execute", hb.ExecuteBookingHandler)
	api.POST("/contexts", hb.CreateContextHandler)
	api.GET("/contexts/:sessionID", hb.GetContextHandler)
	api.DELETE("/contexts/:sessionID", hb.ClearContextHandler)
	api.GET("/work-orders/:id", hb.GetWorkOrderHandler)
	api.PATCH("/work-orders/:id/status", hb.UpdateWorkOrderStatusHandler)
	api.GET("/customers/:customerID/work-orders", hb.CustomerWorkOrdersHandler)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestBookingFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/agent/availability", map[string]string{
		"sessionId":   "call-1",
		"customerId":  "C1",
		"propertyId":  "P1",
		"serviceType": "AC Maintenance",
		"zone":        "Marina",
		"date":        "2025-06-02",
		"time":        "14:00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("availability status = %d: %s", w.Code, w.Body.String())
	}
	check := decode[models.AvailabilityResult](t, w)
	if check.ExactMatch || len(check.Alternatives) == 0 {
		t.Fatalf("check = %+v", check)
	}
	alt := check.Alternatives[0]
	if alt.TechnicianID != "T3" || alt.Date != "2025-06-03" || alt.Time != "10:00" {
		t.Fatalf("alternative = %+v", alt)
	}

	w = do(t, r, http.MethodPost, "/api/agent/alternatives/accept", map[string]any{
		"sessionId":   "call-1",
		"alternative": alt,
		"considered":  check.Alternatives,
	})
	if got := decode[map[string]any](t, w)["status"]; got != string(models.BookingSuccess) {
		t.Fatalf("accept status = %v: %s", got, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/agent/bookings/execute", map[string]string{
		"sessionId":        "call-1",
		"confirmedInstant": "2025-06-03T10:00",
		"utterance":        "yes that works",
	})
	res := decode[models.BookingResult](t, w)
	if res.Status != models.BookingSuccess {
		t.Fatalf("execute = %s: %s", res.Status, res.Message)
	}
	if res.WorkOrder == nil || res.WorkOrder.AssignedTechnicianID != "T3" {
		t.Fatalf("work order = %+v", res.WorkOrder)
	}

	w = do(t, r, http.MethodGet, "/api/agent/work-orders/"+res.WorkOrder.WorkOrderID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get work order = %d", w.Code)
	}
	w = do(t, r, http.MethodGet, "/api/agent/customers/C1/work-orders?active=true", nil)
	if n := decode[map[string]any](t, w)["count"]; n != float64(1) {
		t.Errorf("active work orders = %v", n)
	}
	w = do(t, r, http.MethodPatch, "/api/agent/work-orders/"+res.WorkOrder.WorkOrderID+"/status", map[string]any{"status": "Dispatched"})
	if got := decode[models.WorkOrder](t, w); got.Status != models.WorkOrderDispatched {
		t.Errorf("status after update = %s", got.Status)
	}

	w = do(t, r, http.MethodGet, "/api/agent/contexts/call-1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("context after booking = %d, want 404", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/agent/bookings/execute", map[string]string{
		"sessionId":        "call-1",
		"confirmedInstant": "2025-06-03T10:00",
		"utterance":        "yes",
	})
	if again := decode[models.BookingResult](t, w); again.Status != models.BookingNoContext {
		t.Errorf("repeat execute = %s, want noContext", again.Status)
	}
}

func TestAgentEndpoints(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
		wantKey  string
		wantVal  any
	}{
		{"parse date", http.MethodPost, "/api/agent/datetime/parse", map[string]string{"text": "tomorrow at 2 pm"}, http.StatusOK, "date", "2025-06-02"},
		{"parse needs text", http.MethodPost, "/api/agent/datetime/parse", map[string]string{}, http.StatusBadRequest, "", nil},
		{"suggest past date", http.MethodPost, "/api/agent/datetime/suggest", map[string]string{"date": "2025-05-01"}, http.StatusOK, "status", string(models.AvailabilityInvalid)},
		{"detect confirmation", http.MethodPost, "/api/agent/confirmation/detect", map[string]string{"text": "Yes, 3 pm works"}, http.StatusOK, "extractedTime", "15:00"},
		{"bad json", http.MethodPost, "/api/agent/availability", "{", http.StatusBadRequest, "", nil},
		{"unknown service", http.MethodPost, "/api/agent/availability", map[string]string{
			"serviceType": "Pool Cleaning", "zone": "Marina", "date": "2025-06-02", "time": "10:00",
		}, http.StatusOK, "status", string(models.AvailabilityUnknown)},
		{"lookup by phone", http.MethodGet, "/api/agent/customer-lookup?phone=050%20123%204567", nil, http.StatusOK, "status", string(models.AvailabilitySuccess)},
		{"lookup needs a key", http.MethodGet, "/api/agent/customer-lookup", nil, http.StatusBadRequest, "", nil},
		{"missing work order", http.MethodGet, "/api/agent/work-orders/WO_NOPE", nil, http.StatusNotFound, "status", string(models.BookingNotFound)},
		{"bad status", http.MethodPatch, "/api/agent/work-orders/WO_NOPE/status", map[string]string{"status": "Lost"}, http.StatusBadRequest, "kind", string(booking.InputError)},
		{"accept without context", http.MethodPost, "/api/agent/alternatives/accept", map[string]any{
			"sessionId": "nobody", "alternative": map[string]string{"date": "2025-06-03", "time": "10:00", "technicianId": "T3"},
		}, http.StatusOK, "status", string(models.BookingNoContext)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantKey == "" {
				return
			}
			if got := decode[map[string]any](t, w)[tt.wantKey]; got != tt.wantVal {
				t.Errorf("%s = %v, want %v", tt.wantKey, got, tt.wantVal)
			}
		})
	}
}

func TestContextLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/agent/contexts", map[string]string{
		"sessionId":  "call-9",
		"customerId": "C1",
		"propertyId": "P1",
		"serviceId":  "SVC001",
		"zone":       "Marina",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodGet, "/api/agent/contexts/call-9", nil)
	if got := decode[models.BookingContext](t, w); got.ServiceID != "SVC001" {
		t.Errorf("context = %+v", got)
	}
	if w = do(t, r, http.MethodDelete, "/api/agent/contexts/call-9", nil); w.Code != http.StatusNoContent {
		t.Errorf("clear = %d", w.Code)
	}
	if w = do(t, r, http.MethodGet, "/api/agent/contexts/call-9", nil); w.Code != http.StatusNotFound {
		t.Errorf("after clear = %d", w.Code)
	}
	if w = do(t, r, http.MethodPost, "/api/agent/contexts", map[string]string{"zone": "Marina"}); w.Code != http.StatusBadRequest {
		t.Errorf("create without session = %d", w.Code)
	}
}
