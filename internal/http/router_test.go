package api

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	intconfig "cruisebooking/internal/config"
	"cruisebooking/internal/domain/models"
	"cruisebooking/internal/events"
	h "cruisebooking/internal/http/handlers"
	"cruisebooking/internal/repositories"
	"cruisebooking/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, services.PaymentService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repositories.NewMemoryStore()
	err := store.InTx(context.Background(), func(tx repositories.Tx) error {
		return tx.UpsertItinerary(context.Background(), models.Itinerary{
			ID: 1, Origin: "Santos", Destination: "Caribe", CabinCost: 1000, CabinCapacity: 4,
			AvailableCabins: 2, Date: "2026-12-01", PlacesVisited: models.StringList{"Búzios"},
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	now := func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }
	rec := &events.Recorder{}
	bookings := services.BookingService{Store: store, Events: rec, Locks: services.NewKeyedMutex(), Now: now, Currency: "BRL", SigningKey: []byte("k")}
	payments := services.PaymentService{
		Bookings: bookings, Store: store, Gateway: services.FixedGateway{Approve: true},
		LinkBaseURL: "http://pay.test", WebhookKey: []byte("hook"), Now: now,
	}
	marketing := services.MarketingService{Store: store, Events: rec, Now: now}

	env := intconfig.Env{OperatorJWTSecret: testSecret}
	r := NewRouter(env, h.Services{
		Itineraries: services.ItineraryService{Store: store},
		Bookings:    bookings,
		Payments:    payments,
		Promotions:  services.PromotionService{Store: store, Events: rec, Marketing: marketing, Now: now},
		Marketing:   marketing,
		Docs:        services.DocsService{Store: store, Currency: "BRL"},
	})
	return r, payments
}

func do(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func operatorToken(t *testing.T, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "op-1",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func createBooking(t *testing.T, r *gin.Engine, cabins, passengers int) models.Booking {
	t.Helper()
	w := do(t, r, stdhttp.MethodPost, "/api/bookings", map[string]any{
		"destination_id": 1, "boarding_date": "2026-12-01",
		"number_of_cabins": cabins, "number_of_passengers": passengers,
	}, "")
	if w.Code != stdhttp.StatusCreated {
		t.Fatalf("create booking: %d %s", w.Code, w.Body.String())
	}
	return decode[models.Booking](t, w)
}

func TestHealthAndRequestID(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(t, r, stdhttp.MethodGet, "/api/health", nil, "")
	if w.Code != stdhttp.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}
	if w := do(t, r, stdhttp.MethodGet, "/api/nope", nil, ""); w.Code != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", w.Code)
	}
}

func TestItineraryRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	list := decode[[]models.Itinerary](t, do(t, r, stdhttp.MethodGet, "/api/itineraries?places_visited=buzios&min_cabins=2", nil, ""))
	if len(list) != 1 {
		t.Fatalf("expected 1 itinerary, got %d", len(list))
	}
	if w := do(t, r, stdhttp.MethodGet, "/api/itineraries?min_cabins=x", nil, ""); w.Code != stdhttp.StatusBadRequest {
		t.Fatalf("expected 400 for bad min_cabins, got %d", w.Code)
	}
	if w := do(t, r, stdhttp.MethodGet, "/api/itineraries/9", nil, ""); w.Code != stdhttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	s := decode[models.PromotionSuggestion](t, do(t, r, stdhttp.MethodGet, "/api/itineraries/1/promotion-suggestion", nil, ""))
	if s.SuggestedCost != 800 {
		t.Fatalf("unexpected suggestion %+v", s)
	}
}

func TestCreateBookingErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, stdhttp.MethodPost, "/api/bookings", map[string]any{
		"destination_id": 1, "boarding_date": "2026-12-01", "number_of_cabins": 2, "number_of_passengers": 9,
	}, "")
	if w.Code != stdhttp.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["code"] != "capacity_exceeded" {
		t.Fatalf("unexpected code %v", body["code"])
	}
	details, _ := body["details"].(map[string]any)
	if details["max_passengers"] != float64(8) {
		t.Fatalf("expected max_passengers detail, got %v", body["details"])
	}

	w = do(t, r, stdhttp.MethodPost, "/api/bookings", map[string]any{
		"destination_id": 1, "boarding_date": "2026-12-01", "number_of_cabins": 3, "number_of_passengers": 3,
	}, "")
	if w.Code != stdhttp.StatusBadRequest || decode[map[string]any](t, w)["code"] != "insufficient_inventory" {
		t.Fatalf("expected insufficient inventory, got %d %s", w.Code, w.Body.String())
	}

	if w := do(t, r, stdhttp.MethodPost, "/api/bookings", nil, ""); w.Code != stdhttp.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", w.Code)
	}
}

func TestBookingPaymentFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	b := createBooking(t, r, 2, 4)
	if b.TotalCost != 2000 || b.Status != models.BookingBooked {
		t.Fatalf("unexpected booking %+v", b)
	}

	w := do(t, r, stdhttp.MethodPost, "/api/bookings/"+b.ID+"/payment", nil, "")
	if w.Code != stdhttp.StatusCreated {
		t.Fatalf("request payment: %d %s", w.Code, w.Body.String())
	}
	handle := decode[models.PaymentHandle](t, w)
	if handle.PaymentLink != "http://pay.test/api/payments/"+handle.PaymentID || handle.Amount != 2000 {
		t.Fatalf("unexpected handle %+v", handle)
	}

	if w := do(t, r, stdhttp.MethodPost, "/api/payments/"+handle.PaymentID, map[string]any{
		"number": "4242424242424242", "expiry_month": "01", "expiry_year": 26, "cvv": "123", "holder_name": "Ana",
	}, ""); w.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for expired card, got %d %s", w.Code, w.Body.String())
	}
	if w := do(t, r, stdhttp.MethodPost, "/api/payments/"+handle.PaymentID, map[string]any{
		"number": "4242424242424242", "expiry_month": 12, "cvv": "123", "holder_name": "Ana",
	}, ""); w.Code != stdhttp.StatusBadRequest {
		t.Fatalf("expected 400 for missing field, got %d", w.Code)
	}
	if w := do(t, r, stdhttp.MethodDelete, "/api/bookings/"+b.ID, nil, ""); w.Code != stdhttp.StatusConflict {
		t.Fatalf("expected 409 cancelling with pending payment, got %d", w.Code)
	}

	w = do(t, r, stdhttp.MethodPost, "/api/payments/"+handle.PaymentID, map[string]any{
		"number": "4242 4242 4242 4242", "expiry_month": "12", "expiry_year": "2030", "cvv": "123", "holder_name": "Ana",
	}, "")
	if w.Code != stdhttp.StatusOK {
		t.Fatalf("submit payment: %d %s", w.Code, w.Body.String())
	}
	res := decode[services.PaymentResult](t, w)
	if res.Status != models.PaymentPaid || len(res.Booking.Tickets) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	w = do(t, r, stdhttp.MethodGet, "/api/bookings/"+b.ID+"/tickets/1/pdf", nil, "")
	if w.Code != stdhttp.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("ticket pdf: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if w := do(t, r, stdhttp.MethodGet, "/api/bookings/"+b.ID+"/tickets/5/pdf", nil, ""); w.Code != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 for unknown ticket, got %d", w.Code)
	}

	w = do(t, r, stdhttp.MethodDelete, "/api/bookings/"+b.ID, nil, "")
	if w.Code != stdhttp.StatusOK || decode[models.Booking](t, w).Status != models.BookingCancelled {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, stdhttp.MethodDelete, "/api/bookings/"+b.ID, nil, "")
	if w.Code != stdhttp.StatusConflict || decode[map[string]any](t, w)["code"] != "already_terminal" {
		t.Fatalf("expected already_terminal, got %d %s", w.Code, w.Body.String())
	}

	list := decode[[]models.Booking](t, do(t, r, stdhttp.MethodGet, "/api/bookings?status=cancelled", nil, ""))
	if len(list) != 1 {
		t.Fatalf("expected 1 cancelled booking, got %d", len(list))
	}
}

func TestWebhookRoute(t *testing.T) {
	r, payments := newTestRouter(t)
	b := createBooking(t, r, 1, 1)
	handle := decode[models.PaymentHandle](t, do(t, r, stdhttp.MethodPost, "/api/bookings/"+b.ID+"/payment", nil, ""))

	n := services.WebhookNotification{PaymentID: handle.PaymentID, Status: "declined", TransactionID: "t-1"}
	n.Signature = "00"
	if w := do(t, r, stdhttp.MethodPost, "/api/payments/webhook", n, ""); w.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %d", w.Code)
	}

	n.Signature = services.SignWebhook(payments.WebhookKey, n)
	w := do(t, r, stdhttp.MethodPost, "/api/payments/webhook", n, "")
	if w.Code != stdhttp.StatusOK || decode[map[string]any](t, w)["status"] != string(models.BookingRejected) {
		t.Fatalf("webhook: %d %s", w.Code, w.Body.String())
	}
	p := decode[models.Payment](t, do(t, r, stdhttp.MethodGet, "/api/payments/"+handle.PaymentID, nil, ""))
	if p.Status != models.PaymentRejected {
		t.Fatalf("unexpected payment %+v", p)
	}
}

func TestOperatorRoutesNeedRole(t *testing.T) {
	r, _ := newTestRouter(t)
	promo := map[string]any{"destination_id": 1, "boarding_date": "2026-12-01", "new_cost": 750}

	if w := do(t, r, stdhttp.MethodPost, "/api/promotions", promo, ""); w.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := do(t, r, stdhttp.MethodPost, "/api/promotions", promo, operatorToken(t, "customer")); w.Code != stdhttp.StatusForbidden {
		t.Fatalf("expected 403 for customer role, got %d", w.Code)
	}

	do(t, r, stdhttp.MethodPost, "/api/marketing/subscribe", map[string]any{"user_id": "u-1"}, "")
	w := do(t, r, stdhttp.MethodPost, "/api/promotions", promo, operatorToken(t, "operator"))
	if w.Code != stdhttp.StatusCreated {
		t.Fatalf("apply promotion: %d %s", w.Code, w.Body.String())
	}
	applied := decode[services.AppliedPromotion](t, w)
	if applied.DiscountPercent != 25 || applied.Notified != 1 {
		t.Fatalf("unexpected promotion %+v", applied)
	}

	b := createBooking(t, r, 1, 1)
	if w := do(t, r, stdhttp.MethodPost, "/api/bookings/"+b.ID+"/complete", nil, operatorToken(t, "admin")); w.Code != stdhttp.StatusConflict {
		t.Fatalf("expected 409 completing unpaid booking, got %d", w.Code)
	}
}

func TestMarketingRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, stdhttp.MethodPost, "/api/marketing/subscribe", map[string]any{"user_id": "u-1"}, "")
	if w.Code != stdhttp.StatusOK || decode[map[string]any](t, w)["message"] != "Subscribed to marketing notifications" {
		t.Fatalf("subscribe: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, stdhttp.MethodDelete, "/api/marketing/unsubscribe", map[string]any{"user_id": "u-1"}, "")
	if w.Code != stdhttp.StatusOK || decode[map[string]any](t, w)["message"] != "Unsubscribed from marketing notifications" {
		t.Fatalf("unsubscribe: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, stdhttp.MethodPost, "/api/marketing/subscribe", map[string]any{"user_id": ""}, "")
	if w.Code != stdhttp.StatusBadRequest || decode[map[string]any](t, w)["message"] != "User ID is required" {
		t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
	}
}
