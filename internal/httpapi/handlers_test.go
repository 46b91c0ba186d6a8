package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/cache"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/service"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, cache.NoopSettingsCache{}, "main-location", 0)
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, "*")
}

func login(t *testing.T, handler http.Handler, username string, password string) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func csrfToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/csrf-token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("csrf token fetch failed: %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode csrf response: %v", err)
	}
	return body["csrf_token"]
}

func doJSON(t *testing.T, handler http.Handler, method string, path string, token string, csrf string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrongpassword"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleLogin_RateLimit(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	// The loginLimiter allows 5 attempts per minute.
	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "badpass"})

	var lastCode int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 6 attempts, got %d", lastCode)
	}
}

func TestHandleCatalog_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleCatalog_FiltersByTabAndTerm(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler, "stylist", "stylist123")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/catalog?tab=products&q=shampoo", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Items) != 1 {
		t.Fatalf("expected one shampoo product, got %d", len(body.Items))
	}
	if body.Items[0]["kind"] != domain.KindProduct {
		t.Fatalf("expected a product, got %v", body.Items[0])
	}
}

func TestMutatingRequest_RequiresCSRFToken(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler, "frontdesk", "frontdesk123")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts", token, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d", rec.Code)
	}
}

func TestCheckoutFlow_EndToEnd(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler, "frontdesk", "frontdesk123")
	csrf := csrfToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts", token, csrf, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cart: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var session domain.CartSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	base := "/api/v1/carts/" + session.SessionID

	rec = doJSON(t, handler, http.MethodPost, base+"/items", token, csrf, domain.AddItemRequest{ItemID: "svc-haircut-01", Kind: domain.KindService})
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(session.Lines) != 1 || session.Notice == "" {
		t.Fatalf("expected one line and an added-notice, got %+v", session)
	}

	rec = doJSON(t, handler, http.MethodPost, base+"/discount", token, csrf, domain.DiscountRequest{Input: "10"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set discount: expected 200, got %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Pricing.DiscountCents == 0 {
		t.Fatalf("expected a discount in pricing, got %+v", session.Pricing)
	}

	rec = doJSON(t, handler, http.MethodPost, base+"/checkout", token, csrf, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("begin checkout: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var result domain.CheckoutResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.State != "awaiting_payment" {
		t.Fatalf("expected awaiting_payment, got %+v", result)
	}

	rec = doJSON(t, handler, http.MethodPost, base+"/checkout/complete", token, csrf, domain.CompletePaymentRequest{PaymentMethod: domain.PaymentCash})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete payment: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.PaymentStatus != "successful" || result.TransactionID == "" {
		t.Fatalf("expected a recorded payment, got %+v", result)
	}

	// The cart is reset and ready for the next client.
	rec = doJSON(t, handler, http.MethodGet, base, token, "", nil)
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(session.Lines) != 0 || session.State != "idle" {
		t.Fatalf("expected reset session, got %+v", session)
	}
}

func TestCheckout_EmptyCartRejection(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler, "frontdesk", "frontdesk123")
	csrf := csrfToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts", token, csrf, nil)
	var session domain.CartSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/carts/"+session.SessionID+"/checkout", token, csrf, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result domain.CheckoutResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.State != "idle" || len(result.Notices) != 1 {
		t.Fatalf("expected idle state and one rejection notice, got %+v", result)
	}
}

func TestSettings_UpdateForbiddenForFrontDesk(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	csrf := csrfToken(t, handler)

	frontDesk := login(t, handler, "frontdesk", "frontdesk123")
	rec := doJSON(t, handler, http.MethodPut, "/api/v1/settings", frontDesk, csrf, domain.SettingsUpdateRequest{TaxRatePercent: 12})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for front desk, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	admin := login(t, handler, "admin", "admin123")
	rec = doJSON(t, handler, http.MethodPut, "/api/v1/settings", admin, csrf, domain.SettingsUpdateRequest{TaxRatePercent: 12})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestGiftCards_IssueIsAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	csrf := csrfToken(t, handler)

	frontDesk := login(t, handler, "frontdesk", "frontdesk123")
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/gift-cards", frontDesk, csrf, domain.GiftCardIssueRequest{Code: "GC-T", InitialCents: 1000})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	admin := login(t, handler, "admin", "admin123")
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/gift-cards", admin, csrf, domain.GiftCardIssueRequest{Code: "GC-T", InitialCents: 1000})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	// Anyone with a role can check a balance.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/gift-cards/GC-T", frontDesk, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on lookup, got %d", rec.Code)
	}
}

func TestDailyReport_AdminOnlyAndFormats(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	frontDesk := login(t, handler, "frontdesk", "frontdesk123")
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/daily", frontDesk, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for front desk, got %d", rec.Code)
	}

	admin := login(t, handler, "admin", "admin123")
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/daily", admin, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/daily?format=csv", admin, "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("expected CSV response, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestCartItems_UpdateAndRemove(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler, "frontdesk", "frontdesk123")
	csrf := csrfToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts", token, csrf, nil)
	var session domain.CartSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	base := "/api/v1/carts/" + session.SessionID

	doJSON(t, handler, http.MethodPost, base+"/items", token, csrf, domain.AddItemRequest{ItemID: "prod-shampoo-01", Kind: domain.KindProduct})

	rec = doJSON(t, handler, http.MethodPatch, base+"/items/0", token, csrf, domain.UpdateQuantityRequest{Quantity: 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("update quantity: expected 200, got %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", session.Lines[0].Quantity)
	}

	rec = doJSON(t, handler, http.MethodDelete, base+"/items/0", token, csrf, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove item: expected 200, got %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(session.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(session.Lines))
	}
}

func TestUnknownCart_Returns404(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler, "frontdesk", "frontdesk123")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/carts/cart_missing", token, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStaffUsers_AdminCreatesFrontDesk(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	csrf := csrfToken(t, handler)
	admin := login(t, handler, "admin", "admin123")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/users/staff", admin, csrf, domain.StaffCreateRequest{
		Username: "newdesk",
		Password: "desk-secret",
		Role:     "front_desk",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create staff: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	// The new account can log in right away.
	token := login(t, handler, "newdesk", "desk-secret")
	if token == "" {
		t.Fatalf("expected a token for the new staff user")
	}
}

func TestInvalidPaymentMethod_Returns400(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler, "frontdesk", "frontdesk123")
	csrf := csrfToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/carts", token, csrf, nil)
	var session domain.CartSessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	base := fmt.Sprintf("/api/v1/carts/%s", session.SessionID)

	doJSON(t, handler, http.MethodPost, base+"/items", token, csrf, domain.AddItemRequest{ItemID: "svc-haircut-01", Kind: domain.KindService})
	doJSON(t, handler, http.MethodPost, base+"/checkout", token, csrf, nil)

	rec = doJSON(t, handler, http.MethodPost, base+"/checkout/complete", token, csrf, domain.CompletePaymentRequest{PaymentMethod: "Visa Credit Card"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for free-text payment method, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}
