package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(config.PaystackConfig{
		SecretKey: "sk_test_abc",
		BaseURL:   srv.URL,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestInitializeParsesAuthorizationURL(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_abc" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "ord_ref_1"
			}
		}`))
	}))

	out, err := client.Initialize(context.Background(), InitializeRequest{
		Email:       "buyer@example.com",
		AmountMinor: 12500,
		Currency:    "GHS",
		Reference:   "ord_ref_1",
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if out.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Errorf("authorization url = %q", out.AuthorizationURL)
	}
	if out.Reference != "ord_ref_1" {
		t.Errorf("reference = %q", out.Reference)
	}
}

func TestInitializeRejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway should not be called")
	}))

	_, err := client.Initialize(context.Background(), InitializeRequest{
		Email:     "buyer@example.com",
		Reference: "ref",
	})
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVerifySuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ord_ref_1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"id": 42,
				"status": "success",
				"reference": "ord_ref_1",
				"amount": 12500,
				"currency": "GHS",
				"channel": "card"
			}
		}`))
	}))

	tx, err := client.Verify(context.Background(), "ord_ref_1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !tx.Succeeded() {
		t.Error("transaction should report success")
	}
	if tx.AmountMinor != 12500 {
		t.Errorf("amount = %d, want 12500", tx.AmountMinor)
	}
}

func TestVerifyGatewayFailureSurfacesMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": false, "message": "Transaction reference not recognized"}`))
	}))

	_, err := client.Verify(context.Background(), "bogus")
	if err == nil {
		t.Fatal("expected gateway failure")
	}
	var appErr *pkgerrors.Error
	if !pkgerrors.As(err, &appErr) || appErr.Code != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestValidSignature(t *testing.T) {
	client, err := New(config.PaystackConfig{SecretKey: "sk_test_abc", BaseURL: "https://api.paystack.co"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := []byte(`{"event":"charge.success","data":{"reference":"ord_ref_1"}}`)
	mac := hmac.New(sha512.New, []byte("sk_test_abc"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	if !client.ValidSignature(body, sig) {
		t.Error("correct signature should validate")
	}
	if client.ValidSignature(body, "deadbeef") {
		t.Error("wrong signature must not validate")
	}
	if client.ValidSignature(body, "") {
		t.Error("empty signature must not validate")
	}
	if client.ValidSignature(append(body, ' '), sig) {
		t.Error("mutated body must not validate")
	}
}
