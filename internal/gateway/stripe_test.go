package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newStripeTestServer(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewStripe("sk_test_123", server.URL)
}

func TestStripeCreateHold(t *testing.T) {
	var form map[string]string
	g := newStripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/payment_intents" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"pi_123","object":"payment_intent","status":"requires_capture","amount":600}`)
	})

	res, err := g.CreateHold(context.Background(), HoldRequest{
		AmountCents:      600,
		PaymentMethodRef: "pm_card_visa",
		Metadata:         map[string]string{"memberId": "m1"},
	})
	if err != nil {
		t.Fatalf("CreateHold failed: %v", err)
	}
	if res.AuthRef != "pi_123" || !res.Authorized {
		t.Errorf("unexpected result: %+v", res)
	}

	want := map[string]string{
		"amount":             "600",
		"currency":           "usd",
		"payment_method":     "pm_card_visa",
		"capture_method":     "manual",
		"confirm":            "true",
		"metadata[memberId]": "m1",
	}
	for k, v := range want {
		if form[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, form[k], v)
		}
	}
}

func TestStripeCreateHoldNotAuthorized(t *testing.T) {
	g := newStripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"pi_456","object":"payment_intent","status":"requires_action"}`)
	})

	res, err := g.CreateHold(context.Background(), HoldRequest{AmountCents: 100, PaymentMethodRef: "pm_x"})
	if err != nil {
		t.Fatalf("CreateHold failed: %v", err)
	}
	if res.Authorized || res.Status != "requires_action" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestStripeCardError(t *testing.T) {
	g := newStripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		io.WriteString(w, `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)
	})

	_, err := g.CreateHold(context.Background(), HoldRequest{AmountCents: 100, PaymentMethodRef: "pm_x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Your card was declined." {
		t.Errorf("error = %q, want the processor message", err.Error())
	}
}

func TestStripeCaptureAndCancel(t *testing.T) {
	var paths []string
	g := newStripeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		status := "succeeded"
		if strings.HasSuffix(r.URL.Path, "/cancel") {
			status = "canceled"
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"pi_1","object":"payment_intent","status":"`+status+`"}`)
	})

	ctx := context.Background()
	if err := g.CaptureHold(ctx, "pi_1"); err != nil {
		t.Fatalf("CaptureHold failed: %v", err)
	}
	if err := g.CancelHold(ctx, "pi_2"); err != nil {
		t.Fatalf("CancelHold failed: %v", err)
	}

	want := []string{"/v1/payment_intents/pi_1/capture", "/v1/payment_intents/pi_2/cancel"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}
