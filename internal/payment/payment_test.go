package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stripe/stripe-go/v76"

	"github.com/evidenceledger/noticegen/internal/cache"
	"github.com/evidenceledger/noticegen/internal/notice"
)

const (
	testSuccessURL = "http://localhost:8020/success?session_id=" + SessionIDPlaceholder
	testCancelURL  = "http://localhost:8020/form/section21"
)

func testFields() notice.FieldSet {
	return notice.FieldSet{
		Type:            notice.Section21,
		LandlordName:    "Jane Doe",
		LandlordAddress: "1 Letting Rd",
		TenantName:      "John Smith",
		TenantAddress:   "2 Rental Ave",
		PropertyAddress: "2 Rental Ave",
		TenancyStart:    "2023-01-01",
		NoticeEnd:       "2024-01-01",
		Reason:          "Non-payment of rent",
	}
}

func testMeta(t *testing.T) notice.Metadata {
	t.Helper()
	meta, err := notice.Lookup(notice.Section21)
	if err != nil {
		t.Fatal(err)
	}
	return meta
}

func TestEncodeMetadataLimits(t *testing.T) {
	fs := testFields()
	if _, err := EncodeMetadata(fs); err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}

	fs.Reason = strings.Repeat("x", MaxMetadataValueLength+1)
	_, err := EncodeMetadata(fs)
	if !errors.Is(err, ErrMetadataTooLarge) {
		t.Fatalf("err = %v, want ErrMetadataTooLarge", err)
	}
	if !errors.Is(err, ErrGateway) {
		t.Errorf("ErrMetadataTooLarge is not a gateway error")
	}

	fs.Reason = strings.Repeat("é", MaxMetadataValueLength)
	if _, err := EncodeMetadata(fs); err != nil {
		t.Errorf("limit counts characters, not bytes: %v", err)
	}
}

func TestUnconfigured(t *testing.T) {
	var gw Gateway = Unconfigured{}

	if _, err := gw.CreateSession(context.Background(), testMeta(t), testFields(), testSuccessURL, testCancelURL); !errors.Is(err, ErrGatewayUnconfigured) {
		t.Errorf("CreateSession err = %v", err)
	}
	if _, err := gw.RetrieveSession(context.Background(), "cs_1"); !errors.Is(err, ErrGatewayUnconfigured) {
		t.Errorf("RetrieveSession err = %v", err)
	}
}

func TestSandboxRoundTrip(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Close()

	gw := NewSandbox(c)
	fs := testFields()

	sess, err := gw.CreateSession(context.Background(), testMeta(t), fs, testSuccessURL, testCancelURL)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if !strings.HasSuffix(sess.URL, "session_id="+sess.ID) {
		t.Errorf("URL = %q does not point to the success page for %s", sess.URL, sess.ID)
	}

	got, err := gw.RetrieveSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("RetrieveSession: %v", err)
	}
	if !got.Paid {
		t.Error("sandbox session is not paid")
	}
	if diff := cmp.Diff(fs, got.Fields); diff != "" {
		t.Errorf("fields changed in round trip (-want +got):\n%s", diff)
	}
}

func TestSandboxNotFound(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Close()

	_, err := NewSandbox(c).RetrieveSession(context.Background(), "cs_missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestNewStripeRequiresKey(t *testing.T) {
	if _, err := NewStripe("", nil); !errors.Is(err, ErrGatewayUnconfigured) {
		t.Fatalf("err = %v, want ErrGatewayUnconfigured", err)
	}
}

// fakeStripe mimics the two Checkout Session endpoints used by the gateway.
type fakeStripe struct {
	mu       sync.Mutex
	sessions map[string]map[string]any
	form     map[string]string
	fail     bool
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"type":"api_error","message":"provider unavailable"}}`))
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		metadata := map[string]string{}
		f.form = map[string]string{}
		for key, values := range r.PostForm {
			f.form[key] = values[0]
			if strings.HasPrefix(key, "metadata[") {
				metadata[strings.TrimSuffix(strings.TrimPrefix(key, "metadata["), "]")] = values[0]
			}
		}
		id := "cs_test_1"
		f.sessions[id] = map[string]any{
			"id":             id,
			"object":         "checkout.session",
			"url":            "https://checkout.stripe.com/c/pay/" + id,
			"payment_status": "unpaid",
			"metadata":       metadata,
		}
		json.NewEncoder(w).Encode(f.sessions[id])

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/checkout/sessions/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/checkout/sessions/")
		sess, ok := f.sessions[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such checkout.session"}}`))
			return
		}
		sess["payment_status"] = "paid"
		json.NewEncoder(w).Encode(sess)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFakeStripe(t *testing.T) (*Stripe, *fakeStripe) {
	t.Helper()

	fake := &fakeStripe{sessions: map[string]map[string]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	backends := &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(srv.URL),
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
		}),
	}

	gw, err := NewStripe("sk_test_123", backends)
	if err != nil {
		t.Fatal(err)
	}
	return gw, fake
}

func TestStripeRoundTrip(t *testing.T) {
	gw, fake := newFakeStripe(t)
	fs := testFields()

	sess, err := gw.CreateSession(context.Background(), testMeta(t), fs, testSuccessURL, testCancelURL)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.ID != "cs_test_1" || sess.Paid {
		t.Errorf("unexpected new session %+v", sess)
	}

	fake.mu.Lock()
	form := fake.form
	fake.mu.Unlock()

	for key, want := range map[string]string{
		"mode":                                   "payment",
		"line_items[0][price_data][currency]":    "gbp",
		"line_items[0][price_data][unit_amount]": "1500",
		"line_items[0][quantity]":                "1",
		"success_url":                            testSuccessURL,
	} {
		if got := form[key]; got != want {
			t.Errorf("form %s = %q, want %q", key, got, want)
		}
	}

	got, err := gw.RetrieveSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("RetrieveSession: %v", err)
	}
	if !got.Paid {
		t.Error("retrieved session is not paid")
	}
	if diff := cmp.Diff(fs, got.Fields); diff != "" {
		t.Errorf("fields changed in round trip (-want +got):\n%s", diff)
	}
}

func TestStripeNotFound(t *testing.T) {
	gw, _ := newFakeStripe(t)

	_, err := gw.RetrieveSession(context.Background(), "cs_unknown")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestStripeProviderFailure(t *testing.T) {
	gw, fake := newFakeStripe(t)
	fake.mu.Lock()
	fake.fail = true
	fake.mu.Unlock()

	_, err := gw.CreateSession(context.Background(), testMeta(t), testFields(), testSuccessURL, testCancelURL)
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
	if errors.Is(err, ErrSessionNotFound) {
		t.Error("provider failure reported as not found")
	}
}
